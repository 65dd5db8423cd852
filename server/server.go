package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/dashboard-gateway/internal/config"
	"github.com/jrsteele09/dashboard-gateway/server/gate"
	"github.com/jrsteele09/dashboard-gateway/server/timeentries"
	"github.com/jrsteele09/dashboard-gateway/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators built at startup and shared by the routes.
type Deps struct {
	Edge        *gate.EdgeGate
	Endpoints   *gate.EndpointGate
	Roles       gate.RoleResolver
	Cookies     sessions.Writer
	TimeEntries timeentries.Repo
	// Metrics serves /metrics. promhttp.Handler() is used when nil.
	Metrics http.Handler
}

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	handler     http.Handler
	routes      []string
	fileServer  http.Handler
	config      config.Config
	edge        *gate.EdgeGate
	endpoints   *gate.EndpointGate
	roles       gate.RoleResolver
	cookies     sessions.Writer
	timeEntries timeentries.Repo
	metrics     http.Handler
}

func New(config config.Config, deps Deps) (*Server, error) {
	if deps.Edge == nil || deps.Endpoints == nil || deps.Roles == nil {
		return nil, errors.New("[Server New] edge gate, endpoint gate and role resolver are required")
	}
	if deps.TimeEntries == nil {
		deps.TimeEntries = timeentries.NewInMemoryRepo()
	}
	if deps.Metrics == nil {
		deps.Metrics = promhttp.Handler()
	}

	fileServer, err := FileServerHandler()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create file server: %w", err)
	}

	s := &Server{
		env:         config.GetEnv(),
		mux:         http.NewServeMux(),
		fileServer:  fileServer,
		config:      config,
		edge:        deps.Edge,
		endpoints:   deps.Endpoints,
		roles:       deps.Roles,
		cookies:     deps.Cookies,
		timeEntries: deps.TimeEntries,
		metrics:     deps.Metrics,
	}

	if err := s.initRoutes(); err != nil {
		return nil, fmt.Errorf("[Server New] failed to register routes: %w", err)
	}
	s.logRoutes()

	// Every request passes the edge gate before reaching the mux.
	s.handler = ChainMiddleware(s.edge.Middleware(s.mux).ServeHTTP, s.GlobalMiddleware()...)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) isDev() bool {
	return s.env == "DEV"
}

func (s *Server) logRoutes() {
	if !s.isDev() {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}
