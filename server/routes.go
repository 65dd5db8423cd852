package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/dashboard-gateway/server/gate"
)

func (s *Server) initRoutes() error {
	login, err := s.LoginPageHandler()
	if err != nil {
		return err
	}
	dashboard, err := s.DashboardHandler()
	if err != nil {
		return err
	}

	loginPath, landingPath := s.config.GetLoginPath(), s.config.GetLandingPath()
	if !strings.HasPrefix(loginPath, "/") || !strings.HasPrefix(landingPath, "/") || loginPath == landingPath {
		return fmt.Errorf("login path %q and landing path %q must be distinct absolute paths", loginPath, landingPath)
	}

	// PAGES
	s.RegisterRouteFunc("GET "+exactPath(loginPath), login)
	s.RegisterRouteFunc("GET "+exactPath(landingPath), dashboard)
	s.RegisterRouteFunc("GET "+RouteLogout, s.LogoutHandler())

	// OPERATIONAL
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics)

	// API routes
	s.RegisterRouteFunc("GET "+RouteAPIMe, s.api(s.MeHandler(), nil, true))
	s.RegisterRouteFunc("GET "+RouteAPIAdminRoles, s.api(s.RolesHandler(), nil, true, RoleAdmin))
	s.RegisterRouteFunc("GET "+RouteAPITimeEntries, s.api(s.ListTimeEntriesHandler(), nil, true))
	s.RegisterRouteFunc("POST "+RouteAPITimeEntries, s.api(s.CreateTimeEntryHandler(), gate.NewSchema[CreateTimeEntryRequest](), true))
	s.RegisterRouteFunc("GET "+RouteAPITimeEntry, s.api(s.GetTimeEntryHandler(), nil, true))
	s.RegisterRouteFunc("OPTIONS /api/", ChainMiddleware(http.NotFound, s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteStatic, ChainMiddleware(
		http.StripPrefix(RouteStatic, s.fileServer).ServeHTTP,
		s.CacheMiddleware,
	))
	return nil
}

// api wraps h with the endpoint gate and the API middleware.
func (s *Server) api(h gate.Handler, schema gate.Schema, protected bool, roles ...string) http.HandlerFunc {
	return ChainMiddleware(s.endpoints.Wrap(h, schema, protected, roles...), s.APIMiddleware()...)
}

// exactPath turns a page path into a pattern that matches only that path.
func exactPath(p string) string {
	if strings.HasSuffix(p, "/") {
		return p + "{$}"
	}
	return p
}
