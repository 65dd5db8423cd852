package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/dashboard-gateway/identity"
	"github.com/jrsteele09/dashboard-gateway/internal/config"
	"github.com/jrsteele09/dashboard-gateway/internal/logging"
	"github.com/jrsteele09/dashboard-gateway/internal/metrics"
	"github.com/jrsteele09/dashboard-gateway/server"
	"github.com/jrsteele09/dashboard-gateway/server/gate"
	"github.com/jrsteele09/dashboard-gateway/sessions"
	"github.com/jrsteele09/dashboard-gateway/token/claims"
	"github.com/jrsteele09/dashboard-gateway/token/refresh"
	"github.com/jrsteele09/dashboard-gateway/token/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetEnv(), os.Stderr)
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, cleanup, err := build(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(server) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

// build wires the identity provider, token cache and gates into the HTTP server.
func build(ctx context.Context, c config.Config) (http.Handler, func(), error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return nil, nil, err
	}

	hc := &http.Client{Timeout: c.GetIdentityTimeout()}
	tokens, err := identity.NewOIDCClient(ctx, identity.OIDCOptions{
		IssuerURL:    c.GetIssuerURL(),
		ClientID:     c.GetClientID(),
		ClientSecret: c.GetClientSecret(),
		TokenURL:     c.GetTokenURL(),
		HTTPClient:   hc,
		Metrics:      m,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("identity.NewOIDCClient: %w", err)
	}
	groups, err := identity.NewCognitoGroups(ctx, c.GetRegion(), c.GetUserPoolID(), hc, m)
	if err != nil {
		return nil, nil, fmt.Errorf("identity.NewCognitoGroups: %w", err)
	}
	provider := identity.Compose(tokens, groups)

	cache, cleanup, err := newTokenCache(ctx, c)
	if err != nil {
		return nil, nil, err
	}

	cookies := sessions.Writer{
		Names:    sessions.CookieNames{Namespace: c.GetCookieNamespace()},
		MaxAge:   c.GetSessionMaxAge(),
		Insecure: strings.HasPrefix(c.GetBaseURL(), "http://"),
	}
	resolver := claims.NewResolver(provider,
		claims.WithDefaultRole(c.GetDefaultRole()),
		claims.WithGroupMapping(c.GetGroupRoleMapping()),
	)

	timeout := c.GetIdentityTimeout()
	edge := gate.NewEdgeGate(refresh.NewManager(provider, provider, timeout), cache, cookies,
		gate.Paths{Login: c.GetLoginPath(), Landing: c.GetLandingPath()}, m)
	endpoints := gate.NewEndpointGate(refresh.NewManager(provider, provider, timeout), resolver, cookies, c.IsDev(), m)

	s, err := server.New(c, server.Deps{
		Edge:      edge,
		Endpoints: endpoints,
		Roles:     resolver,
		Cookies:   cookies,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("server.New: %w", err)
	}
	return s, cleanup, nil
}

func newTokenCache(ctx context.Context, c config.Config) (validation.Cache, func(), error) {
	switch backend := c.GetTokenCacheBackend(); backend {
	case config.CacheBackendMemory:
		log.Info().Str("backend", backend).Dur("ttl", c.GetTokenCacheTTL()).Msg("token validation cache")
		return validation.NewMemoryCache(c.GetTokenCacheTTL(), c.GetTokenCacheMaxEntries()), func() {}, nil
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", c.GetRedisAddr(), err)
		}
		log.Info().Str("backend", backend).Str("addr", c.GetRedisAddr()).Dur("ttl", c.GetTokenCacheTTL()).Msg("token validation cache")
		return validation.NewRedisCache(client, c.GetRedisKeyPrefix(), c.GetTokenCacheTTL()), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown token cache backend %q", backend)
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
