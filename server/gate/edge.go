// Package gate holds the two session gates in front of the dashboard: the edge gate,
// which guards page navigation with redirects, and the endpoint gate, which guards API
// handlers with plain 400/403 rejections.
package gate

import (
	"context"
	"net/http"

	"github.com/jrsteele09/dashboard-gateway/internal/metrics"
	"github.com/jrsteele09/dashboard-gateway/sessions"
	"github.com/jrsteele09/dashboard-gateway/token/refresh"
	"github.com/jrsteele09/dashboard-gateway/token/validation"
	"github.com/rs/zerolog/log"
)

const edgeGateName = "edge"

// Paths are the two pages the edge gate redirects between.
type Paths struct {
	Login   string
	Landing string
}

// DefaultPaths is the login page at the root and the dashboard landing page.
var DefaultPaths = Paths{Login: "/", Landing: "/dashboard"}

// EdgeGate runs before routing and decides between pass-through, transparent refresh and
// redirect-to-login for every page request.
type EdgeGate struct {
	manager *refresh.Manager
	cache   validation.Cache
	cookies sessions.Writer
	paths   Paths
	metrics *metrics.Metrics
}

func NewEdgeGate(manager *refresh.Manager, cache validation.Cache, cookies sessions.Writer, paths Paths, m *metrics.Metrics) *EdgeGate {
	if paths.Login == "" {
		paths.Login = DefaultPaths.Login
	}
	if paths.Landing == "" {
		paths.Landing = DefaultPaths.Landing
	}
	return &EdgeGate{
		manager: manager,
		cache:   cache,
		cookies: cookies,
		paths:   paths,
		metrics: m,
	}
}

func (g *EdgeGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Excluded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		names := g.cookies.Names
		if r.URL.Path == g.paths.Login {
			if c, err := r.Cookie(names.LastAuthUser()); err == nil && c.Value != "" {
				g.metrics.Decision(edgeGateName, "already_authenticated")
				http.Redirect(w, r, g.paths.Landing, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		pair, err := names.Read(r)
		if err != nil {
			g.toLogin(w, r, "", "no_session")
			return
		}
		if pair.RefreshToken == "" {
			g.toLogin(w, r, pair.Username, "no_refresh_token")
			return
		}

		ctx := r.Context()
		if pair.HasTokens() {
			fp := validation.Fingerprint(pair.IDToken, pair.AccessToken)
			if g.cachedValid(ctx, fp) {
				g.metrics.Decision(edgeGateName, "cached")
				next.ServeHTTP(w, r)
				return
			}

			err := g.manager.VerifyPair(ctx, pair.IDToken, pair.AccessToken)
			// A negative outcome is recorded but never used to reject; refresh still runs.
			g.store(ctx, fp, err == nil)
			if err == nil {
				g.metrics.Decision(edgeGateName, "verified")
				next.ServeHTTP(w, r)
				return
			}
			log.Debug().Err(err).Str("user", pair.Username).Msg("edge gate: token pair rejected, refreshing")
		}

		set, err := g.manager.Refresh(ctx, pair.RefreshToken)
		if err != nil {
			log.Warn().Err(err).Str("user", pair.Username).Msg("edge gate: refresh failed")
			g.metrics.Refresh(edgeGateName, "failed")
			g.toLogin(w, r, pair.Username, "refresh_failed")
			return
		}
		g.metrics.Refresh(edgeGateName, "ok")

		g.cookies.WriteTokens(w, pair.Username, set.IDToken, set.AccessToken, set.ExpiresIn)
		sessions.ReplaceRequestCookies(r, map[string]string{
			names.IDToken(pair.Username):     set.IDToken,
			names.AccessToken(pair.Username): set.AccessToken,
		})
		g.store(ctx, validation.Fingerprint(set.IDToken, set.AccessToken), true)

		g.metrics.Decision(edgeGateName, "refreshed")
		next.ServeHTTP(w, r)
	})
}

// cachedValid treats lookup errors as misses.
func (g *EdgeGate) cachedValid(ctx context.Context, fp string) bool {
	valid, found, err := g.cache.Lookup(ctx, fp)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("edge gate: token cache lookup failed")
		g.metrics.CacheLookup("error")
		return false
	case !found:
		g.metrics.CacheLookup("miss")
		return false
	case !valid:
		g.metrics.CacheLookup("negative")
		return false
	}
	g.metrics.CacheLookup("hit")
	return true
}

func (g *EdgeGate) store(ctx context.Context, fp string, valid bool) {
	if err := g.cache.Store(ctx, fp, valid); err != nil {
		log.Warn().Err(err).Msg("edge gate: token cache store failed")
	}
}

func (g *EdgeGate) toLogin(w http.ResponseWriter, r *http.Request, username, reason string) {
	log.Debug().Str("path", r.URL.Path).Str("reason", reason).Msg("edge gate: redirecting to login")
	g.metrics.Decision(edgeGateName, reason)
	g.cookies.Clear(w, username)
	http.Redirect(w, r, g.paths.Login, http.StatusTemporaryRedirect)
}
