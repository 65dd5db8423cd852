package gate

import (
	"context"
	"net/http"

	autherrors "github.com/jrsteele09/dashboard-gateway/internal/errors"
	"github.com/jrsteele09/dashboard-gateway/internal/metrics"
	"github.com/jrsteele09/dashboard-gateway/sessions"
	"github.com/jrsteele09/dashboard-gateway/token/claims"
	"github.com/jrsteele09/dashboard-gateway/token/refresh"
	"github.com/rs/zerolog/log"
)

const endpointGateName = "endpoint"

// RoleResolver returns the roles currently held by a user.
type RoleResolver interface {
	Roles(ctx context.Context, username string) ([]string, error)
}

// EndpointGate wraps API handlers with schema validation, authentication and role checks.
// It never redirects and shares no state with the edge gate.
type EndpointGate struct {
	manager *refresh.Manager
	roles   RoleResolver
	cookies sessions.Writer
	devMode bool
	metrics *metrics.Metrics
}

func NewEndpointGate(manager *refresh.Manager, roles RoleResolver, cookies sessions.Writer, devMode bool, m *metrics.Metrics) *EndpointGate {
	return &EndpointGate{
		manager: manager,
		roles:   roles,
		cookies: cookies,
		devMode: devMode,
		metrics: m,
	}
}

// Wrap returns an http.HandlerFunc that validates the request against schema (when not
// nil), authenticates it when protected, requires one of roles when any are given, calls
// h and writes its response. A non-empty roles list implies protected.
func (g *EndpointGate) Wrap(h Handler, schema Schema, protected bool, roles ...string) http.HandlerFunc {
	protected = protected || len(roles) > 0

	return func(w http.ResponseWriter, r *http.Request) {
		var body any
		if schema != nil {
			v, err := DecodeRequest(r, schema)
			if err != nil {
				g.reject(w, r, "invalid_request", http.StatusBadRequest, err.Error())
				return
			}
			body = v
		}

		var refreshed *refresh.Result
		if protected {
			res, caller, ok := g.authenticate(w, r)
			if !ok {
				return
			}
			if res.Refreshed != nil {
				refreshed = &res
				sessions.ReplaceRequestCookies(r, map[string]string{
					g.cookies.Names.IDToken(res.Pair.Username):     res.Pair.IDToken,
					g.cookies.Names.AccessToken(res.Pair.Username): res.Pair.AccessToken,
				})
			}
			r = r.WithContext(WithCaller(r.Context(), caller))

			if len(roles) > 0 && !g.authorize(w, r, caller.Username, roles) {
				return
			}
		}

		g.metrics.Decision(endpointGateName, "allowed")
		resp, err := h(r, body)

		if refreshed != nil {
			g.cookies.WriteTokens(w, refreshed.Pair.Username, refreshed.Pair.IDToken, refreshed.Pair.AccessToken, refreshed.Refreshed.ExpiresIn)
		}
		if err != nil {
			WriteError(w, r, err, g.devMode)
			return
		}
		writeResponse(w, resp)
	}
}

func (g *EndpointGate) authenticate(w http.ResponseWriter, r *http.Request) (refresh.Result, Caller, bool) {
	pair, err := g.cookies.Names.Read(r)
	if err != nil {
		g.reject(w, r, "no_session", http.StatusBadRequest, autherrors.ErrNoSession.Error())
		return refresh.Result{}, Caller{}, false
	}

	res, err := g.manager.EnsureValid(r.Context(), pair)
	if err != nil {
		log.Warn().Err(err).Str("user", pair.Username).Msg("endpoint gate: session could not be validated")
		if !autherrors.Is(err, autherrors.ErrMissingRefreshToken) {
			g.metrics.Refresh(endpointGateName, "failed")
		}
		g.reject(w, r, "session_invalid", http.StatusBadRequest, autherrors.ErrSessionExpired.Error())
		return refresh.Result{}, Caller{}, false
	}
	if res.Refreshed != nil {
		g.metrics.Refresh(endpointGateName, "ok")
	}

	// The ID token was verified or issued by the provider just above.
	c, err := claims.Decode(res.Pair.IDToken)
	if err != nil {
		g.reject(w, r, "session_invalid", http.StatusBadRequest, autherrors.ErrInvalidToken.Error())
		return refresh.Result{}, Caller{}, false
	}

	return res, Caller{Username: pair.Username, Email: c.Email, Subject: c.Subject}, true
}

// authorize fails closed: a role lookup error is a denial.
func (g *EndpointGate) authorize(w http.ResponseWriter, r *http.Request, username string, allowed []string) bool {
	held, err := g.roles.Roles(r.Context(), username)
	if err != nil {
		log.Warn().Err(err).Str("user", username).Msg("endpoint gate: role lookup failed")
		g.reject(w, r, "role_lookup_failed", http.StatusForbidden, autherrors.ErrForbidden.Error())
		return false
	}
	if !claims.HasAnyRole(held, allowed) {
		g.reject(w, r, "forbidden", http.StatusForbidden, autherrors.ErrForbidden.Error())
		return false
	}
	return true
}

func (g *EndpointGate) reject(w http.ResponseWriter, r *http.Request, decision string, status int, msg string) {
	log.Debug().Str("path", r.URL.Path).Str("decision", decision).Int("status", status).Msg("endpoint gate: rejected")
	g.metrics.Decision(endpointGateName, decision)
	http.Error(w, msg, status)
}
