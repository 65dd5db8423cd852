package gate_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/dashboard-gateway/identity"
	autherrors "github.com/jrsteele09/dashboard-gateway/internal/errors"
	"github.com/jrsteele09/dashboard-gateway/internal/metrics"
	"github.com/jrsteele09/dashboard-gateway/server/gate"
	"github.com/jrsteele09/dashboard-gateway/token/validation"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	calls  int
	lastID string
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	if c, err := r.Cookie(testNames.IDToken(testUser)); err == nil {
		h.lastID = c.Value
	}
	w.WriteHeader(http.StatusOK)
}

func newEdge(p *fakeProvider, cache validation.Cache) func(http.Handler) http.Handler {
	return gate.NewEdgeGate(p.manager(), cache, testCookies(), gate.DefaultPaths, metrics.NewNop()).Middleware
}

func TestEdgeGate_ValidPairPassesUnmodified(t *testing.T) {
	p := newFakeProvider("id-1", "access-1")
	cache := validation.NewMemoryCache(time.Minute, 10)
	next := &recordingHandler{}
	edge := gate.NewEdgeGate(p.manager(), cache, testCookies(), gate.DefaultPaths, nil).Middleware(next)

	rec := httptest.NewRecorder()
	edge.ServeHTTP(rec, newRequest(http.MethodGet, "/dashboard", &session{testUser, "id-1", "access-1", "refresh-1"}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, next.calls)
	require.Empty(t, rec.Header().Values("Set-Cookie"))

	valid, found, err := cache.Lookup(context.Background(), validation.Fingerprint("id-1", "access-1"))
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, valid)

	t.Run("cached pair skips verification", func(t *testing.T) {
		before, _ := p.counts()
		rec := httptest.NewRecorder()
		edge.ServeHTTP(rec, newRequest(http.MethodGet, "/dashboard", &session{testUser, "id-1", "access-1", "refresh-1"}))

		after, _ := p.counts()
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, before, after)
		require.Equal(t, 2, next.calls)
	})
}

func TestEdgeGate_RefreshesExpiredPair(t *testing.T) {
	p := newFakeProvider()
	p.refreshSet = &identity.TokenSet{IDToken: "id-2", AccessToken: "access-2", ExpiresIn: 48 * time.Hour}
	cache := validation.NewMemoryCache(time.Minute, 10)
	next := &recordingHandler{}
	edge := gate.NewEdgeGate(p.manager(), cache, testCookies(), gate.DefaultPaths, metrics.NewNop()).Middleware(next)

	rec := httptest.NewRecorder()
	edge.ServeHTTP(rec, newRequest(http.MethodGet, "/dashboard", &session{testUser, "id-1", "access-1", "refresh-1"}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, next.calls)
	require.Equal(t, "id-2", next.lastID, "downstream handlers see the refreshed token")

	cookies := cookiesByName(rec)
	require.Len(t, cookies, 2)
	require.Equal(t, "id-2", cookies[testNames.IDToken(testUser)].Value)
	require.Equal(t, "access-2", cookies[testNames.AccessToken(testUser)].Value)
	for _, c := range cookies {
		require.LessOrEqual(t, c.MaxAge, 86400)
		require.Positive(t, c.MaxAge)
		require.True(t, c.Secure)
		require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	}

	ctx := context.Background()
	valid, found, err := cache.Lookup(ctx, validation.Fingerprint("id-2", "access-2"))
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, valid)

	valid, found, err = cache.Lookup(ctx, validation.Fingerprint("id-1", "access-1"))
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, valid)

	t.Run("negative cache entry does not block a later refresh", func(t *testing.T) {
		rec := httptest.NewRecorder()
		edge.ServeHTTP(rec, newRequest(http.MethodGet, "/dashboard", &session{testUser, "id-1", "access-1", "refresh-1"}))
		require.Equal(t, http.StatusOK, rec.Code)
		_, refreshed := p.counts()
		require.Equal(t, 2, refreshed)
	})
}

func TestEdgeGate_MissingTokensGoStraightToRefresh(t *testing.T) {
	p := newFakeProvider()
	p.refreshSet = &identity.TokenSet{IDToken: "id-2", AccessToken: "access-2", ExpiresIn: time.Hour}
	next := &recordingHandler{}
	edge := newEdge(p, validation.NewMemoryCache(time.Minute, 10))(next)

	rec := httptest.NewRecorder()
	edge.ServeHTTP(rec, newRequest(http.MethodGet, "/reports", &session{username: testUser, refresh: "refresh-1"}))

	require.Equal(t, 1, next.calls)
	verified, refreshed := p.counts()
	require.Zero(t, verified)
	require.Equal(t, 1, refreshed)
	require.Equal(t, 3600, cookiesByName(rec)[testNames.IDToken(testUser)].MaxAge)
}

func TestEdgeGate_RedirectsToLogin(t *testing.T) {
	tests := []struct {
		name          string
		session       *session
		refreshErr    error
		clearsSession bool
	}{
		{
			name:    "no last auth user",
			session: nil,
		},
		{
			name:          "no refresh token",
			session:       &session{username: testUser, id: "id-1", access: "access-1"},
			clearsSession: true,
		},
		{
			name:          "refresh rejected",
			session:       &session{testUser, "id-1", "access-1", "refresh-1"},
			refreshErr:    autherrors.Wrapf(autherrors.ErrRefreshFailed, "invalid_grant"),
			clearsSession: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeProvider()
			p.refreshErr = tt.refreshErr
			next := &recordingHandler{}
			edge := newEdge(p, validation.NewMemoryCache(time.Minute, 10))(next)

			rec := httptest.NewRecorder()
			edge.ServeHTTP(rec, newRequest(http.MethodGet, "/dashboard", tt.session))

			require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
			require.Equal(t, "/", rec.Header().Get("Location"))
			require.Zero(t, next.calls)

			cookies := cookiesByName(rec)
			lastAuth, ok := cookies[testNames.LastAuthUser()]
			require.True(t, ok)
			require.Equal(t, -1, lastAuth.MaxAge)
			if tt.clearsSession {
				require.Len(t, cookies, 4)
				for _, name := range []string{testNames.IDToken(testUser), testNames.AccessToken(testUser), testNames.RefreshToken(testUser)} {
					require.Equal(t, -1, cookies[name].MaxAge, name)
				}
			} else {
				require.Len(t, cookies, 1)
			}
		})
	}
}

func TestEdgeGate_LoginPath(t *testing.T) {
	p := newFakeProvider()

	t.Run("existing session goes to the landing page", func(t *testing.T) {
		next := &recordingHandler{}
		rec := httptest.NewRecorder()
		newEdge(p, validation.NewMemoryCache(0, 0))(next).ServeHTTP(rec, newRequest(http.MethodGet, "/", &session{username: testUser}))

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		require.Equal(t, "/dashboard", rec.Header().Get("Location"))
		require.Zero(t, next.calls)
	})

	t.Run("anonymous visitors see the login page", func(t *testing.T) {
		next := &recordingHandler{}
		rec := httptest.NewRecorder()
		newEdge(p, validation.NewMemoryCache(0, 0))(next).ServeHTTP(rec, newRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 1, next.calls)
		require.Empty(t, rec.Header().Values("Set-Cookie"))
	})
}

func TestEdgeGate_ExcludedPathsPassWithoutSession(t *testing.T) {
	p := newFakeProvider()
	for _, target := range []string{"/api/me", "/static/app.css", "/favicon.ico", "/logo.png", "/healthz"} {
		t.Run(target, func(t *testing.T) {
			next := &recordingHandler{}
			rec := httptest.NewRecorder()
			newEdge(p, validation.NewMemoryCache(0, 0))(next).ServeHTTP(rec, newRequest(http.MethodGet, target, nil))
			require.Equal(t, 1, next.calls)
			require.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

type brokenCache struct{}

func (brokenCache) Lookup(context.Context, string) (bool, bool, error) {
	return false, false, errors.New("connection refused")
}

func (brokenCache) Store(context.Context, string, bool) error {
	return errors.New("connection refused")
}

func TestEdgeGate_CacheErrorsAreMisses(t *testing.T) {
	p := newFakeProvider("id-1", "access-1")
	next := &recordingHandler{}
	rec := httptest.NewRecorder()
	newEdge(p, brokenCache{})(next).ServeHTTP(rec, newRequest(http.MethodGet, "/dashboard", &session{testUser, "id-1", "access-1", "refresh-1"}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, next.calls)
	verified, _ := p.counts()
	require.Equal(t, 2, verified)
}

func TestEdgeGate_ConcurrentRequestsSameFingerprint(t *testing.T) {
	p := newFakeProvider("id-1", "access-1")

	// Hold every verification until both requests have started verifying, so both
	// lookups happen before either store.
	var started sync.WaitGroup
	started.Add(4)
	p.verifyHook = func() {
		started.Done()
		started.Wait()
	}

	cache := validation.NewMemoryCache(time.Minute, 10)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	edge := newEdge(p, cache)(next)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			edge.ServeHTTP(rec, newRequest(http.MethodGet, "/dashboard", &session{testUser, "id-1", "access-1", "refresh-1"}))
			codes[i] = rec.Code
		}()
	}
	wg.Wait()

	require.Equal(t, []int{http.StatusOK, http.StatusOK}, codes)
	verified, refreshed := p.counts()
	require.Equal(t, 4, verified)
	require.Zero(t, refreshed)

	valid, found, err := cache.Lookup(context.Background(), validation.Fingerprint("id-1", "access-1"))
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, valid)
}
