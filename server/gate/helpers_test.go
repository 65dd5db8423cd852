package gate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/dashboard-gateway/identity"
	autherrors "github.com/jrsteele09/dashboard-gateway/internal/errors"
	"github.com/jrsteele09/dashboard-gateway/sessions"
	"github.com/jrsteele09/dashboard-gateway/token/refresh"
	"github.com/stretchr/testify/require"
)

const testUser = "jane"

var testNames = sessions.NewCookieNames("", "client123")

func testCookies() sessions.Writer {
	return sessions.Writer{Names: testNames, MaxAge: sessions.MaxSessionAge}
}

// idToken builds a decodable identity token. Signatures are checked by the fake provider
// through its valid set, not cryptographically.
func idToken(t *testing.T, sub, email string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":              sub,
		"email":            email,
		"cognito:username": testUser,
		"exp":              time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test"))
	require.NoError(t, err)
	return raw
}

type fakeProvider struct {
	mu         sync.Mutex
	valid      map[string]bool
	verifyHook func()
	verified   int
	refreshed  int
	refreshSet *identity.TokenSet
	refreshErr error
	groups     []string
	groupsErr  error
	groupCalls int
}

func newFakeProvider(validTokens ...string) *fakeProvider {
	p := &fakeProvider{valid: map[string]bool{}}
	for _, tok := range validTokens {
		p.valid[tok] = true
	}
	return p
}

func (p *fakeProvider) Verify(_ context.Context, raw string, use identity.TokenUse) (*identity.VerifiedToken, error) {
	p.mu.Lock()
	p.verified++
	hook := p.verifyHook
	ok := p.valid[raw]
	p.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, autherrors.ErrTokenExpired
	}
	return &identity.VerifiedToken{Use: use}, nil
}

func (p *fakeProvider) Refresh(_ context.Context, _ string) (*identity.TokenSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshed++
	if p.refreshErr != nil {
		return nil, p.refreshErr
	}
	return p.refreshSet, nil
}

func (p *fakeProvider) ListGroupsForUser(_ context.Context, _ string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.groupCalls++
	return p.groups, p.groupsErr
}

func (p *fakeProvider) counts() (verified, refreshed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.verified, p.refreshed
}

func (p *fakeProvider) manager() *refresh.Manager {
	return refresh.NewManager(p, p, time.Second)
}

type session struct {
	username, id, access, refresh string
}

func newRequest(method, target string, s *session) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	addSession(r, s)
	return r
}

func addSession(r *http.Request, s *session) {
	if s == nil {
		return
	}
	r.AddCookie(&http.Cookie{Name: testNames.LastAuthUser(), Value: s.username})
	if s.id != "" {
		r.AddCookie(&http.Cookie{Name: testNames.IDToken(s.username), Value: s.id})
	}
	if s.access != "" {
		r.AddCookie(&http.Cookie{Name: testNames.AccessToken(s.username), Value: s.access})
	}
	if s.refresh != "" {
		r.AddCookie(&http.Cookie{Name: testNames.RefreshToken(s.username), Value: s.refresh})
	}
}

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}
