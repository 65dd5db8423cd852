package claims_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	autherrors "github.com/jrsteele09/dashboard-gateway/internal/errors"
	"github.com/jrsteele09/dashboard-gateway/token/claims"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, mc jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte("unused-by-decode"))
	require.NoError(t, err)
	return raw
}

func TestDecode(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("reads identity fields", func(t *testing.T) {
		c, err := claims.Decode(signed(t, jwt.MapClaims{
			"sub":              "0f7c-sub",
			"email":            "jane@example.com",
			"cognito:username": "jane",
			"cognito:groups":   []string{"admin", "editor"},
			"exp":              exp.Unix(),
		}))
		require.NoError(t, err)
		require.Equal(t, "0f7c-sub", c.Subject)
		require.Equal(t, "jane@example.com", c.Email)
		require.Equal(t, "jane", c.Username)
		require.Equal(t, []string{"admin", "editor"}, c.Groups)
		require.True(t, exp.Equal(c.ExpiresAt))
	})

	t.Run("expired tokens still decode", func(t *testing.T) {
		c, err := claims.Decode(signed(t, jwt.MapClaims{
			"sub": "s",
			"exp": time.Now().Add(-time.Hour).Unix(),
		}))
		require.NoError(t, err)
		require.Equal(t, "s", c.Subject)
		require.Empty(t, c.Email)
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := claims.Decode(signed(t, jwt.MapClaims{"email": "jane@example.com"}))
		require.ErrorIs(t, err, autherrors.ErrMissingClaim)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := claims.Decode("definitely.not.ajwt")
		require.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})
}

type fakeGroups struct {
	groups []string
	err    error
	calls  int
}

func (f *fakeGroups) ListGroupsForUser(context.Context, string) ([]string, error) {
	f.calls++
	return f.groups, f.err
}

func TestResolver_Roles(t *testing.T) {
	ctx := context.Background()

	t.Run("groups become roles", func(t *testing.T) {
		roles, err := claims.NewResolver(&fakeGroups{groups: []string{"admin", "editor"}}).Roles(ctx, "jane")
		require.NoError(t, err)
		require.Equal(t, []string{"admin", "editor"}, roles)
	})

	t.Run("zero groups default to employee", func(t *testing.T) {
		roles, err := claims.NewResolver(&fakeGroups{}).Roles(ctx, "jane")
		require.NoError(t, err)
		require.Equal(t, []string{claims.DefaultRole}, roles)
	})

	t.Run("custom default role", func(t *testing.T) {
		roles, err := claims.NewResolver(&fakeGroups{}, claims.WithDefaultRole("viewer")).Roles(ctx, "jane")
		require.NoError(t, err)
		require.Equal(t, []string{"viewer"}, roles)
	})

	t.Run("group mapping", func(t *testing.T) {
		r := claims.NewResolver(&fakeGroups{groups: []string{"Admins", "SuperAdmins", "finance"}},
			claims.WithGroupMapping(map[string]string{"Admins": "admin", "SuperAdmins": "admin"}))
		roles, err := r.Roles(ctx, "jane")
		require.NoError(t, err)
		require.Equal(t, []string{"admin", "finance"}, roles)
	})

	t.Run("lookup failure", func(t *testing.T) {
		_, err := claims.NewResolver(&fakeGroups{err: errors.New("boom")}).Roles(ctx, "jane")
		require.ErrorIs(t, err, autherrors.ErrRoleLookup)
	})

	t.Run("not cached", func(t *testing.T) {
		groups := &fakeGroups{groups: []string{"admin"}}
		r := claims.NewResolver(groups)
		_, _ = r.Roles(ctx, "jane")
		groups.groups = nil
		roles, err := r.Roles(ctx, "jane")
		require.NoError(t, err)
		require.Equal(t, []string{claims.DefaultRole}, roles)
		require.Equal(t, 2, groups.calls)
	})
}

func TestHasAnyRole(t *testing.T) {
	tests := []struct {
		name    string
		held    []string
		allowed []string
		want    bool
	}{
		{"empty allow-list permits any caller", []string{"employee"}, nil, true},
		{"empty allow-list permits caller without roles", nil, []string{}, true},
		{"intersection", []string{"employee", "admin"}, []string{"admin"}, true},
		{"no intersection", []string{"employee"}, []string{"admin"}, false},
		{"no roles against allow-list", nil, []string{"admin"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, claims.HasAnyRole(tt.held, tt.allowed))
		})
	}
}
