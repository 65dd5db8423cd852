// Package refresh holds the verify-then-refresh procedure shared by both session gates.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/dashboard-gateway/identity"
	autherrors "github.com/jrsteele09/dashboard-gateway/internal/errors"
	"github.com/jrsteele09/dashboard-gateway/sessions"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds each verification and refresh round trip.
const DefaultTimeout = 5 * time.Second

// Manager verifies session token pairs and refreshes them when verification fails.
// Each gate owns its own Manager.
type Manager struct {
	verifier  identity.Verifier
	refresher identity.Refresher
	timeout   time.Duration
}

// NewManager creates a manager. A non-positive timeout uses DefaultTimeout.
func NewManager(verifier identity.Verifier, refresher identity.Refresher, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{
		verifier:  verifier,
		refresher: refresher,
		timeout:   timeout,
	}
}

// Result is the outcome of EnsureValid. Refreshed is non-nil when Pair carries new tokens.
type Result struct {
	Pair      sessions.TokenPair
	Refreshed *identity.TokenSet
}

// VerifyPair verifies the ID and access tokens concurrently. Both calls always run to
// completion and the pair is valid only if both succeed.
func (m *Manager) VerifyPair(ctx context.Context, idToken, accessToken string) error {
	if idToken == "" || accessToken == "" {
		return autherrors.Wrapf(autherrors.ErrInvalidToken, "token pair incomplete")
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		_, err := m.verifier.Verify(ctx, idToken, identity.TokenUseID)
		return err
	})
	g.Go(func() error {
		_, err := m.verifier.Verify(ctx, accessToken, identity.TokenUseAccess)
		return err
	})
	return g.Wait()
}

// Refresh makes a single exchange attempt for refreshToken.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*identity.TokenSet, error) {
	if refreshToken == "" {
		return nil, autherrors.ErrMissingRefreshToken
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	return m.refresher.Refresh(ctx, refreshToken)
}

// EnsureValid returns pair unchanged when it verifies, otherwise the pair obtained by
// refreshing it.
func (m *Manager) EnsureValid(ctx context.Context, pair sessions.TokenPair) (Result, error) {
	verifyErr := m.VerifyPair(ctx, pair.IDToken, pair.AccessToken)
	if verifyErr == nil {
		return Result{Pair: pair}, nil
	}

	set, err := m.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		return Result{}, fmt.Errorf("%w (after verification failed: %v)", err, verifyErr)
	}

	pair.IDToken = set.IDToken
	pair.AccessToken = set.AccessToken
	return Result{Pair: pair, Refreshed: set}, nil
}
