// Package identity is the client side of the external identity provider: token
// verification against the provider's published keys, refresh-token exchange at its
// token endpoint and group membership lookups.
package identity

import (
	"context"
	"time"
)

// TokenUse distinguishes the two signed tokens of a session.
type TokenUse string

const (
	TokenUseID     TokenUse = "id"
	TokenUseAccess TokenUse = "access"
)

// TokenSet is the result of a successful refresh exchange.
type TokenSet struct {
	IDToken     string
	AccessToken string
	// ExpiresIn is the lifetime reported by the provider. Zero when it reported none.
	ExpiresIn time.Duration
}

// VerifiedToken is what remains of a token after signature, expiry and audience checks.
type VerifiedToken struct {
	Use     TokenUse
	Subject string
	Expiry  time.Time
	Claims  map[string]any
}

// Verifier checks a raw token against the provider's public keys.
type Verifier interface {
	Verify(ctx context.Context, rawToken string, use TokenUse) (*VerifiedToken, error)
}

// Refresher exchanges a refresh token for a new ID/access token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
}

// GroupLister lists the provider groups a user belongs to.
type GroupLister interface {
	ListGroupsForUser(ctx context.Context, username string) ([]string, error)
}

// Provider is the full set of operations consumed from the identity provider.
type Provider interface {
	Verifier
	Refresher
	GroupLister
}

// Compose glues a token client and a group lister into a Provider.
func Compose(tokens interface {
	Verifier
	Refresher
}, groups GroupLister) Provider {
	return composed{tokens: tokens, GroupLister: groups}
}

type composed struct {
	tokens interface {
		Verifier
		Refresher
	}
	GroupLister
}

func (c composed) Verify(ctx context.Context, rawToken string, use TokenUse) (*VerifiedToken, error) {
	return c.tokens.Verify(ctx, rawToken, use)
}

func (c composed) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	return c.tokens.Refresh(ctx, refreshToken)
}
