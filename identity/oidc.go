package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	autherrors "github.com/jrsteele09/dashboard-gateway/internal/errors"
	"github.com/jrsteele09/dashboard-gateway/internal/metrics"
	"golang.org/x/oauth2"
)

// OIDCOptions configures an OIDCClient.
type OIDCOptions struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	// TokenURL overrides the discovered token endpoint when set.
	TokenURL   string
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
	// Now overrides the clock used for expiry checks.
	Now func() time.Time
}

// OIDCClient verifies and refreshes session tokens against an OpenID Connect provider.
type OIDCClient struct {
	provider       *oidc.Provider
	oauth2Config   *oauth2.Config
	idVerifier     *oidc.IDTokenVerifier
	accessVerifier *oidc.IDTokenVerifier
	clientID       string
	httpClient     *http.Client
	metrics        *metrics.Metrics
}

var _ interface {
	Verifier
	Refresher
} = (*OIDCClient)(nil)

// NewOIDCClient discovers the provider configuration and builds the ID and access token verifiers.
func NewOIDCClient(ctx context.Context, opts OIDCOptions) (*OIDCClient, error) {
	if opts.IssuerURL == "" {
		return nil, errors.New("[identity NewOIDCClient] issuer URL is required")
	}
	if opts.ClientID == "" {
		return nil, errors.New("[identity NewOIDCClient] client ID is required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 8 * time.Second}
	}

	// The key set keeps this context for its background JWKS fetches.
	providerCtx := oidc.ClientContext(context.WithoutCancel(ctx), hc)
	provider, err := oidc.NewProvider(providerCtx, opts.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("[identity NewOIDCClient] failed to create OIDC provider: %w", err)
	}

	endpoint := provider.Endpoint()
	if opts.TokenURL != "" {
		endpoint.TokenURL = opts.TokenURL
	}

	return &OIDCClient{
		provider: provider,
		oauth2Config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		idVerifier: provider.Verifier(&oidc.Config{
			ClientID: opts.ClientID,
			Now:      opts.Now,
		}),
		// Access tokens carry the client in "client_id" rather than "aud".
		accessVerifier: provider.Verifier(&oidc.Config{
			SkipClientIDCheck: true,
			Now:               opts.Now,
		}),
		clientID:   opts.ClientID,
		httpClient: hc,
		metrics:    opts.Metrics,
	}, nil
}

// Verify checks signature, expiry and audience of rawToken for the given use.
func (c *OIDCClient) Verify(ctx context.Context, rawToken string, use TokenUse) (*VerifiedToken, error) {
	defer c.metrics.ObserveIdentity("verify_"+string(use), time.Now())

	verifier := c.idVerifier
	if use == TokenUseAccess {
		verifier = c.accessVerifier
	}

	token, err := verifier.Verify(oidc.ClientContext(ctx, c.httpClient), rawToken)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return nil, autherrors.Wrapf(autherrors.ErrTokenExpired, "%s token expired at %s", use, expired.Expiry.Format(time.RFC3339))
		}
		return nil, fmt.Errorf("%w: %s token: %v", autherrors.ErrTokenVerification, use, err)
	}

	claims := map[string]any{}
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %s token claims: %v", autherrors.ErrTokenVerification, use, err)
	}

	if tokenUse, ok := claims["token_use"].(string); ok && tokenUse != string(use) {
		return nil, autherrors.Wrapf(autherrors.ErrUnexpectedTokenUse, "expected %q, got %q", use, tokenUse)
	}
	if use == TokenUseAccess {
		if clientID, _ := claims["client_id"].(string); clientID != c.clientID {
			return nil, fmt.Errorf("%w: access token issued to client %q", autherrors.ErrTokenVerification, clientID)
		}
	}

	return &VerifiedToken{
		Use:     use,
		Subject: token.Subject,
		Expiry:  token.Expiry,
		Claims:  claims,
	}, nil
}

// Refresh exchanges refreshToken at the token endpoint (grant_type=refresh_token).
func (c *OIDCClient) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	defer c.metrics.ObserveIdentity("refresh", time.Now())

	if refreshToken == "" {
		return nil, autherrors.ErrMissingRefreshToken
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth2Config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			return nil, fmt.Errorf("%w: %w", autherrors.ErrRefreshFailed, &RefreshError{StatusCode: status, Body: string(retrieveErr.Body)})
		}
		return nil, fmt.Errorf("%w: %v", autherrors.ErrRefreshFailed, err)
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return nil, fmt.Errorf("%w: no id_token in token response", autherrors.ErrRefreshFailed)
	}

	var expiresIn time.Duration
	if !token.Expiry.IsZero() {
		expiresIn = time.Until(token.Expiry).Round(time.Second)
	}

	return &TokenSet{
		IDToken:     idToken,
		AccessToken: token.AccessToken,
		ExpiresIn:   expiresIn,
	}, nil
}
