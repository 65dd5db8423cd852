// Package validation caches the outcome of token pair verification so that a burst of
// requests from one session does not re-verify the same pair against the identity provider.
package validation

import (
	"context"
	"time"
)

const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 1000
)

// Cache stores verification outcomes keyed by a token pair fingerprint.
type Cache interface {
	// Lookup returns the stored outcome while it is still within its TTL.
	// found is false for unknown or expired fingerprints.
	Lookup(ctx context.Context, fingerprint string) (valid, found bool, err error)
	// Store inserts or overwrites the outcome for fingerprint with a fresh TTL.
	Store(ctx context.Context, fingerprint string, valid bool) error
}
