package claims

import (
	"context"
	"fmt"
	"slices"

	"github.com/jrsteele09/dashboard-gateway/identity"
	autherrors "github.com/jrsteele09/dashboard-gateway/internal/errors"
)

// DefaultRole is granted to authenticated users who belong to no provider group.
const DefaultRole = "employee"

// Resolver computes a caller's roles from their provider group memberships. Results are
// never cached so membership changes apply on the next request.
type Resolver struct {
	groups      identity.GroupLister
	defaultRole string
	mapping     map[string]string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDefaultRole overrides DefaultRole.
func WithDefaultRole(role string) ResolverOption {
	return func(r *Resolver) {
		if role != "" {
			r.defaultRole = role
		}
	}
}

// WithGroupMapping maps provider group names to role names. Unmapped groups keep their name.
func WithGroupMapping(mapping map[string]string) ResolverOption {
	return func(r *Resolver) {
		r.mapping = mapping
	}
}

func NewResolver(groups identity.GroupLister, opts ...ResolverOption) *Resolver {
	r := &Resolver{groups: groups, defaultRole: DefaultRole}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Roles lists the roles held by username.
func (r *Resolver) Roles(ctx context.Context, username string) ([]string, error) {
	groups, err := r.groups.ListGroupsForUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", autherrors.ErrRoleLookup, err)
	}
	if len(groups) == 0 {
		return []string{r.defaultRole}, nil
	}

	roles := make([]string, 0, len(groups))
	for _, g := range groups {
		if mapped, ok := r.mapping[g]; ok {
			g = mapped
		}
		if !slices.Contains(roles, g) {
			roles = append(roles, g)
		}
	}
	return roles, nil
}

// HasAnyRole reports whether held intersects allowed. An empty allow-list permits everyone.
func HasAnyRole(held, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, role := range held {
		if slices.Contains(allowed, role) {
			return true
		}
	}
	return false
}
