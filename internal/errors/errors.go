package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard gateway
var (
	// Session errors
	ErrNoSession           = errors.New("no authenticated session")
	ErrMissingRefreshToken = errors.New("missing refresh token")
	ErrSessionExpired      = errors.New("session expired")

	// Token errors
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenVerification  = errors.New("token verification failed")
	ErrRefreshFailed      = errors.New("token refresh failed")
	ErrMissingClaim       = errors.New("token missing required claim")
	ErrUnexpectedTokenUse = errors.New("unexpected token use")

	// Authorization errors
	ErrForbidden  = errors.New("forbidden")
	ErrRoleLookup = errors.New("role lookup failed")

	// Request errors
	ErrValidation             = errors.New("validation failed")
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
