package identity

import (
	"context"
	"errors"
)

// Identity is what the external identity provider asserts about a caller.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

var (
	// ErrInvalidCredentials means the token was rejected by the provider.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	// ErrUnavailable means verification could not be attempted at all,
	// typically because the verifier is not configured.
	ErrUnavailable = errors.New("identity: verification service unavailable")
)

// Verifier checks a bearer token with an identity provider and returns the
// verified identity. Implementations hold no per-request state and are safe
// for concurrent use.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
