package auth

import "context"

// Authenticator verifies an organizer credential.
// This abstraction allows swapping the single shared password for per-organizer
// accounts or an external identity provider without changing the service layer.
type Authenticator interface {
	// Authenticate checks the credential and returns the subject to issue a
	// token for. Returns ErrInvalidCredentials if it does not match.
	Authenticate(ctx context.Context, credential string) (string, error)
}
