package ports

import "context"

// CredentialStore holds the session token the host app's login flow produced.
// The agent only attaches it as a bearer token; it is opaque beyond the expiry
// check the store performs. An expired or missing token surfaces
// domain.ErrSessionExpired / domain.ErrUnauthorized before any network call.
type CredentialStore interface {
	Token(ctx context.Context) (string, error)
}
