// Package auth carries the authenticated identity through request contexts
// and defines the JWT claims Aegis issues.
package auth

import "context"

// Identity is the resolved caller identity: who is asking, and in which
// tenant domain.
type Identity struct {
	// Subject is the user identifier.
	Subject string

	// Domain is the tenant-isolation key scoping the subject's roles.
	Domain string
}

// contextKey is the type for context keys in this package.
type contextKey string

const identityKey contextKey = "auth:identity"

// ContextWithIdentity returns a new context with the given identity.
func ContextWithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFromContext returns the identity from the context, or nil when
// the request is unauthenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	if ident, ok := ctx.Value(identityKey).(*Identity); ok {
		return ident
	}
	return nil
}

// SubjectFromContext returns the subject from the context, or "".
func SubjectFromContext(ctx context.Context) string {
	if ident := IdentityFromContext(ctx); ident != nil {
		return ident.Subject
	}
	return ""
}
