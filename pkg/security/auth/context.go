// Package auth carries the authenticated identity through request contexts.
package auth

import (
	"context"

	"github.com/kart-io/datasphere/pkg/security/auth/identity"
)

// contextKey is the type for context keys in this package.
type contextKey string

const (
	// identityKey is the context key for storing the verified Identity.
	identityKey contextKey = "auth:identity"

	// tokenKey is the context key for storing the raw token string.
	tokenKey contextKey = "auth:token"
)

// ContextWithIdentity returns a new context with the given identity.
func ContextWithIdentity(ctx context.Context, id *identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity from the context, or nil.
func IdentityFromContext(ctx context.Context) *identity.Identity {
	if id, ok := ctx.Value(identityKey).(*identity.Identity); ok {
		return id
	}
	return nil
}

// SubjectFromContext returns the uid of the caller, or "" when anonymous.
func SubjectFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.UID
	}
	return ""
}

// ContextWithToken returns a new context with the given token string.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the token string from the context.
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey).(string); ok {
		return token
	}
	return ""
}

// InjectAuth injects all authentication information into the context.
func InjectAuth(ctx context.Context, id *identity.Identity, token string) context.Context {
	return ContextWithToken(ContextWithIdentity(ctx, id), token)
}
