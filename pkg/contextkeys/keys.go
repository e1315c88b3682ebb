// Package contextkeys provides the context key definitions shared across the
// application, with type-safe accessors.
package contextkeys

import (
	"context"

	"github.com/vidora/vidora/pkg/accounts"
)

// Key is the type for context keys to prevent collisions.
type Key string

const (
	// AccountKey contains the *accounts.Account (redacted) attached by the
	// auth middleware.
	AccountKey Key = "account"

	// RequestIDKey contains the request ID string set by the request-id
	// middleware.
	RequestIDKey Key = "request_id"
)

// WithAccount attaches the authenticated (redacted) account to the context.
func WithAccount(ctx context.Context, acct *accounts.Account) context.Context {
	return context.WithValue(ctx, AccountKey, acct)
}

// AccountFrom retrieves the authenticated account, or nil when the request
// did not pass the auth gate.
func AccountFrom(ctx context.Context) *accounts.Account {
	acct, ok := ctx.Value(AccountKey).(*accounts.Account)
	if !ok {
		return nil
	}
	return acct
}

// WithRequestID attaches the request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFrom retrieves the request ID, or "" when unset.
func RequestIDFrom(ctx context.Context) string {
	id, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		return ""
	}
	return id
}
