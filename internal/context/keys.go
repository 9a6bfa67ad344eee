// Package context provides shared context utilities
package context

import (
	"context"
)

// contextKey is used for context values
type contextKey struct {
	name string
}

var (
	// UserIDKey is the key used to store userID in context
	UserIDKey = contextKey{"userID"}
	// AccessTokenKey stores the caller's bearer token.
	AccessTokenKey = contextKey{"accessToken"}
	// RequestIDKey stores the request correlation id.
	RequestIDKey = contextKey{"requestID"}
)

// GetUserIDFromContext extracts userID from context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// WithUserID adds userID to context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetAccessToken extracts the caller's bearer token.
func GetAccessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(AccessTokenKey).(string)
	return token, ok && token != ""
}

// WithAccessToken stores the caller's bearer token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, AccessTokenKey, token)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID stores the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}
