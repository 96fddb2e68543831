package domain

import "context"

// ContextKey is a type for context keys to avoid magic strings
type ContextKey string

// ContextKeyRequestID is the key for the request ID in the context
const ContextKeyRequestID ContextKey = "request_id"

// WithRequestID adds the request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok
}
