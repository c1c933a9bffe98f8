package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID   contextKey = "request_id"
	ContextKeyRequesterID contextKey = "requester_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithRequesterID adds the requester identity to the context
func WithRequesterID(ctx context.Context, requesterID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequesterID, requesterID)
}

// RequesterIDFromContext extracts the requester identity from context
func RequesterIDFromContext(ctx context.Context) string {
	if requesterID, ok := ctx.Value(ContextKeyRequesterID).(string); ok {
		return requesterID
	}
	return ""
}
