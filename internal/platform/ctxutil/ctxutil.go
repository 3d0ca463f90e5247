package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	traceKey
)

// SessionData identifies the browser session behind a request. UserID is uuid.Nil until
// the session logs in.
type SessionData struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
	Token     string
}

// TraceData carries correlation ids for logs and outbound calls.
type TraceData struct {
	TraceID   string
	RequestID string
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func lookup[T any](ctx context.Context, key ctxKey) *T {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(key).(*T)
	return v
}

func WithSessionData(ctx context.Context, sd *SessionData) context.Context {
	return context.WithValue(Default(ctx), sessionKey, sd)
}

func GetSessionData(ctx context.Context) *SessionData { return lookup[SessionData](ctx, sessionKey) }

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(Default(ctx), traceKey, td)
}

func GetTraceData(ctx context.Context) *TraceData { return lookup[TraceData](ctx, traceKey) }

// RequestID is empty when the context carries no trace data.
func RequestID(ctx context.Context) string {
	if td := GetTraceData(ctx); td != nil {
		return td.RequestID
	}
	return ""
}
