package core

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	importIDKey  contextKey = "import_id"
)

// ContextWithSessionID stores the owning session id for log correlation.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext returns the session id, or "" if none is set.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithImportID stores the id of the import being processed.
func ContextWithImportID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, importIDKey, id)
}

// ImportIDFromContext returns the import id, or "" if none is set.
func ImportIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(importIDKey).(string); ok {
		return v
	}
	return ""
}
