// Package audit records who did what to orders. Entries carry the action,
// the acting user, and free-form details; recorders decide where the entry
// lands (structured log, Postgres).
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"ordena.org/internal/obs"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context so recorders
// can correlate audit entries with access logs.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the audit request id from context if present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogRecorder writes audit entries as JSON lines on the process logger.
type LogRecorder struct {
	now func() time.Time
}

// NewLogRecorder returns a recorder backed by the process logger.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{now: time.Now}
}

// Record emits one audit line.
func (r *LogRecorder) Record(ctx context.Context, action, actor, details string) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return errors.New("audit: action is required")
	}
	entry := map[string]any{
		"ts":      r.now().UTC().Format(time.RFC3339Nano),
		"type":    "audit",
		"action":  action,
		"actor":   actor,
		"details": details,
	}
	if rid := RequestIDFromContext(ctx); rid != "" {
		entry["request_id"] = rid
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	obs.Logger().Println(string(data))
	return nil
}
