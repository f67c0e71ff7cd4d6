package audit

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// PGRecorder persists audit entries in the logs table.
type PGRecorder struct {
	db  *sql.DB
	now func() time.Time
}

// NewPGRecorder wraps an open database handle.
func NewPGRecorder(db *sql.DB) *PGRecorder {
	return &PGRecorder{db: db, now: time.Now}
}

// Record inserts one audit row.
func (r *PGRecorder) Record(ctx context.Context, action, actor, details string) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return errors.New("audit: action is required")
	}
	_, err := r.db.ExecContext(ctx, `
		insert into logs(action, username, occurred_at, details, request_id)
		values ($1,$2,$3,$4,$5)
	`, action, actor, r.now().UTC(), details, RequestIDFromContext(ctx))
	return err
}
