package domain

import (
	"context"
	"time"
)

// Session is a single before/after cleanup attempt. The before photo opens
// the session and starts the timer; the after photo closes it and records
// whether visual clutter went down.
//
// After-fields (AfterImage, AfterScore, Improved, EndTime, DurationSeconds)
// are written together when the session completes. A reader never sees a
// session with some of them set and others missing.
type Session struct {
	ID              string
	Active          bool
	StartTime       time.Time
	EndTime         *time.Time
	BeforeImage     string // normalized before-photo, lossy JPEG, base64
	BeforeScore     int
	AfterImage      *string
	AfterScore      *int
	Improved        *bool
	DurationSeconds *int
}

// Completed reports whether the session has finished its lifecycle.
func (s *Session) Completed() bool {
	return !s.Active
}

// SessionRepository persists sessions. At most one session may be open
// (Active) at any time; implementations enforce this atomically so that two
// concurrent Create calls cannot both open a session.
type SessionRepository interface {
	// Create inserts a new open session. Returns ErrSessionConflict when
	// another open session already exists.
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	// GetOpen returns the open session, latest by start time.
	// Returns ErrNotFound when no session is open.
	GetOpen(ctx context.Context) (*Session, error)
	// Complete atomically records the after-fields and closes the session.
	// Returns ErrNotFound for an unknown id and ErrSessionCompleted when the
	// session is already closed.
	Complete(ctx context.Context, session *Session) error
	// ListCompleted returns completed sessions sorted by start time
	// descending, with offset/limit pagination.
	ListCompleted(ctx context.Context, limit, offset int) ([]Session, error)
	CountCompleted(ctx context.Context) (int, error)
	// CountCompletedSince counts completed sessions whose start time is at
	// or after the given instant.
	CountCompletedSince(ctx context.Context, since time.Time) (int, error)
	// DeleteAll removes every session record, open or completed.
	DeleteAll(ctx context.Context) error
}

// Database defines lifecycle operations for the underlying database.
// Each implementation owns its own migration files and strategy.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
