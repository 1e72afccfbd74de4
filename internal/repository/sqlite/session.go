package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elieceruiz/cleanup/internal/domain"
)

const sessionColumns = `id, session_active, start_time, end_time, image_base64, edges,
	 image_after, edges_after, improved, duration_seconds`

// SessionRepository implements domain.SessionRepository using SQLite.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SQLite-backed SessionRepository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db.SqlDB}
}

// Create inserts a new open session. The partial unique index on
// session_active turns a concurrent second open session into a constraint
// violation, reported as domain.ErrSessionConflict.
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, session_active, start_time, image_base64, edges)
		 VALUES (?, 1, ?, ?, ?)`,
		session.ID, session.StartTime.UTC(), session.BeforeImage, session.BeforeScore,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrSessionConflict
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

func (r *SessionRepository) GetOpen(ctx context.Context) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE session_active = 1 ORDER BY start_time DESC LIMIT 1`)
	return scanSession(row)
}

// Complete closes the session and records all after-fields in one statement.
// The session_active guard makes the update conditional: a session that was
// completed concurrently is left untouched.
func (r *SessionRepository) Complete(ctx context.Context, session *domain.Session) error {
	if session.EndTime == nil || session.AfterImage == nil || session.AfterScore == nil ||
		session.Improved == nil || session.DurationSeconds == nil {
		return fmt.Errorf("%w: incomplete after-fields", domain.ErrInvalidInput)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET
		 session_active = 0, end_time = ?, image_after = ?, edges_after = ?,
		 improved = ?, duration_seconds = ?
		 WHERE id = ? AND session_active = 1`,
		session.EndTime.UTC(), *session.AfterImage, *session.AfterScore,
		*session.Improved, *session.DurationSeconds, session.ID,
	)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		// Nothing matched: either the id is unknown or the session is
		// already closed. Distinguish for the caller.
		if _, err := r.GetByID(ctx, session.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("check session after update: %w", err)
		}
		return domain.ErrSessionCompleted
	}
	return nil
}

func (r *SessionRepository) ListCompleted(ctx context.Context, limit, offset int) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE session_active = 0
		 ORDER BY start_time DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		var active int
		if err := rows.Scan(&s.ID, &active, &s.StartTime, &s.EndTime, &s.BeforeImage, &s.BeforeScore,
			&s.AfterImage, &s.AfterScore, &s.Improved, &s.DurationSeconds); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Active = active != 0
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) CountCompleted(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE session_active = 0").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed sessions: %w", err)
	}
	return count, nil
}

func (r *SessionRepository) CountCompletedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE session_active = 0 AND start_time >= ?",
		since.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed sessions since: %w", err)
	}
	return count, nil
}

func (r *SessionRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
		return fmt.Errorf("delete all sessions: %w", err)
	}
	return nil
}

// scanSession reads a single session row, mapping sql.ErrNoRows to
// domain.ErrNotFound.
func scanSession(row *sql.Row) (*domain.Session, error) {
	s := &domain.Session{}
	var active int
	err := row.Scan(&s.ID, &active, &s.StartTime, &s.EndTime, &s.BeforeImage, &s.BeforeScore,
		&s.AfterImage, &s.AfterScore, &s.Improved, &s.DurationSeconds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	s.Active = active != 0
	return s, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil &&
		(strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "unique constraint"))
}
