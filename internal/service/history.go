package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elieceruiz/cleanup/internal/domain"
	"github.com/elieceruiz/cleanup/internal/imaging"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// HistoryEntry is a read projection of a completed session. Image blobs are
// verified on the way out; an unreadable blob is replaced with a placeholder
// and noted in Warnings instead of failing the whole page.
type HistoryEntry struct {
	ID              string
	StartTime       time.Time // in the display timezone
	EndTime         time.Time // in the display timezone
	DurationSeconds int
	BeforeScore     int
	AfterScore      int
	Improved        bool
	BeforeImage     string // base64 JPEG blob
	AfterImage      string // base64 JPEG blob
	Warnings        []string
}

// HistoryService is a read-only aggregation over completed sessions.
type HistoryService struct {
	sessions domain.SessionRepository
	location *time.Location

	placeholder string // pre-encoded blob substituted for corrupt images

	now func() time.Time
}

// NewHistoryService creates a new HistoryService. maxImageWidth and
// jpegQuality shape the placeholder so it matches stored images.
func NewHistoryService(sessions domain.SessionRepository, location *time.Location, maxImageWidth, jpegQuality int) *HistoryService {
	placeholder, err := imaging.EncodeBlob(imaging.Placeholder(maxImageWidth, maxImageWidth*2/3), jpegQuality)
	if err != nil {
		// jpeg.Encode cannot fail on an in-memory RGBA image; keep the
		// zero value so a corrupt record renders as an empty blob.
		placeholder = ""
	}
	return &HistoryService{
		sessions:    sessions,
		location:    location,
		placeholder: placeholder,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Recent returns a page of completed sessions, newest first, plus the total
// number of completed sessions for pagination. limit <= 0 falls back to the
// default page size; offset must not be negative.
func (s *HistoryService) Recent(ctx context.Context, limit, offset int) ([]HistoryEntry, int, error) {
	if offset < 0 {
		return nil, 0, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	sessions, err := s.sessions.ListCompleted(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list completed sessions: %w", err)
	}
	total, err := s.sessions.CountCompleted(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count completed sessions: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(sessions))
	for i := range sessions {
		entries = append(entries, s.project(&sessions[i]))
	}
	return entries, total, nil
}

// WeeklyCount returns the number of completed sessions started within the
// trailing seven days.
func (s *HistoryService) WeeklyCount(ctx context.Context) (int, error) {
	since := s.now().Add(-7 * 24 * time.Hour)
	count, err := s.sessions.CountCompletedSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("count weekly sessions: %w", err)
	}
	return count, nil
}

// project converts a completed session into a history entry, recovering
// per-record from corrupt blobs.
func (s *HistoryService) project(session *domain.Session) HistoryEntry {
	entry := HistoryEntry{
		ID:          session.ID,
		StartTime:   session.StartTime.In(s.location),
		BeforeScore: session.BeforeScore,
	}
	entry.BeforeImage = s.checkBlob(session.BeforeImage, "before", session.ID, &entry.Warnings)
	if session.EndTime != nil {
		entry.EndTime = session.EndTime.In(s.location)
	}
	if session.DurationSeconds != nil {
		entry.DurationSeconds = *session.DurationSeconds
	}
	if session.AfterScore != nil {
		entry.AfterScore = *session.AfterScore
	}
	if session.Improved != nil {
		entry.Improved = *session.Improved
	}
	if session.AfterImage != nil {
		entry.AfterImage = s.checkBlob(*session.AfterImage, "after", session.ID, &entry.Warnings)
	}
	return entry
}

// checkBlob verifies a stored blob decodes; on failure it records a warning
// and returns the placeholder so sibling records keep rendering.
func (s *HistoryService) checkBlob(blob, which, sessionID string, warnings *[]string) string {
	if _, err := imaging.DecodeBlob(blob); err != nil {
		if errors.Is(err, domain.ErrCodec) {
			*warnings = append(*warnings, fmt.Sprintf("%s image for session %s is unreadable; showing placeholder", which, sessionID))
			return s.placeholder
		}
		*warnings = append(*warnings, fmt.Sprintf("%s image for session %s: %v", which, sessionID, err))
		return s.placeholder
	}
	return blob
}
