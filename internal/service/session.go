package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/elieceruiz/cleanup/internal/domain"
	"github.com/elieceruiz/cleanup/internal/imaging"
)

// SessionService owns the cleanup-session lifecycle: a before photo opens a
// session and starts the timer, an after photo scores the result and closes
// it. At most one session is open at a time; starting another while one is
// open is rejected with domain.ErrSessionConflict.
type SessionService struct {
	sessions          domain.SessionRepository
	maxImageWidth     int
	jpegQuality       int
	improvementFactor float64

	now func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions domain.SessionRepository, maxImageWidth, jpegQuality int, improvementFactor float64) *SessionService {
	return &SessionService{
		sessions:          sessions,
		maxImageWidth:     maxImageWidth,
		jpegQuality:       jpegQuality,
		improvementFactor: improvementFactor,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// Start normalizes and scores the before photo and opens a new session.
// The repository's conditional insert makes the singleton check atomic, so
// concurrent starts cannot open two sessions.
func (s *SessionService) Start(ctx context.Context, rawImage []byte) (*domain.Session, error) {
	img, err := imaging.Normalize(rawImage, s.maxImageWidth)
	if err != nil {
		return nil, err
	}
	score := imaging.ClutterScore(img)

	blob, err := imaging.EncodeBlob(img, s.jpegQuality)
	if err != nil {
		return nil, fmt.Errorf("encode before image: %w", err)
	}

	session := &domain.Session{
		ID:          uuid.NewString(),
		Active:      true,
		StartTime:   s.now(),
		BeforeImage: blob,
		BeforeScore: score,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitAfter normalizes and scores the after photo, decides improvement,
// and completes the session. All after-fields land in a single conditional
// repository write, so a crash or a concurrent reader never sees a session
// with the after score set but the verdict missing.
func (s *SessionService) SubmitAfter(ctx context.Context, id string, rawImage []byte) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Completed() {
		return nil, domain.ErrSessionCompleted
	}

	img, err := imaging.Normalize(rawImage, s.maxImageWidth)
	if err != nil {
		return nil, err
	}
	afterScore := imaging.ClutterScore(img)

	blob, err := imaging.EncodeBlob(img, s.jpegQuality)
	if err != nil {
		return nil, fmt.Errorf("encode after image: %w", err)
	}

	now := s.now()
	improved := float64(afterScore) < float64(session.BeforeScore)*s.improvementFactor
	duration := int(now.Sub(session.StartTime).Seconds())

	session.Active = false
	session.EndTime = &now
	session.AfterImage = &blob
	session.AfterScore = &afterScore
	session.Improved = &improved
	session.DurationSeconds = &duration

	if err := s.sessions.Complete(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Current returns the open session, or nil when none is open.
func (s *SessionService) Current(ctx context.Context) (*domain.Session, error) {
	session, err := s.sessions.GetOpen(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open session: %w", err)
	}
	return session, nil
}

// Elapsed returns the whole seconds the session timer has been running.
func (s *SessionService) Elapsed(session *domain.Session) int {
	return int(s.now().Sub(session.StartTime).Seconds())
}

// ClearHistory irreversibly deletes every session record, open or completed.
// Confirmation is the interface layer's job; this call does not ask twice.
func (s *SessionService) ClearHistory(ctx context.Context) error {
	if err := s.sessions.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete all sessions: %w", err)
	}
	return nil
}
