package handler

import (
	"time"

	"github.com/elieceruiz/cleanup/internal/domain"
	"github.com/elieceruiz/cleanup/internal/service"
)

// sessionResponse is the wire shape of a session. Image blobs are left out;
// history entries carry them.
type sessionResponse struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	StartTime       time.Time  `json:"start_time"`
	BeforeScore     int        `json:"before_score"`
	ElapsedSeconds  *int       `json:"elapsed_seconds,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	AfterScore      *int       `json:"after_score,omitempty"`
	Improved        *bool      `json:"improved,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
}

func toSessionResponse(s *domain.Session, elapsedSeconds *int) sessionResponse {
	status := "active"
	if s.Completed() {
		status = "completed"
	}
	return sessionResponse{
		ID:              s.ID,
		Status:          status,
		StartTime:       s.StartTime,
		BeforeScore:     s.BeforeScore,
		ElapsedSeconds:  elapsedSeconds,
		EndTime:         s.EndTime,
		AfterScore:      s.AfterScore,
		Improved:        s.Improved,
		DurationSeconds: s.DurationSeconds,
	}
}

// historyEntryResponse is the wire shape of one completed session in the
// history listing, images included.
type historyEntryResponse struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds int       `json:"duration_seconds"`
	BeforeScore     int       `json:"before_score"`
	AfterScore      int       `json:"after_score"`
	Improved        bool      `json:"improved"`
	BeforeImage     string    `json:"before_image"`
	AfterImage      string    `json:"after_image"`
	Warnings        []string  `json:"warnings,omitempty"`
}

func toHistoryResponse(entries []service.HistoryEntry) []historyEntryResponse {
	out := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryResponse{
			ID:              e.ID,
			StartTime:       e.StartTime,
			EndTime:         e.EndTime,
			DurationSeconds: e.DurationSeconds,
			BeforeScore:     e.BeforeScore,
			AfterScore:      e.AfterScore,
			Improved:        e.Improved,
			BeforeImage:     e.BeforeImage,
			AfterImage:      e.AfterImage,
			Warnings:        e.Warnings,
		})
	}
	return out
}
