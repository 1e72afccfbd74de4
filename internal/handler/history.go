package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/elieceruiz/cleanup/internal/domain"
	"github.com/elieceruiz/cleanup/internal/service"
)

// clearConfirmHeader must carry this value for the destructive clear to run.
const (
	clearConfirmHeader = "X-Confirm"
	clearConfirmValue  = "clear-history"
)

// HistoryHandler serves read-only history projections and the destructive
// clear operation.
type HistoryHandler struct {
	history  *service.HistoryService
	sessions *service.SessionService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history *service.HistoryService, sessions *service.SessionService) *HistoryHandler {
	return &HistoryHandler{history: history, sessions: sessions}
}

// HandleRecent lists completed sessions, newest first.
// GET /api/history?limit=&offset=
func (h *HistoryHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}

	entries, total, err := h.history.Recent(r.Context(), limit, offset)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("list history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": toHistoryResponse(entries),
		"total":    total,
	})
}

// HandleWeekly returns the count of sessions completed in the trailing week.
// GET /api/history/weekly
func (h *HistoryHandler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	count, err := h.history.WeeklyCount(r.Context())
	if err != nil {
		slog.Error("weekly count", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// HandleClear deletes all session history. There is no undo; the request
// must carry the confirmation header or nothing happens.
// DELETE /api/history
func (h *HistoryHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(clearConfirmHeader) != clearConfirmValue {
		writeError(w, http.StatusPreconditionRequired,
			"clearing history is irreversible; set "+clearConfirmHeader+": "+clearConfirmValue+" to confirm")
		return
	}

	if err := h.sessions.ClearHistory(r.Context()); err != nil {
		slog.Error("clear history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
