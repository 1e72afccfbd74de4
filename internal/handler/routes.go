package handler

import (
	"net/http"

	"github.com/elieceruiz/cleanup/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, sessions *service.SessionService, history *service.HistoryService, maxUploadBytes int64) {
	sessionHandler := NewSessionHandler(sessions, maxUploadBytes)
	historyHandler := NewHistoryHandler(history, sessions)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /api/sessions", sessionHandler.HandleStart)
	mux.HandleFunc("POST /api/sessions/{id}/after", sessionHandler.HandleSubmitAfter)
	mux.HandleFunc("GET /api/sessions/current", sessionHandler.HandleCurrent)
	mux.HandleFunc("GET /api/sessions/current/stream", sessionHandler.HandleStream)

	mux.HandleFunc("GET /api/history", historyHandler.HandleRecent)
	mux.HandleFunc("GET /api/history/weekly", historyHandler.HandleWeekly)
	mux.HandleFunc("DELETE /api/history", historyHandler.HandleClear)
}
