package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/elieceruiz/cleanup/internal/domain"
	"github.com/elieceruiz/cleanup/internal/service"
)

// SessionHandler handles cleanup-session HTTP requests.
type SessionHandler struct {
	sessions       *service.SessionService
	maxUploadBytes int64
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService, maxUploadBytes int64) *SessionHandler {
	return &SessionHandler{sessions: sessions, maxUploadBytes: maxUploadBytes}
}

// HandleStart opens a new session from the uploaded before photo.
// POST /api/sessions
func (h *SessionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	data, err := h.readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.sessions.Start(r.Context(), data)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionConflict):
			writeError(w, http.StatusConflict, "a session is already open; finish it before starting another")
		case errors.Is(err, domain.ErrDecode):
			writeError(w, http.StatusUnprocessableEntity, "uploaded bytes are not a valid JPEG or PNG image")
		default:
			slog.Error("start session", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	elapsed := 0
	writeJSON(w, http.StatusCreated, toSessionResponse(session, &elapsed))
}

// HandleSubmitAfter records the after photo, decides improvement, and
// completes the session.
// POST /api/sessions/{id}/after
func (h *SessionHandler) HandleSubmitAfter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	data, err := h.readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.sessions.SubmitAfter(r.Context(), id, data)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, domain.ErrSessionCompleted):
			writeError(w, http.StatusConflict, "session is already completed")
		case errors.Is(err, domain.ErrDecode):
			writeError(w, http.StatusUnprocessableEntity, "uploaded bytes are not a valid JPEG or PNG image")
		default:
			slog.Error("submit after image", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session, nil))
}

// HandleCurrent returns the open session, or 204 when none is open.
// GET /api/sessions/current
func (h *SessionHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Current(r.Context())
	if err != nil {
		slog.Error("get current session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if session == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	elapsed := h.sessions.Elapsed(session)
	writeJSON(w, http.StatusOK, toSessionResponse(session, &elapsed))
}

// HandleStream pushes current-session signals over SSE once per second until
// the client disconnects. Front-ends poll this instead of re-reading the
// store themselves; each tick reflects the latest committed write.
// GET /api/sessions/current/stream
func (h *SessionHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		session, err := h.sessions.Current(r.Context())
		if err != nil {
			slog.Error("stream current session", "error", err)
			return
		}

		signals := map[string]any{
			"active":         false,
			"elapsedSeconds": 0,
			"beforeScore":    0,
		}
		if session != nil {
			signals["active"] = true
			signals["elapsedSeconds"] = h.sessions.Elapsed(session)
			signals["beforeScore"] = session.BeforeScore
		}

		if err := sse.MarshalAndPatchSignals(signals); err != nil {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// readUpload extracts the image bytes from a multipart "image" field, or
// from the raw request body when the request is not multipart.
func (h *SessionHandler) readUpload(r *http.Request) ([]byte, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			return nil, fmt.Errorf("upload too large or malformed")
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, fmt.Errorf("no image file provided")
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, h.maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > h.maxUploadBytes {
		return nil, fmt.Errorf("upload exceeds %d bytes", h.maxUploadBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no image provided")
	}
	return data, nil
}
