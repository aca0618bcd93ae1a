package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/letterstacks/internal/api/request"
	"github.com/mcoot/letterstacks/internal/api/response"
	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/auth"
	"github.com/mcoot/letterstacks/internal/services/game"
	"github.com/mcoot/letterstacks/internal/services/settings"
	"github.com/mcoot/letterstacks/internal/web/sse"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	controller  *game.Controller
	authService *auth.Service
	settings    *settings.Service
	hubManager  *sse.HubManager
	logger      *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	controller *game.Controller,
	authService *auth.Service,
	settingsService *settings.Service,
	hubManager *sse.HubManager,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		controller:  controller,
		authService: authService,
		settings:    settingsService,
		hubManager:  hubManager,
		logger:      logger,
	}
}

func sessionID(r *http.Request) model.SessionID {
	return model.SessionID(mux.Vars(r)["id"])
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	var override *model.Settings
	if req.Level != nil || req.StackCeiling != nil {
		cfg, err := h.settings.Get(r.Context(), settings.ProfileName(req.Profile))
		if err != nil {
			WriteError(w, err)
			return
		}
		if req.Level != nil {
			cfg.Level = *req.Level
		}
		if req.StackCeiling != nil {
			cfg.StackCeiling = *req.StackCeiling
		}
		if err := cfg.Validate(); err != nil {
			WriteError(w, err)
			return
		}
		override = &cfg
	}

	view, err := h.controller.CreateSession(r.Context(), req.Profile, override)
	if err != nil {
		WriteError(w, err)
		return
	}

	token, expires, err := h.authService.Issue(view.ID, view.Profile)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionResponse{
		Session:   view,
		Token:     token,
		ExpiresAt: &expires,
	})
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.GetSession(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionResponse{Session: view})
}

// Select handles POST /api/v1/sessions/{id}/select
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req request.SelectRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.Cell == nil {
		WriteError(w, NewInvalidRequestError("cell is required"))
		return
	}

	view, err := h.controller.Toggle(r.Context(), sessionID(r), *req.Cell)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionResponse{Session: view})
}

// ClearSelection handles DELETE /api/v1/sessions/{id}/selection
func (h *SessionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.ClearSelection(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionResponse{Session: view})
}

// Submit handles POST /api/v1/sessions/{id}/submit
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	result, view, err := h.controller.Submit(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SubmitResponseFromResult(result, view))
}

// Drop handles POST /api/v1/sessions/{id}/drop
func (h *SessionHandler) Drop(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.Drop(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionResponse{Session: view})
}

// Reset handles POST /api/v1/sessions/{id}/reset
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.Reset(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionResponse{Session: view})
}

// UpdateSettings handles PUT /api/v1/sessions/{id}/settings
func (h *SessionHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req request.SettingsRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	view, err := h.controller.UpdateSettings(r.Context(), sessionID(r), model.Settings{
		Level:        req.Level,
		StackCeiling: req.StackCeiling,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionResponse{Session: view})
}

// End handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.EndSession(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionResponse{Session: view})
}

// Hint handles GET /api/v1/sessions/{id}/hint
func (h *SessionHandler) Hint(w http.ResponseWriter, r *http.Request) {
	word, cells, err := h.controller.Hint(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	if cells == nil {
		cells = []int{}
	}
	response.JSON(w, http.StatusOK, response.HintResponse{Word: word, Cells: cells})
}

// Events handles GET /api/v1/sessions/{id}/events.
// The stream opens with a snapshot of the session, then carries every event.
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	view, err := h.controller.GetSession(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	initial, err := sse.Snapshot("snapshot", view)
	if err != nil {
		h.logger.Error("failed to encode snapshot",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()))
		WriteError(w, NewInternalError())
		return
	}

	hub := h.hubManager.GetOrCreateHub(id)
	sse.ServeSSE(w, r, hub, r.RemoteAddr, initial)
}
