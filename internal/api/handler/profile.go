package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/letterstacks/internal/api/request"
	"github.com/mcoot/letterstacks/internal/api/response"
	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/settings"
)

// ProfileHandler handles per-profile settings endpoints
type ProfileHandler struct {
	settings *settings.Service
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(settingsService *settings.Service) *ProfileHandler {
	return &ProfileHandler{settings: settingsService}
}

// GetSettings handles GET /api/v1/profiles/{profile}/settings
func (h *ProfileHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	profile := settings.ProfileName(mux.Vars(r)["profile"])
	cfg, err := h.settings.Get(r.Context(), profile)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SettingsFromModel(profile, cfg))
}

// PutSettings handles PUT /api/v1/profiles/{profile}/settings
func (h *ProfileHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req request.SettingsRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	profile := settings.ProfileName(mux.Vars(r)["profile"])
	cfg := model.Settings{Level: req.Level, StackCeiling: req.StackCeiling}
	if err := h.settings.Save(r.Context(), profile, cfg); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SettingsFromModel(profile, cfg))
}
