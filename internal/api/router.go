package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/letterstacks/internal/api/handler"
	"github.com/mcoot/letterstacks/internal/api/middleware"
	basemw "github.com/mcoot/letterstacks/internal/middleware"
	"github.com/mcoot/letterstacks/internal/services/auth"
	"github.com/mcoot/letterstacks/internal/services/dictionary"
	"github.com/mcoot/letterstacks/internal/services/game"
	"github.com/mcoot/letterstacks/internal/services/scoreboard"
	"github.com/mcoot/letterstacks/internal/services/settings"
	"github.com/mcoot/letterstacks/internal/web/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	AuthService       *auth.Service
	GameController    *game.Controller
	SettingsService   *settings.Service
	ScoreboardService *scoreboard.Service
	DictionaryService *dictionary.Service
	HubManager        *sse.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.GameController, cfg.AuthService, cfg.SettingsService, cfg.HubManager, cfg.Logger)
	profileHandler := handler.NewProfileHandler(cfg.SettingsService)
	scoreHandler := handler.NewScoreHandler(cfg.ScoreboardService)
	dictionaryHandler := handler.NewDictionaryHandler(cfg.DictionaryService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(basemw.Logging(cfg.Logger))

	// Creating a session issues the token every other session route needs
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)

	sessions := api.PathPrefix("/sessions/{id}").Subrouter()
	sessions.Use(middleware.SessionAuth(cfg.AuthService))
	sessions.HandleFunc("", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("", sessionHandler.End).Methods(http.MethodDelete)
	sessions.HandleFunc("/select", sessionHandler.Select).Methods(http.MethodPost)
	sessions.HandleFunc("/selection", sessionHandler.ClearSelection).Methods(http.MethodDelete)
	sessions.HandleFunc("/submit", sessionHandler.Submit).Methods(http.MethodPost)
	sessions.HandleFunc("/drop", sessionHandler.Drop).Methods(http.MethodPost)
	sessions.HandleFunc("/reset", sessionHandler.Reset).Methods(http.MethodPost)
	sessions.HandleFunc("/settings", sessionHandler.UpdateSettings).Methods(http.MethodPut)
	sessions.HandleFunc("/hint", sessionHandler.Hint).Methods(http.MethodGet)
	sessions.HandleFunc("/events", sessionHandler.Events).Methods(http.MethodGet)

	// Profile settings (profiles are names, not accounts)
	api.HandleFunc("/profiles/{profile}/settings", profileHandler.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{profile}/settings", profileHandler.PutSettings).Methods(http.MethodPut)

	api.HandleFunc("/scores", scoreHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/dictionary/{word}", dictionaryHandler.Check).Methods(http.MethodGet)
	api.HandleFunc("/health", dictionaryHandler.Health).Methods(http.MethodGet)

	return r
}
