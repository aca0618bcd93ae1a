package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/letterstacks/internal/api/response"
	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/scoreboard"
	"github.com/mcoot/letterstacks/internal/storage"
)

// DefaultScoreLimit caps score listings when no limit is given
const DefaultScoreLimit = 20

// ScoreHandler handles the score log endpoint
type ScoreHandler struct {
	scoreboard *scoreboard.Service
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scoreboardService *scoreboard.Service) *ScoreHandler {
	return &ScoreHandler{scoreboard: scoreboardService}
}

// List handles GET /api/v1/scores?profile=&level=&mode=&limit=
func (h *ScoreHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ScoreFilter{Profile: q.Get("profile")}

	if v := q.Get("level"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil || level < model.MinLevel || level > model.MaxLevel {
			WriteError(w, NewInvalidRequestError("level must be 1-25"))
			return
		}
		filter.Level = level
	}

	switch mode := model.ScoreMode(q.Get("mode")); mode {
	case "", model.ScoreModeWin, model.ScoreModeSurvival:
		filter.Mode = mode
	default:
		WriteError(w, NewInvalidRequestError("mode must be 'win' or 'survival'"))
		return
	}

	limit := DefaultScoreLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, NewInvalidRequestError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := h.scoreboard.List(r.Context(), filter, limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ScoresFromModel(records))
}
