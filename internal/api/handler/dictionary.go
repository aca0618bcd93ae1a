package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/letterstacks/internal/api/response"
	"github.com/mcoot/letterstacks/internal/services/dictionary"
)

// DictionaryHandler handles word lookups and the health check
type DictionaryHandler struct {
	dictionary *dictionary.Service
}

// NewDictionaryHandler creates a new dictionary handler
func NewDictionaryHandler(dictionaryService *dictionary.Service) *DictionaryHandler {
	return &DictionaryHandler{dictionary: dictionaryService}
}

// Check handles GET /api/v1/dictionary/{word}
func (h *DictionaryHandler) Check(w http.ResponseWriter, r *http.Request) {
	word := strings.ToLower(mux.Vars(r)["word"])
	response.JSON(w, http.StatusOK, response.WordResponse{
		Word:  word,
		Valid: h.dictionary.CheckWord(r.Context(), word),
	})
}

// Health handles GET /api/v1/health
func (h *DictionaryHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{
		Status:          "ok",
		DictionaryWords: h.dictionary.WordCount(),
		AllowAnyWord:    h.dictionary.AllowsAny(),
	})
}
