package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeInvalidCell           = "INVALID_CELL"
	CodeEmptyCell             = "EMPTY_CELL"
	CodeWordTooShort          = "WORD_TOO_SHORT"
	CodeInvalidSettings       = "INVALID_SETTINGS"
	CodeUnsupportedFormat     = "UNSUPPORTED_FORMAT"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeSessionNotFound       = "SESSION_NOT_FOUND"
	CodeSettingsNotFound      = "SETTINGS_NOT_FOUND"
	CodeSessionOver           = "SESSION_OVER"
	CodeSubmitInFlight        = "SUBMIT_IN_FLIGHT"
	CodeSelectionStale        = "SELECTION_STALE"
	CodeNothingPending        = "NOTHING_PENDING"
	CodeNotInDictionary       = "NOT_IN_DICTIONARY"
	CodeDictionaryUnavailable = "DICTIONARY_UNAVAILABLE"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Input rejections
	case errors.Is(err, model.ErrInvalidCell):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCell, "Cell index is outside the board"}}
	case errors.Is(err, model.ErrEmptyCell):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyCell, "Cell has no letters"}}
	case errors.Is(err, model.ErrWordTooShort):
		return &httpError{http.StatusBadRequest, APIError{CodeWordTooShort, "Word must use at least 3 letters"}}
	case errors.Is(err, model.ErrInvalidSettings):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidSettings, "Level must be 1-25 and stack ceiling 5-10"}}
	case errors.Is(err, model.ErrUnsupportedFormat):
		return &httpError{http.StatusBadRequest, APIError{CodeUnsupportedFormat, "Unsupported settings format"}}

	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrSettingsNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSettingsNotFound, "Settings not found"}}

	// Conflicts with the session's current state
	case errors.Is(err, model.ErrSessionOver):
		return &httpError{http.StatusConflict, APIError{CodeSessionOver, "Session is over"}}
	case errors.Is(err, model.ErrSubmitInFlight):
		return &httpError{http.StatusConflict, APIError{CodeSubmitInFlight, "A word is already being checked"}}
	case errors.Is(err, model.ErrSelectionStale):
		return &httpError{http.StatusConflict, APIError{CodeSelectionStale, "Board changed while the word was being checked"}}
	case errors.Is(err, model.ErrNothingPending):
		return &httpError{http.StatusConflict, APIError{CodeNothingPending, "No spawn targets pending"}}

	case errors.Is(err, model.ErrNotInDictionary):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeNotInDictionary, "Word is not in the dictionary"}}
	case errors.Is(err, model.ErrDictionaryNotLoaded):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeDictionaryUnavailable, "Dictionary is not loaded"}}

	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session token"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
