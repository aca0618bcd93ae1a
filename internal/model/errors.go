package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionOver     = errors.New("session is over")

	// Input errors
	ErrInvalidCell       = errors.New("invalid cell")
	ErrEmptyCell         = errors.New("cell is empty")
	ErrWordTooShort      = errors.New("word must use at least 3 letters")
	ErrNotInDictionary   = errors.New("word is not in the dictionary")
	ErrSubmitInFlight    = errors.New("a submission is already being checked")
	ErrSelectionStale    = errors.New("selection changed while the word was being checked")
	ErrNothingPending    = errors.New("no spawn targets pending")
	ErrInvalidSettings   = errors.New("invalid settings")
	ErrSettingsNotFound  = errors.New("settings not found")
	ErrUnsupportedFormat = errors.New("unsupported settings format")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
)
