package request

// CreateSessionRequest is the request body for starting a session.
// Omitted settings fall back to the profile's stored settings.
type CreateSessionRequest struct {
	Profile      string `json:"profile,omitempty"`
	Level        *int   `json:"level,omitempty"`
	StackCeiling *int   `json:"stack_ceiling,omitempty"`
}

// SelectRequest is the request body for toggling a cell
type SelectRequest struct {
	Cell *int `json:"cell"`
}

// SettingsRequest is the request body for changing settings
type SettingsRequest struct {
	Level        int `json:"level"`
	StackCeiling int `json:"stack_ceiling"`
}
