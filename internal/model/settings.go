package model

// Settings bounds and defaults
const (
	MinLevel            = 1
	MaxLevel            = 25
	DefaultLevel        = 1
	MinStackCeiling     = 5
	MaxStackCeiling     = 10
	DefaultStackCeiling = 6
)

// DefaultProfile is the profile used when a caller does not name one
const DefaultProfile = "local"

// Settings are the player-chosen game parameters for a session
type Settings struct {
	Level        int `json:"level"`
	StackCeiling int `json:"stack_ceiling"`
}

// DefaultSettings returns the settings used for a fresh profile
func DefaultSettings() Settings {
	return Settings{
		Level:        DefaultLevel,
		StackCeiling: DefaultStackCeiling,
	}
}

// Validate checks that the settings are within bounds
func (s Settings) Validate() error {
	if s.Level < MinLevel || s.Level > MaxLevel {
		return ErrInvalidSettings
	}
	if s.StackCeiling < MinStackCeiling || s.StackCeiling > MaxStackCeiling {
		return ErrInvalidSettings
	}
	return nil
}
