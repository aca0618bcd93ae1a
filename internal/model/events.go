package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventSessionStarted   EventType = "session_started"
	EventSessionReset     EventType = "session_reset"
	EventSpawnApplied     EventType = "spawn_applied"
	EventTargetsChosen    EventType = "targets_chosen"
	EventSelectionChanged EventType = "selection_changed"
	EventWordAccepted     EventType = "word_accepted"
	EventWordRejected     EventType = "word_rejected"
	EventSettingsApplied  EventType = "settings_applied"
	EventSessionWon       EventType = "session_won"
	EventSessionLost      EventType = "session_lost"
	EventSessionEnded     EventType = "session_ended"
)

// Event is the base structure for all session events
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID SessionID `json:"session_id"`
	Payload   any       `json:"payload,omitempty"` // Type-specific data
}

// SpawnAppliedPayload contains data for spawn applied events
type SpawnAppliedPayload struct {
	Cycle  int          `json:"cycle"`
	Spawns []SpawnEvent `json:"spawns"`
	Manual bool         `json:"manual"`
}

// TargetsChosenPayload contains data for targets chosen events
type TargetsChosenPayload struct {
	Targets   []SpawnTarget `json:"targets"`
	Countdown time.Duration `json:"countdown"`
	Fallback  bool          `json:"fallback,omitempty"`
}

// SelectionChangedPayload contains data for selection changed events
type SelectionChangedPayload struct {
	Selection []int  `json:"selection"`
	Word      string `json:"word"`
}

// WordAcceptedPayload contains data for word accepted events
type WordAcceptedPayload struct {
	Word      string `json:"word"`
	Cells     []int  `json:"cells"`
	NextTempo Tempo  `json:"next_tempo"`
}

// WordRejectedPayload contains data for word rejected events
type WordRejectedPayload struct {
	Word   string `json:"word"`
	Reason string `json:"reason"`
}

// SettingsAppliedPayload contains data for settings applied events
type SettingsAppliedPayload struct {
	Settings Settings `json:"settings"`
}

// SessionEndedPayload contains data for won/lost/ended events
type SessionEndedPayload struct {
	Reason  string        `json:"reason"`
	Elapsed time.Duration `json:"elapsed"`
	Score   *ScoreRecord  `json:"score,omitempty"`
}
