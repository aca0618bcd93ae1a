package response

import (
	"time"

	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/session"
)

// SessionResponse wraps a session view. Token is only set on creation.
type SessionResponse struct {
	Session   session.View `json:"session"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

// SubmitResponse is the response after an accepted word
type SubmitResponse struct {
	Word      string       `json:"word"`
	Cells     []int        `json:"cells"`
	NextTempo Tempo        `json:"next_tempo"`
	Won       bool         `json:"won"`
	Session   session.View `json:"session"`
}

// Tempo represents a spawn cadence
type Tempo struct {
	IntervalMs int64 `json:"interval_ms"`
	Quantity   int   `json:"quantity"`
}

// TempoFromModel converts model.Tempo
func TempoFromModel(t model.Tempo) Tempo {
	return Tempo{IntervalMs: t.Interval.Milliseconds(), Quantity: t.Quantity}
}

// SubmitResponseFromResult converts an accepted submission
func SubmitResponseFromResult(r session.SubmitResult, v session.View) SubmitResponse {
	return SubmitResponse{
		Word:      r.Word,
		Cells:     r.Cells,
		NextTempo: TempoFromModel(r.NextTempo),
		Won:       r.Score != nil,
		Session:   v,
	}
}

// HintResponse suggests a word. Word is empty when nothing can be spelled.
type HintResponse struct {
	Word  string `json:"word"`
	Cells []int  `json:"cells"`
}

// Settings represents a profile's settings
type Settings struct {
	Profile      string `json:"profile"`
	Level        int    `json:"level"`
	StackCeiling int    `json:"stack_ceiling"`
}

// SettingsFromModel converts model.Settings
func SettingsFromModel(profile string, s model.Settings) Settings {
	return Settings{
		Profile:      profile,
		Level:        s.Level,
		StackCeiling: s.StackCeiling,
	}
}

// Score represents one score log entry
type Score struct {
	Profile   string    `json:"profile"`
	SessionID string    `json:"session_id"`
	Level     int       `json:"level"`
	ElapsedMs int64     `json:"elapsed_ms"`
	Timestamp time.Time `json:"timestamp"`
	Ceiling   int       `json:"ceiling"`
	Mode      string    `json:"mode"`
}

// ScoreFromModel converts model.ScoreRecord
func ScoreFromModel(r *model.ScoreRecord) Score {
	return Score{
		Profile:   r.Profile,
		SessionID: string(r.SessionID),
		Level:     r.Level,
		ElapsedMs: r.ElapsedMs(),
		Timestamp: r.Timestamp,
		Ceiling:   r.Ceiling,
		Mode:      string(r.Mode),
	}
}

// ScoresResponse is the ranked score list
type ScoresResponse struct {
	Scores []Score `json:"scores"`
}

// ScoresFromModel converts a ranked list of records
func ScoresFromModel(records []*model.ScoreRecord) ScoresResponse {
	scores := make([]Score, len(records))
	for i, r := range records {
		scores[i] = ScoreFromModel(r)
	}
	return ScoresResponse{Scores: scores}
}

// WordResponse reports whether a word would be accepted
type WordResponse struct {
	Word  string `json:"word"`
	Valid bool   `json:"valid"`
}

// HealthResponse reports server status
type HealthResponse struct {
	Status          string `json:"status"`
	DictionaryWords int    `json:"dictionary_words"`
	AllowAnyWord    bool   `json:"allow_any_word,omitempty"`
}
