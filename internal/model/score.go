package model

import "time"

// ScoreMode distinguishes how a run ended
type ScoreMode string

const (
	ScoreModeWin      ScoreMode = "win"      // Board cleared
	ScoreModeSurvival ScoreMode = "survival" // Ceiling breached; time survived is the score
)

// ScoreRecord is appended to the score log when a session ends
type ScoreRecord struct {
	Profile   string        `json:"profile"`
	SessionID SessionID     `json:"session_id"`
	Level     int           `json:"level"`
	Elapsed   time.Duration `json:"elapsed"`
	Timestamp time.Time     `json:"timestamp"`
	Ceiling   int           `json:"ceiling"`
	Mode      ScoreMode     `json:"mode"`
}

// ElapsedMs returns the elapsed run time in milliseconds
func (r ScoreRecord) ElapsedMs() int64 {
	return r.Elapsed.Milliseconds()
}
