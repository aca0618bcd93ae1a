package model

import "time"

// SessionID uniquely identifies a play session
type SessionID string

// SessionState represents the lifecycle phase of a session
type SessionState string

const (
	SessionStateRunning SessionState = "running" // Spawns and input are live
	SessionStateWon     SessionState = "won"     // Board cleared
	SessionStateLost    SessionState = "lost"    // A stack reached the ceiling

	SessionStateAbandoned SessionState = "abandoned" // Ended by the player; no score is recorded
)

// Session is the single owned aggregate for one run of the game.
// Every engine operation takes and mutates a *Session explicitly.
type Session struct {
	ID       SessionID    `json:"id"`
	Profile  string       `json:"profile"`
	Settings Settings     `json:"settings"`
	State    SessionState `json:"state"`

	Board *Board `json:"board"`
	Bag   *Bag   `json:"bag"`

	// Selection holds selected cell indices in the order they were chosen
	Selection []int `json:"selection"`
	// Submitting is set while a dictionary verdict is outstanding
	Submitting bool `json:"submitting"`
	// SubmitSeq advances on every submission and reset; a verdict only lands
	// on the submission it was issued for
	SubmitSeq uint64 `json:"submit_seq"`

	// Pending is the batch chosen for the next spawn cycle
	Pending []SpawnTarget `json:"pending"`
	// Cooldowns maps cell index to the cycles remaining before the tallest rule may pick it again
	Cooldowns map[int]int `json:"cooldowns"`

	// Tempo is the cadence of the cycle currently counting down
	Tempo Tempo `json:"tempo"`
	// NextTempo, when set, replaces the base tempo for the following cycle only
	NextTempo *Tempo        `json:"next_tempo,omitempty"`
	Countdown time.Duration `json:"countdown"`

	Cycles  int `json:"cycles"`
	Spawned int `json:"spawned"`
	Words   int `json:"words"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
	EndReason string    `json:"end_reason,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRunning returns true while the session accepts spawns and input
func (s *Session) IsRunning() bool {
	return s.State == SessionStateRunning
}

// IsSelected returns true if the cell is part of the current selection
func (s *Session) IsSelected(idx int) bool {
	for _, sel := range s.Selection {
		if sel == idx {
			return true
		}
	}
	return false
}

// Elapsed returns the run time of the session, frozen once it has ended
func (s *Session) Elapsed(now time.Time) time.Duration {
	end := now
	if !s.EndedAt.IsZero() {
		end = s.EndedAt
	}
	if end.Before(s.StartedAt) {
		return 0
	}
	return end.Sub(s.StartedAt)
}

// Clone returns a deep copy of the session safe to hand outside the owning lock
func (s *Session) Clone() *Session {
	c := *s
	if s.Board != nil {
		c.Board = s.Board.Clone()
	}
	if s.Bag != nil {
		c.Bag = s.Bag.Clone()
	}
	c.Selection = append([]int{}, s.Selection...)
	c.Pending = append([]SpawnTarget{}, s.Pending...)
	c.Cooldowns = make(map[int]int, len(s.Cooldowns))
	for k, v := range s.Cooldowns {
		c.Cooldowns[k] = v
	}
	if s.NextTempo != nil {
		next := *s.NextTempo
		c.NextTempo = &next
	}
	return &c
}
