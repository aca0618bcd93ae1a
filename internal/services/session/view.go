package session

import (
	"time"

	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/spawn"
	"github.com/mcoot/letterstacks/internal/services/tempo"
)

// View is everything a renderer needs to draw a session
type View struct {
	ID           model.SessionID    `json:"id"`
	Profile      string             `json:"profile"`
	State        model.SessionState `json:"state"`
	Rows         int                `json:"rows"`
	Cols         int                `json:"cols"`
	Stacks       []string           `json:"stacks"`
	Tops         []string           `json:"tops"`
	Heights      []int              `json:"heights"`
	Selection    []int              `json:"selection"`
	Word         string             `json:"word"`
	Pending      []int              `json:"pending"`
	Level        int                `json:"level"`
	Ceiling      int                `json:"ceiling"`
	CountdownMs  int64              `json:"countdown_ms"`
	IntervalMs   int64              `json:"interval_ms"`
	Quantity     int                `json:"quantity"`
	Tempo        string             `json:"tempo"`
	NextInterval int64              `json:"next_interval_ms,omitempty"`
	VowelPercent int                `json:"vowel_percent"`
	Submitting   bool               `json:"submitting"`
	Cycles       int                `json:"cycles"`
	Spawned      int                `json:"spawned"`
	Words        int                `json:"words"`
	ElapsedMs    int64              `json:"elapsed_ms"`
	EndReason    string             `json:"end_reason,omitempty"`
}

// Render builds the view of a session as of now
func Render(sess *model.Session, now time.Time) View {
	v := View{
		ID:           sess.ID,
		Profile:      sess.Profile,
		State:        sess.State,
		Selection:    append([]int{}, sess.Selection...),
		Pending:      model.TargetIndices(sess.Pending),
		Level:        sess.Settings.Level,
		Ceiling:      sess.Settings.StackCeiling,
		CountdownMs:  max(sess.Countdown, 0).Milliseconds(),
		IntervalMs:   sess.Tempo.Interval.Milliseconds(),
		Quantity:     sess.Tempo.Quantity,
		Tempo:        tempo.Describe(sess.Tempo),
		Submitting:   sess.Submitting,
		Cycles:       sess.Cycles,
		Spawned:      sess.Spawned,
		Words:        sess.Words,
		ElapsedMs:    sess.Elapsed(now).Milliseconds(),
		EndReason:    sess.EndReason,
	}
	if sess.NextTempo != nil {
		v.NextInterval = sess.NextTempo.Interval.Milliseconds()
	}
	if b := sess.Board; b != nil {
		v.Word, _ = Word(sess)
		v.Rows = b.Rows
		v.Cols = b.Cols
		v.Heights = b.Heights()
		v.Stacks = make([]string, b.Len())
		v.Tops = make([]string, b.Len())
		for i, stack := range b.Cells {
			v.Stacks[i] = string(stack)
			if top := b.Top(i); top != 0 {
				v.Tops[i] = string(top)
			}
		}
		v.VowelPercent = int(spawn.VisibleVowelRatio(b)*100 + 0.5)
	}
	return v
}

// View builds the view of a session using the engine's clock
func (e *Engine) View(sess *model.Session) View {
	return Render(sess, e.clock.Now())
}
