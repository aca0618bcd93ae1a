package session

import (
	"fmt"
	"time"

	"github.com/mcoot/letterstacks/internal/dependencies/clock"
	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/spawn"
	"github.com/mcoot/letterstacks/internal/services/supply"
	"github.com/mcoot/letterstacks/internal/services/tempo"
)

// Frame delta bounds
const (
	// NominalFrame replaces any delta that is negative or implausibly large
	NominalFrame = 16 * time.Millisecond
	// MaxFrame is the largest delta accepted as a real frame
	MaxFrame = time.Second
)

// MinWordLength is the fewest letters a submission may use
const MinWordLength = 3

// End reasons
const (
	ReasonCleared   = "board cleared"
	ReasonCeiling   = "stack reached the ceiling"
	ReasonAbandoned = "session ended by player"
)

// Default board dimensions
const (
	DefaultRows = 6
	DefaultCols = 5
)

// Config holds board dimensions for new sessions
type Config struct {
	Rows int
	Cols int
}

// DefaultConfig returns a 6x5 board configuration
func DefaultConfig() Config {
	return Config{Rows: DefaultRows, Cols: DefaultCols}
}

// Engine runs the rules of a session. It holds no session state of its own:
// every operation takes the session aggregate explicitly and mutates it.
type Engine struct {
	supply    *supply.Service
	scheduler *spawn.Scheduler
	clock     clock.Clock
	cfg       Config
}

// New creates a new Engine
func New(supply *supply.Service, scheduler *spawn.Scheduler, clock clock.Clock, cfg Config) *Engine {
	if cfg.Rows <= 0 || cfg.Cols <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{
		supply:    supply,
		scheduler: scheduler,
		clock:     clock,
		cfg:       cfg,
	}
}

// StepResult reports what a frame advance or manual drop changed
type StepResult struct {
	// Spawns are the letters that landed, in application order
	Spawns []model.SpawnEvent
	// Cycled is set when a countdown expiry applied a batch
	Cycled bool
	// Chosen is the next batch selected after the spawn, if any
	Chosen *spawn.Selection
	// Score is set when the step ended the session
	Score *model.ScoreRecord
}

// Ended returns true if the step ended the session
func (r StepResult) Ended() bool {
	return r.Score != nil
}

// Ticket captures a word handed to the dictionary, so the verdict can be
// checked against the board when it arrives
type Ticket struct {
	Word  string
	Cells []int
	Seq   uint64
}

// SubmitResult reports an accepted word
type SubmitResult struct {
	Word      string
	Cells     []int
	Letters   []rune
	NextTempo model.Tempo
	Score     *model.ScoreRecord
}

// Start creates a running session with a freshly dealt board
func (e *Engine) Start(id model.SessionID, profile string, settings model.Settings) (*model.Session, spawn.Selection, error) {
	sess := &model.Session{
		ID:      id,
		Profile: profile,
	}
	sel, err := e.Reset(sess, settings)
	if err != nil {
		return nil, spawn.Selection{}, err
	}
	return sess, sel, nil
}

// Reset discards the board and supply and deals a new run: every cell gets
// one letter, tempo is derived from the level, and the first batch is chosen.
func (e *Engine) Reset(sess *model.Session, settings model.Settings) (spawn.Selection, error) {
	if err := settings.Validate(); err != nil {
		return spawn.Selection{}, err
	}
	now := e.clock.Now()

	sess.Settings = settings
	sess.State = model.SessionStateRunning
	sess.Bag = e.supply.NewBag(e.cfg.Rows, e.cfg.Cols)
	sess.Board = model.NewBoard(e.cfg.Rows, e.cfg.Cols)
	for i := 0; i < sess.Board.Len(); i++ {
		sess.Board.Push(i, e.supply.Draw(sess.Bag, e.cfg.Rows, e.cfg.Cols))
	}

	sess.Selection = nil
	sess.Submitting = false
	sess.SubmitSeq++
	sess.Pending = nil
	sess.Cooldowns = make(map[int]int)
	sess.Tempo = tempo.PresetForLevel(settings.Level)
	sess.NextTempo = nil
	sess.Countdown = sess.Tempo.Interval
	sess.Cycles = 0
	sess.Spawned = 0
	sess.Words = 0
	sess.StartedAt = now
	sess.EndedAt = time.Time{}
	sess.EndReason = ""
	sess.UpdatedAt = now

	return e.scheduler.Choose(sess), nil
}

// ApplySettings validates new settings and restarts the run under them
func (e *Engine) ApplySettings(sess *model.Session, settings model.Settings) (spawn.Selection, error) {
	return e.Reset(sess, settings)
}

// FrameDelta sanitises a measured frame delta
func FrameDelta(dt time.Duration) time.Duration {
	if dt < 0 || dt > MaxFrame {
		return NominalFrame
	}
	return dt
}

// Advance moves the session forward by one frame
func (e *Engine) Advance(sess *model.Session, dt time.Duration) StepResult {
	var result StepResult
	if !sess.IsRunning() {
		return result
	}

	if sess.Board.IsCleared() {
		result.Score = e.end(sess, model.SessionStateWon, ReasonCleared)
		return result
	}

	sess.Countdown -= FrameDelta(dt)
	sess.UpdatedAt = e.clock.Now()
	if sess.Countdown > 0 {
		return result
	}

	spawns, breached := e.scheduler.Apply(sess)
	sess.Cycles++
	result.Spawns = spawns
	result.Cycled = true
	if breached {
		result.Score = e.end(sess, model.SessionStateLost, ceilingReason(sess))
		return result
	}

	// An adjusted tempo lasts for exactly one cycle
	if sess.NextTempo != nil {
		sess.Tempo = *sess.NextTempo
		sess.NextTempo = nil
	} else {
		sess.Tempo = tempo.PresetForLevel(sess.Settings.Level)
	}
	sess.Countdown = sess.Tempo.Interval

	sel := e.scheduler.Choose(sess)
	result.Chosen = &sel
	return result
}

// Drop lands one pending target immediately and restarts the countdown
func (e *Engine) Drop(sess *model.Session) (StepResult, error) {
	var result StepResult
	if !sess.IsRunning() {
		return result, model.ErrSessionOver
	}

	if len(sess.Pending) == 0 {
		e.scheduler.Choose(sess)
	}
	if len(sess.Pending) == 0 {
		return result, model.ErrNothingPending
	}

	target := sess.Pending[0]
	sess.Pending = sess.Pending[1:]
	ev, breached := e.scheduler.Place(sess, target)
	result.Spawns = []model.SpawnEvent{ev}
	sess.UpdatedAt = e.clock.Now()
	if breached {
		result.Score = e.end(sess, model.SessionStateLost, ceilingReason(sess))
		return result, nil
	}

	sess.Countdown = sess.Tempo.Interval
	if len(sess.Pending) == 0 {
		sel := e.scheduler.Choose(sess)
		result.Chosen = &sel
	}
	return result, nil
}

// Toggle adds a cell to the selection, or removes it if already selected.
// Only cells with a visible letter can be added.
func (e *Engine) Toggle(sess *model.Session, cell int) error {
	if !sess.IsRunning() {
		return model.ErrSessionOver
	}
	if !sess.Board.IsValidIndex(cell) {
		return model.ErrInvalidCell
	}

	for i, sel := range sess.Selection {
		if sel == cell {
			sess.Selection = append(sess.Selection[:i:i], sess.Selection[i+1:]...)
			return nil
		}
	}
	if sess.Board.Height(cell) == 0 {
		return model.ErrEmptyCell
	}
	sess.Selection = append(sess.Selection, cell)
	return nil
}

// ClearSelection empties the selection
func (e *Engine) ClearSelection(sess *model.Session) error {
	if !sess.IsRunning() {
		return model.ErrSessionOver
	}
	sess.Selection = nil
	return nil
}

// Word reads the top letters of the selected cells in selection order.
// Cells that have since been emptied contribute nothing.
func Word(sess *model.Session) (string, []int) {
	letters := make([]rune, 0, len(sess.Selection))
	cells := make([]int, 0, len(sess.Selection))
	for _, idx := range sess.Selection {
		top := sess.Board.Top(idx)
		if top == 0 {
			continue
		}
		letters = append(letters, top)
		cells = append(cells, idx)
	}
	return string(letters), cells
}

// BeginSubmit starts a submission. Short words are rejected without a lookup;
// otherwise the session is marked as awaiting a verdict and a ticket is returned.
func (e *Engine) BeginSubmit(sess *model.Session) (Ticket, error) {
	if !sess.IsRunning() {
		return Ticket{}, model.ErrSessionOver
	}
	if sess.Submitting {
		return Ticket{}, model.ErrSubmitInFlight
	}

	word, cells := Word(sess)
	if len(cells) < MinWordLength {
		return Ticket{}, model.ErrWordTooShort
	}

	sess.Submitting = true
	sess.SubmitSeq++
	return Ticket{Word: word, Cells: cells, Seq: sess.SubmitSeq}, nil
}

// CompleteSubmit applies the dictionary verdict for a ticket. The board may
// have changed while the word was being checked, so an affirmative verdict
// only lands if every ticket cell still shows the letters that were checked.
// A rejected or stale submission leaves the board and selection untouched.
// A ticket issued before a reset or a later submission is stale and leaves
// the in-flight flag of the current submission alone.
func (e *Engine) CompleteSubmit(sess *model.Session, ticket Ticket, valid bool) (SubmitResult, error) {
	if ticket.Seq != sess.SubmitSeq {
		return SubmitResult{}, model.ErrSelectionStale
	}
	sess.Submitting = false
	if !sess.IsRunning() {
		return SubmitResult{}, model.ErrSessionOver
	}
	if !valid {
		return SubmitResult{}, model.ErrNotInDictionary
	}

	tops := make([]rune, 0, len(ticket.Cells))
	for _, idx := range ticket.Cells {
		top := sess.Board.Top(idx)
		if top == 0 {
			return SubmitResult{}, model.ErrSelectionStale
		}
		tops = append(tops, top)
	}
	if string(tops) != ticket.Word {
		return SubmitResult{}, model.ErrSelectionStale
	}

	used := make([]rune, 0, len(ticket.Cells))
	for _, idx := range ticket.Cells {
		if l, ok := sess.Board.Pop(idx); ok {
			used = append(used, l)
		}
	}
	e.supply.Return(sess.Bag, used)
	sess.Selection = nil
	sess.Words++
	sess.UpdatedAt = e.clock.Now()

	next := tempo.AfterSubmission(tempo.PresetForLevel(sess.Settings.Level), len(used))
	sess.NextTempo = &next

	result := SubmitResult{
		Word:      ticket.Word,
		Cells:     ticket.Cells,
		Letters:   used,
		NextTempo: next,
	}
	if sess.Board.IsCleared() {
		result.Score = e.end(sess, model.SessionStateWon, ReasonCleared)
	}
	return result, nil
}

// End stops a running session at the player's request.
// Abandoned runs produce no score record.
func (e *Engine) End(sess *model.Session) error {
	if !sess.IsRunning() {
		return model.ErrSessionOver
	}
	e.end(sess, model.SessionStateAbandoned, ReasonAbandoned)
	return nil
}

// end moves a session into a terminal state and builds its score record
func (e *Engine) end(sess *model.Session, state model.SessionState, reason string) *model.ScoreRecord {
	now := e.clock.Now()
	sess.State = state
	sess.EndReason = reason
	sess.EndedAt = now
	sess.UpdatedAt = now
	sess.Pending = nil
	sess.Selection = nil
	sess.Submitting = false

	mode := model.ScoreModeSurvival
	if state == model.SessionStateWon {
		mode = model.ScoreModeWin
	}
	return &model.ScoreRecord{
		Profile:   sess.Profile,
		SessionID: sess.ID,
		Level:     sess.Settings.Level,
		Elapsed:   sess.Elapsed(now),
		Timestamp: now,
		Ceiling:   sess.Settings.StackCeiling,
		Mode:      mode,
	}
}

func ceilingReason(sess *model.Session) string {
	return fmt.Sprintf("%s (%d)", ReasonCeiling, sess.Settings.StackCeiling)
}
