package game

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/letterstacks/internal/dependencies/clock"
	"github.com/mcoot/letterstacks/internal/dependencies/random"
	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/autoplay"
	"github.com/mcoot/letterstacks/internal/services/dictionary"
	"github.com/mcoot/letterstacks/internal/services/loop"
	"github.com/mcoot/letterstacks/internal/services/scoreboard"
	"github.com/mcoot/letterstacks/internal/services/session"
	"github.com/mcoot/letterstacks/internal/services/settings"
	"github.com/mcoot/letterstacks/internal/services/spawn"
	"github.com/mcoot/letterstacks/internal/storage"
)

const (
	// SessionIDAlphabet is the character set for generated session IDs
	SessionIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// SessionIDLength is the length of generated session IDs
	SessionIDLength = 12
)

// Config holds controller options
type Config struct {
	// AutoRun starts a frame runner for every live session.
	// When false the caller drives sessions through Advance.
	AutoRun bool

	Logger *slog.Logger
}

// Controller owns the live sessions. Each session is guarded by its own
// lock; dictionary lookups run outside it so spawns keep landing while a
// word is being checked. Sessions leave the live set once they end and their
// runner has stopped; won and lost snapshots stay in storage and are
// rehydrated on demand, abandoned ones are deleted.
type Controller struct {
	storage    storage.Storage
	engine     *session.Engine
	dictionary dictionary.Checker
	finder     autoplay.Finder
	settings   *settings.Service
	scoreboard *scoreboard.Service
	runner     *loop.Runner
	publisher  Publisher
	clock      clock.Clock
	random     random.Random
	autoRun    bool
	logger     *slog.Logger

	mu   sync.Mutex
	live map[model.SessionID]*entry
}

type entry struct {
	mu   sync.Mutex
	sess *model.Session
	stop func()
	gen  int
}

// Dependencies are the collaborators a Controller needs
type Dependencies struct {
	Storage    storage.Storage
	Engine     *session.Engine
	Dictionary dictionary.Checker
	Finder     autoplay.Finder
	Settings   *settings.Service
	Scoreboard *scoreboard.Service
	Runner     *loop.Runner
	Publisher  Publisher
	Clock      clock.Clock
	Random     random.Random
}

// NewController creates a new Controller
func NewController(deps Dependencies, cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Controller{
		storage:    deps.Storage,
		engine:     deps.Engine,
		dictionary: deps.Dictionary,
		finder:     deps.Finder,
		settings:   deps.Settings,
		scoreboard: deps.Scoreboard,
		runner:     deps.Runner,
		publisher:  publisher,
		clock:      deps.Clock,
		random:     deps.Random,
		autoRun:    cfg.AutoRun && deps.Runner != nil,
		logger:     logger.With(slog.String("component", "game-controller")),
		live:       make(map[model.SessionID]*entry),
	}
}

// SetPublisher replaces the event publisher
func (c *Controller) SetPublisher(p Publisher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p == nil {
		p = NopPublisher{}
	}
	c.publisher = p
}

// CreateSession starts a new run for a profile. Without explicit settings
// the profile's stored settings are used.
func (c *Controller) CreateSession(ctx context.Context, profile string, override *model.Settings) (session.View, error) {
	profile = settings.ProfileName(profile)

	var cfg model.Settings
	if override != nil {
		cfg = *override
	} else {
		stored, err := c.settings.Get(ctx, profile)
		if err != nil {
			return session.View{}, err
		}
		cfg = stored
	}

	id := model.SessionID(c.random.String(SessionIDLength, SessionIDAlphabet))
	sess, sel, err := c.engine.Start(id, profile, cfg)
	if err != nil {
		return session.View{}, err
	}

	if err := c.storage.SaveSession(ctx, sess); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
		return session.View{}, err
	}

	e := &entry{sess: sess}
	c.mu.Lock()
	c.live[id] = e
	c.mu.Unlock()

	c.logger.Info("session created",
		slog.String("session_id", string(id)),
		slog.String("profile", profile),
		slog.Int("level", cfg.Level),
		slog.Int("stack_ceiling", cfg.StackCeiling),
	)

	e.mu.Lock()
	c.publish(sess, model.EventSessionStarted, model.SettingsAppliedPayload{Settings: cfg})
	c.publishChosen(sess, sel)
	view := c.engine.View(sess)
	e.mu.Unlock()

	c.startRunner(id, e)
	return view, nil
}

// GetSession returns the current view of a session
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (session.View, error) {
	var view session.View
	err := c.with(ctx, id, func(sess *model.Session) error {
		view = c.engine.View(sess)
		return nil
	})
	return view, err
}

// Toggle selects or deselects a cell
func (c *Controller) Toggle(ctx context.Context, id model.SessionID, cell int) (session.View, error) {
	var view session.View
	err := c.with(ctx, id, func(sess *model.Session) error {
		if err := c.engine.Toggle(sess, cell); err != nil {
			return err
		}
		c.publishSelection(sess)
		view = c.engine.View(sess)
		return nil
	})
	return view, err
}

// ClearSelection deselects every cell
func (c *Controller) ClearSelection(ctx context.Context, id model.SessionID) (session.View, error) {
	var view session.View
	err := c.with(ctx, id, func(sess *model.Session) error {
		if err := c.engine.ClearSelection(sess); err != nil {
			return err
		}
		c.publishSelection(sess)
		view = c.engine.View(sess)
		return nil
	})
	return view, err
}

// Submit checks the selected word and, if it is accepted, clears the used
// letters. The session lock is released during the dictionary lookup.
func (c *Controller) Submit(ctx context.Context, id model.SessionID) (session.SubmitResult, session.View, error) {
	e, err := c.lookup(ctx, id)
	if err != nil {
		return session.SubmitResult{}, session.View{}, err
	}

	e.mu.Lock()
	ticket, err := c.engine.BeginSubmit(e.sess)
	if err != nil {
		if errors.Is(err, model.ErrWordTooShort) {
			word, _ := session.Word(e.sess)
			c.publish(e.sess, model.EventWordRejected, model.WordRejectedPayload{Word: word, Reason: err.Error()})
		}
		view := c.engine.View(e.sess)
		c.evictLocked(id, e)
		e.mu.Unlock()
		return session.SubmitResult{}, view, err
	}
	e.mu.Unlock()

	valid := c.dictionary.CheckWord(ctx, ticket.Word)

	e.mu.Lock()
	defer e.mu.Unlock()
	defer c.evictLocked(id, e)
	sess := e.sess

	result, err := c.engine.CompleteSubmit(sess, ticket, valid)
	if err != nil {
		if !errors.Is(err, model.ErrSessionOver) {
			c.publish(sess, model.EventWordRejected, model.WordRejectedPayload{Word: ticket.Word, Reason: err.Error()})
		}
		c.logger.Info("word rejected",
			slog.String("session_id", string(id)),
			slog.String("word", ticket.Word),
			slog.String("reason", err.Error()),
		)
		return session.SubmitResult{}, c.engine.View(sess), err
	}

	c.logger.Info("word accepted",
		slog.String("session_id", string(id)),
		slog.String("word", result.Word),
		slog.Duration("next_interval", result.NextTempo.Interval),
	)
	c.publish(sess, model.EventWordAccepted, model.WordAcceptedPayload{
		Word:      result.Word,
		Cells:     result.Cells,
		NextTempo: result.NextTempo,
	})
	if result.Score != nil {
		c.finish(ctx, sess, result.Score)
	}
	if err := c.storage.SaveSession(ctx, sess); err != nil {
		return result, c.engine.View(sess), err
	}
	return result, c.engine.View(sess), nil
}

// Drop lands one pending letter immediately
func (c *Controller) Drop(ctx context.Context, id model.SessionID) (session.View, error) {
	var view session.View
	err := c.with(ctx, id, func(sess *model.Session) error {
		step, err := c.engine.Drop(sess)
		if err != nil {
			return err
		}
		c.publish(sess, model.EventSpawnApplied, model.SpawnAppliedPayload{
			Cycle:  sess.Cycles,
			Spawns: step.Spawns,
			Manual: true,
		})
		if step.Chosen != nil {
			c.publishChosen(sess, *step.Chosen)
		}
		if step.Ended() {
			c.finish(ctx, sess, step.Score)
		}
		view = c.engine.View(sess)
		return c.storage.SaveSession(ctx, sess)
	})
	return view, err
}

// Reset restarts a session with its current settings
func (c *Controller) Reset(ctx context.Context, id model.SessionID) (session.View, error) {
	var view session.View
	err := c.with(ctx, id, func(sess *model.Session) error {
		sel, err := c.engine.Reset(sess, sess.Settings)
		if err != nil {
			return err
		}
		c.logger.Info("session reset", slog.String("session_id", string(id)))
		c.publish(sess, model.EventSessionReset, model.SettingsAppliedPayload{Settings: sess.Settings})
		c.publishChosen(sess, sel)
		view = c.engine.View(sess)
		return c.storage.SaveSession(ctx, sess)
	})
	if err == nil {
		c.ensureRunner(id)
	}
	return view, err
}

// UpdateSettings applies new settings to a session, which restarts it, and
// stores them as the profile's settings
func (c *Controller) UpdateSettings(ctx context.Context, id model.SessionID, cfg model.Settings) (session.View, error) {
	if err := cfg.Validate(); err != nil {
		return session.View{}, err
	}

	var (
		view    session.View
		profile string
	)
	err := c.with(ctx, id, func(sess *model.Session) error {
		sel, err := c.engine.ApplySettings(sess, cfg)
		if err != nil {
			return err
		}
		profile = sess.Profile
		c.publish(sess, model.EventSettingsApplied, model.SettingsAppliedPayload{Settings: cfg})
		c.publishChosen(sess, sel)
		view = c.engine.View(sess)
		return c.storage.SaveSession(ctx, sess)
	})
	if err != nil {
		return view, err
	}

	c.ensureRunner(id)
	return view, c.settings.Save(ctx, profile, cfg)
}

// Advance moves a session forward by one frame. Snapshots are only written
// when a spawn cycle lands or the session ends.
func (c *Controller) Advance(ctx context.Context, id model.SessionID, dt time.Duration) (session.StepResult, error) {
	var step session.StepResult
	err := c.with(ctx, id, func(sess *model.Session) error {
		step = c.engine.Advance(sess, dt)
		if !step.Cycled && !step.Ended() {
			return nil
		}
		if step.Cycled {
			c.logger.Debug("spawn cycle applied",
				slog.String("session_id", string(id)),
				slog.Int("cycle", sess.Cycles),
				slog.Int("count", len(step.Spawns)),
			)
			c.publish(sess, model.EventSpawnApplied, model.SpawnAppliedPayload{
				Cycle:  sess.Cycles,
				Spawns: step.Spawns,
			})
		}
		if step.Chosen != nil {
			c.publishChosen(sess, *step.Chosen)
		}
		if step.Ended() {
			c.finish(ctx, sess, step.Score)
		}
		if err := c.storage.SaveSession(ctx, sess); err != nil {
			c.logger.Error("failed to save session",
				slog.String("session_id", string(id)),
				slog.String("error", err.Error()),
			)
		}
		return nil
	})
	return step, err
}

// EndSession stops a running session without recording a score and
// discards its snapshot
func (c *Controller) EndSession(ctx context.Context, id model.SessionID) (session.View, error) {
	var view session.View
	err := c.with(ctx, id, func(sess *model.Session) error {
		if err := c.engine.End(sess); err != nil {
			return err
		}
		c.logger.Info("session ended",
			slog.String("session_id", string(id)),
			slog.String("outcome", string(sess.State)),
			slog.Duration("elapsed", sess.Elapsed(c.clock.Now())),
		)
		c.publish(sess, model.EventSessionEnded, model.SessionEndedPayload{
			Reason:  sess.EndReason,
			Elapsed: sess.Elapsed(c.clock.Now()),
		})
		view = c.engine.View(sess)
		return c.storage.DeleteSession(ctx, id)
	})
	if err == nil {
		c.stopRunner(id)
	}
	return view, err
}

// Hint suggests a word that can be spelled from the current tops
func (c *Controller) Hint(ctx context.Context, id model.SessionID) (string, []int, error) {
	var (
		word  string
		cells []int
	)
	err := c.with(ctx, id, func(sess *model.Session) error {
		if !sess.IsRunning() {
			return model.ErrSessionOver
		}
		if c.finder == nil {
			return nil
		}
		word, cells = autoplay.NewLongestStrategy(c.finder).Choose(sess.Board)
		return nil
	})
	return word, cells, err
}

// Close stops every frame runner
func (c *Controller) Close() {
	c.mu.Lock()
	entries := make([]*entry, 0, len(c.live))
	for _, e := range c.live {
		entries = append(entries, e)
	}
	c.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		stop := e.stop
		e.stop = nil
		e.mu.Unlock()
		if stop != nil {
			stop()
		}
	}
}

// with runs fn on a session under its lock
func (c *Controller) with(ctx context.Context, id model.SessionID, fn func(sess *model.Session) error) error {
	e, err := c.lookup(ctx, id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	defer c.evictLocked(id, e)
	return fn(e.sess)
}

// evictLocked drops an ended session from the live set once its runner has
// stopped. e.mu must be held.
func (c *Controller) evictLocked(id model.SessionID, e *entry) {
	if e.sess.IsRunning() || e.stop != nil {
		return
	}
	c.mu.Lock()
	if c.live[id] == e {
		delete(c.live, id)
	}
	c.mu.Unlock()
}

// lookup finds a live session, rehydrating it from storage if needed
func (c *Controller) lookup(ctx context.Context, id model.SessionID) (*entry, error) {
	c.mu.Lock()
	e, ok := c.live[id]
	c.mu.Unlock()
	if ok {
		return e, nil
	}

	sess, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if existing, ok := c.live[id]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	e = &entry{sess: sess}
	c.live[id] = e
	c.mu.Unlock()

	c.logger.Info("session rehydrated",
		slog.String("session_id", string(id)),
		slog.String("state", string(sess.State)),
	)
	if sess.IsRunning() {
		c.startRunner(id, e)
	}
	return e, nil
}

// finish records the outcome of a session that has just ended on its own
func (c *Controller) finish(ctx context.Context, sess *model.Session, score *model.ScoreRecord) {
	eventType := model.EventSessionLost
	if sess.State == model.SessionStateWon {
		eventType = model.EventSessionWon
	}
	c.logger.Info("session ended",
		slog.String("session_id", string(sess.ID)),
		slog.String("outcome", string(sess.State)),
		slog.Int("level", sess.Settings.Level),
		slog.Duration("elapsed", score.Elapsed),
	)
	if err := c.scoreboard.Record(ctx, score); err != nil {
		c.logger.Error("score not recorded",
			slog.String("session_id", string(sess.ID)),
			slog.String("error", err.Error()),
		)
	}
	c.publish(sess, eventType, model.SessionEndedPayload{
		Reason:  sess.EndReason,
		Elapsed: score.Elapsed,
		Score:   score,
	})
}

func (c *Controller) publish(sess *model.Session, eventType model.EventType, payload any) {
	c.mu.Lock()
	p := c.publisher
	c.mu.Unlock()
	p.Publish(model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		SessionID: sess.ID,
		Payload:   payload,
	})
}

func (c *Controller) publishChosen(sess *model.Session, sel spawn.Selection) {
	if sel.Fallback {
		c.logger.Debug("tallest fallback used",
			slog.String("session_id", string(sess.ID)),
			slog.Int("cell", sel.Tallest),
		)
	}
	c.publish(sess, model.EventTargetsChosen, model.TargetsChosenPayload{
		Targets:   sel.Targets,
		Countdown: sess.Countdown,
		Fallback:  sel.Fallback,
	})
}

func (c *Controller) publishSelection(sess *model.Session) {
	word, _ := session.Word(sess)
	c.publish(sess, model.EventSelectionChanged, model.SelectionChangedPayload{
		Selection: append([]int{}, sess.Selection...),
		Word:      word,
	})
}

// startRunner attaches a frame runner to a live session. The runner stops
// itself once the session is no longer running.
func (c *Controller) startRunner(id model.SessionID, e *entry) {
	if !c.autoRun {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stop != nil {
		return
	}
	e.gen++
	gen := e.gen
	e.stop = c.runner.Start(context.Background(), func(ctx context.Context, dt time.Duration) bool {
		// A detached runner must not advance a session rehydrated under the same id
		e.mu.Lock()
		attached := e.gen == gen && e.stop != nil
		e.mu.Unlock()
		if !attached {
			return false
		}

		if _, err := c.Advance(ctx, id, dt); err != nil {
			return false
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.sess.IsRunning() {
			return true
		}
		if e.gen == gen {
			e.stop = nil
			c.evictLocked(id, e)
		}
		return false
	})
}

// ensureRunner restarts the runner of a session brought back to life by a reset
func (c *Controller) ensureRunner(id model.SessionID) {
	c.mu.Lock()
	e, ok := c.live[id]
	c.mu.Unlock()
	if ok {
		c.startRunner(id, e)
	}
}

func (c *Controller) stopRunner(id model.SessionID) {
	c.mu.Lock()
	e, ok := c.live[id]
	c.mu.Unlock()
	if !ok {
		return
	}
	e.mu.Lock()
	stop := e.stop
	e.stop = nil
	c.evictLocked(id, e)
	e.mu.Unlock()
	if stop != nil {
		stop()
	}
}
