package game

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mcoot/letterstacks/internal/dependencies/mocks"
	"github.com/mcoot/letterstacks/internal/dependencies/random"
	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/dictionary"
	"github.com/mcoot/letterstacks/internal/services/loop"
	"github.com/mcoot/letterstacks/internal/services/scoreboard"
	"github.com/mcoot/letterstacks/internal/services/session"
	"github.com/mcoot/letterstacks/internal/services/settings"
	"github.com/mcoot/letterstacks/internal/services/spawn"
	"github.com/mcoot/letterstacks/internal/services/supply"
	"github.com/mcoot/letterstacks/internal/storage"
	"github.com/mcoot/letterstacks/internal/storage/memory"
	"github.com/mcoot/letterstacks/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) Publish(event model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func (p *recordingPublisher) last() model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// gateChecker holds every lookup until the test releases a verdict
type gateChecker struct {
	entered chan string
	release chan bool
}

func newGateChecker() *gateChecker {
	return &gateChecker{entered: make(chan string, 1), release: make(chan bool, 1)}
}

func (g *gateChecker) CheckWord(ctx context.Context, word string) bool {
	g.entered <- word
	return <-g.release
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	ids        *mocks.MockRandom
	dict       *dictionary.Service
	settings   *settings.Service
	scoreboard *scoreboard.Service
	publisher  *recordingPublisher
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	s.ids = mocks.NewMockRandom()
	s.ids.QueueString("SESSION00001", "SESSION00002", "SESSION00003")
	s.dict = dictionary.New(s.storage, dictionary.Config{Logger: testutil.NopLogger()})
	s.Require().NoError(s.dict.LoadWords([]string{"cat", "act", "tacos"}))
	s.settings = settings.New(s.storage, testutil.NopLogger())
	s.scoreboard = scoreboard.New(s.storage, testutil.NopLogger())
	s.publisher = &recordingPublisher{}
	s.controller = s.newController(s.dict, false)
	s.ctx = context.Background()
}

func (s *ControllerSuite) TearDownTest() {
	s.controller.Close()
}

func (s *ControllerSuite) newController(checker dictionary.Checker, autoRun bool) *Controller {
	rnd := random.NewSeeded(5)
	sup := supply.New(rnd)
	engine := session.New(sup, spawn.New(rnd, sup), s.clock, session.DefaultConfig())
	return NewController(Dependencies{
		Storage:    s.storage,
		Engine:     engine,
		Dictionary: checker,
		Finder:     s.dict,
		Settings:   s.settings,
		Scoreboard: s.scoreboard,
		Runner:     loop.New(s.clock, loop.DefaultInterval, testutil.NopLogger()),
		Publisher:  s.publisher,
		Clock:      s.clock,
		Random:     s.ids,
	}, Config{AutoRun: autoRun, Logger: testutil.NopLogger()})
}

func (s *ControllerSuite) create(level, ceiling int) model.SessionID {
	view, err := s.controller.CreateSession(s.ctx, "alice", &model.Settings{Level: level, StackCeiling: ceiling})
	s.Require().NoError(err)
	return view.ID
}

// setBoard replaces every stack of a live session; missing stacks are empty
func (s *ControllerSuite) setBoard(c *Controller, id model.SessionID, stacks ...string) {
	err := c.with(s.ctx, id, func(sess *model.Session) error {
		for i := range sess.Board.Cells {
			sess.Board.Cells[i] = []rune{}
			if i < len(stacks) {
				sess.Board.Cells[i] = []rune(stacks[i])
			}
		}
		return nil
	})
	s.Require().NoError(err)
}

// isLive reports whether c holds the session in memory
func (s *ControllerSuite) isLive(c *Controller, id model.SessionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.live[id]
	return ok
}

func (s *ControllerSuite) toggle(id model.SessionID, cells ...int) {
	for _, cell := range cells {
		_, err := s.controller.Toggle(s.ctx, id, cell)
		s.Require().NoError(err)
	}
}

// runCycle advances one full level-1 interval in one-second frames
func (s *ControllerSuite) runCycle(id model.SessionID) session.StepResult {
	var step session.StepResult
	for i := 0; i < 10; i++ {
		s.clock.Advance(time.Second)
		var err error
		step, err = s.controller.Advance(s.ctx, id, time.Second)
		s.Require().NoError(err)
		if step.Cycled || step.Ended() {
			break
		}
	}
	return step
}

// CreateSession

func (s *ControllerSuite) TestCreateSessionUsesStoredProfileSettings() {
	s.Require().NoError(s.settings.Save(s.ctx, "alice", model.Settings{Level: 8, StackCeiling: 9}))

	view, err := s.controller.CreateSession(s.ctx, "alice", nil)
	s.Require().NoError(err)

	s.Equal(model.SessionID("SESSION00001"), view.ID)
	s.Equal("alice", view.Profile)
	s.Equal(model.SessionStateRunning, view.State)
	s.Equal(8, view.Level)
	s.Equal(9, view.Ceiling)
	s.Equal(2, view.Quantity)
	s.Len(view.Pending, 2)
	s.Equal([]model.EventType{model.EventSessionStarted, model.EventTargetsChosen}, s.publisher.types())

	stored, err := s.storage.GetSession(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal(8, stored.Settings.Level)
}

func (s *ControllerSuite) TestCreateSessionDefaultsProfile() {
	view, err := s.controller.CreateSession(s.ctx, "", nil)
	s.Require().NoError(err)

	s.Equal(model.DefaultProfile, view.Profile)
	s.Equal(model.DefaultLevel, view.Level)
	s.Equal(model.DefaultStackCeiling, view.Ceiling)
}

func (s *ControllerSuite) TestCreateSessionRejectsInvalidSettings() {
	_, err := s.controller.CreateSession(s.ctx, "alice", &model.Settings{Level: 30, StackCeiling: 6})
	s.ErrorIs(err, model.ErrInvalidSettings)
}

func (s *ControllerSuite) TestGetUnknownSession() {
	_, err := s.controller.GetSession(s.ctx, "NOPE")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestRehydratesFromStorage() {
	id := s.create(3, 6)

	other := s.newController(s.dict, false)
	defer other.Close()
	view, err := other.GetSession(s.ctx, id)

	s.Require().NoError(err)
	s.Equal(id, view.ID)
	s.Equal(3, view.Level)
}

// Selection

func (s *ControllerSuite) TestToggleAndClearPublishSelection() {
	id := s.create(1, 6)
	s.setBoard(s.controller, id, "C", "A", "T")
	s.publisher.reset()

	view, err := s.controller.Toggle(s.ctx, id, 1)
	s.Require().NoError(err)
	s.Equal([]int{1}, view.Selection)
	s.Equal(model.EventSelectionChanged, s.publisher.last().Type)
	s.Equal("A", s.publisher.last().Payload.(model.SelectionChangedPayload).Word)

	view, err = s.controller.ClearSelection(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(view.Selection)
}

func (s *ControllerSuite) TestToggleEmptyCell() {
	id := s.create(1, 6)
	s.setBoard(s.controller, id, "C")

	_, err := s.controller.Toggle(s.ctx, id, 5)
	s.ErrorIs(err, model.ErrEmptyCell)
}

// Submit

func (s *ControllerSuite) TestSubmitAcceptedWord() {
	id := s.create(1, 6)
	s.setBoard(s.controller, id, "XC", "A", "T", "Q")
	s.toggle(id, 0, 1, 2)

	result, view, err := s.controller.Submit(s.ctx, id)
	s.Require().NoError(err)

	s.Equal("CAT", result.Word)
	s.Equal(7*time.Second, result.NextTempo.Interval)
	s.Equal([]int{1, 0, 0, 1}, view.Heights[:4])
	s.Empty(view.Selection)
	s.Equal(1, view.Words)
	s.Equal(model.SessionStateRunning, view.State)
	s.Equal(model.EventWordAccepted, s.publisher.last().Type)
}

func (s *ControllerSuite) TestSubmitUnknownWordKeepsSelection() {
	id := s.create(1, 6)
	s.setBoard(s.controller, id, "T", "A", "C", "Q")
	s.toggle(id, 0, 1, 3)

	_, view, err := s.controller.Submit(s.ctx, id)

	s.ErrorIs(err, model.ErrNotInDictionary)
	s.Equal([]int{0, 1, 3}, view.Selection)
	s.Equal([]int{1, 1, 1, 1}, view.Heights[:4])
	s.Equal(model.EventWordRejected, s.publisher.last().Type)
}

func (s *ControllerSuite) TestSubmitShortWord() {
	id := s.create(1, 6)
	s.setBoard(s.controller, id, "A", "T")
	s.toggle(id, 0, 1)

	_, _, err := s.controller.Submit(s.ctx, id)

	s.ErrorIs(err, model.ErrWordTooShort)
	s.Equal(model.EventWordRejected, s.publisher.last().Type)
}

func (s *ControllerSuite) TestSubmitClearingBoardWins() {
	id := s.create(1, 6)
	s.setBoard(s.controller, id, "C", "A", "T")
	s.toggle(id, 0, 1, 2)

	result, view, err := s.controller.Submit(s.ctx, id)
	s.Require().NoError(err)

	s.Equal(model.SessionStateWon, view.State)
	s.Require().NotNil(result.Score)
	s.Equal(model.ScoreModeWin, result.Score.Mode)
	s.Equal(model.EventSessionWon, s.publisher.last().Type)

	scores, err := s.scoreboard.List(s.ctx, storage.ScoreFilter{Profile: "alice"}, 0)
	s.Require().NoError(err)
	s.Len(scores, 1)

	// The finished run is released from memory but can still be viewed
	s.False(s.isLive(s.controller, id))
	after, err := s.controller.GetSession(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.SessionStateWon, after.State)
	s.False(s.isLive(s.controller, id))
}

func (s *ControllerSuite) TestLookupRunsOutsideSessionLock() {
	gate := newGateChecker()
	c := s.newController(gate, false)
	defer c.Close()

	view, err := c.CreateSession(s.ctx, "alice", nil)
	s.Require().NoError(err)
	id := view.ID
	s.setBoard(c, id, "C", "A", "T", "S")
	for _, cell := range []int{0, 1, 2} {
		_, err := c.Toggle(s.ctx, id, cell)
		s.Require().NoError(err)
	}

	type outcome struct {
		result session.SubmitResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, _, err := c.Submit(s.ctx, id)
		done <- outcome{result, err}
	}()
	s.Equal("CAT", <-gate.entered)

	// The session stays usable while the verdict is outstanding
	_, err = c.Toggle(s.ctx, id, 3)
	s.NoError(err)
	_, err = c.Advance(s.ctx, id, session.NominalFrame)
	s.NoError(err)
	_, _, err = c.Submit(s.ctx, id)
	s.ErrorIs(err, model.ErrSubmitInFlight)

	gate.release <- true
	out := <-done
	s.Require().NoError(out.err)
	s.Equal("CAT", out.result.Word)
}

func (s *ControllerSuite) TestLateVerdictOnChangedBoardIsStale() {
	gate := newGateChecker()
	c := s.newController(gate, false)
	defer c.Close()

	view, err := c.CreateSession(s.ctx, "alice", nil)
	s.Require().NoError(err)
	id := view.ID
	s.setBoard(c, id, "C", "A", "T", "S")
	for _, cell := range []int{0, 1, 2} {
		_, err := c.Toggle(s.ctx, id, cell)
		s.Require().NoError(err)
	}

	done := make(chan error, 1)
	go func() {
		_, _, err := c.Submit(s.ctx, id)
		done <- err
	}()
	<-gate.entered

	s.Require().NoError(c.with(s.ctx, id, func(sess *model.Session) error {
		sess.Board.Push(1, 'E')
		return nil
	}))
	gate.release <- true

	s.ErrorIs(<-done, model.ErrSelectionStale)
	after, err := c.GetSession(s.ctx, id)
	s.Require().NoError(err)
	s.Equal([]int{0, 1, 2}, after.Selection)
	s.Equal(0, after.Words)
}

// Spawning

func (s *ControllerSuite) TestAdvanceAppliesCycleAndSnapshots() {
	id := s.create(1, 6)
	s.publisher.reset()

	step := s.runCycle(id)

	s.True(step.Cycled)
	s.Len(step.Spawns, 1)
	s.Equal([]model.EventType{model.EventSpawnApplied, model.EventTargetsChosen}, s.publisher.types())

	stored, err := s.storage.GetSession(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(1, stored.Cycles)
	s.Equal(31, stored.Board.TotalLetters())
}

func (s *ControllerSuite) TestAdvanceBetweenCyclesDoesNotPublish() {
	id := s.create(1, 6)
	s.publisher.reset()

	step, err := s.controller.Advance(s.ctx, id, time.Second)

	s.Require().NoError(err)
	s.False(step.Cycled)
	s.Empty(s.publisher.types())
}

func (s *ControllerSuite) TestCeilingBreachLosesAndRecordsSurvival() {
	id := s.create(1, 5)
	stacks := make([]string, 30)
	for i := range stacks {
		stacks[i] = "ABCD"
	}
	s.setBoard(s.controller, id, stacks...)
	s.clock.Advance(90 * time.Second)

	step := s.runCycle(id)

	s.True(step.Ended())
	s.Equal(model.ScoreModeSurvival, step.Score.Mode)
	s.Equal(100*time.Second, step.Score.Elapsed)
	s.Equal(model.EventSessionLost, s.publisher.last().Type)

	s.False(s.isLive(s.controller, id))
	view, err := s.controller.GetSession(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.SessionStateLost, view.State)

	scores, err := s.scoreboard.List(s.ctx, storage.ScoreFilter{Mode: model.ScoreModeSurvival}, 0)
	s.Require().NoError(err)
	s.Len(scores, 1)
	s.Equal(5, scores[0].Ceiling)
}

func (s *ControllerSuite) TestDropLandsOneLetter() {
	id := s.create(12, 6)
	s.publisher.reset()

	view, err := s.controller.Drop(s.ctx, id)
	s.Require().NoError(err)

	total := 0
	for _, h := range view.Heights {
		total += h
	}
	s.Equal(31, total)
	s.Len(view.Pending, 1)
	s.Equal(model.EventSpawnApplied, s.publisher.types()[0])
	s.True(s.publisher.events[0].Payload.(model.SpawnAppliedPayload).Manual)
}

// Lifecycle

func (s *ControllerSuite) TestEndSessionRecordsNoScore() {
	id := s.create(1, 6)

	view, err := s.controller.EndSession(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.SessionStateAbandoned, view.State)
	s.Equal(model.EventSessionEnded, s.publisher.last().Type)

	_, err = s.controller.EndSession(s.ctx, id)
	s.ErrorIs(err, model.ErrSessionNotFound)

	scores, err := s.scoreboard.List(s.ctx, storage.ScoreFilter{}, 0)
	s.Require().NoError(err)
	s.Empty(scores)
}

func (s *ControllerSuite) TestEndedSessionIsReleased() {
	id := s.create(1, 6)
	s.Require().True(s.isLive(s.controller, id))

	_, err := s.controller.EndSession(s.ctx, id)
	s.Require().NoError(err)

	s.False(s.isLive(s.controller, id))
	_, err = s.storage.GetSession(s.ctx, id)
	s.ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.controller.Drop(s.ctx, id)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestResetRestartsFinishedSession() {
	id := s.create(1, 6)
	s.setBoard(s.controller, id, "C", "A", "T")
	s.toggle(id, 0, 1, 2)
	_, won, err := s.controller.Submit(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Equal(model.SessionStateWon, won.State)
	s.Require().False(s.isLive(s.controller, id))

	view, err := s.controller.Reset(s.ctx, id)
	s.Require().NoError(err)

	s.Equal(model.SessionStateRunning, view.State)
	s.Equal(0, view.Cycles)
	s.Equal(model.EventTargetsChosen, s.publisher.last().Type)
	s.True(s.isLive(s.controller, id))
}

func (s *ControllerSuite) TestUpdateSettingsRestartsAndSavesProfile() {
	id := s.create(1, 6)

	view, err := s.controller.UpdateSettings(s.ctx, id, model.Settings{Level: 20, StackCeiling: 10})
	s.Require().NoError(err)

	s.Equal(20, view.Level)
	s.Equal(4, view.Quantity)
	s.Equal(10, view.Ceiling)

	stored, err := s.settings.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.Settings{Level: 20, StackCeiling: 10}, stored)
}

func (s *ControllerSuite) TestUpdateSettingsRejectsInvalid() {
	id := s.create(1, 6)

	_, err := s.controller.UpdateSettings(s.ctx, id, model.Settings{Level: 5, StackCeiling: 3})

	s.ErrorIs(err, model.ErrInvalidSettings)
	view, err := s.controller.GetSession(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(1, view.Level)
}

func (s *ControllerSuite) TestHint() {
	id := s.create(1, 6)
	s.setBoard(s.controller, id, "T", "Q", "A", "C")

	word, cells, err := s.controller.Hint(s.ctx, id)

	s.Require().NoError(err)
	s.Equal("act", word)
	s.Equal([]int{2, 3, 0}, cells)
}

func (s *ControllerSuite) TestFrameRunnerDrivesSession() {
	c := s.newController(s.dict, true)
	defer c.Close()

	view, err := c.CreateSession(s.ctx, "alice", nil)
	s.Require().NoError(err)
	s.Require().NoError(c.with(s.ctx, view.ID, func(sess *model.Session) error {
		sess.Countdown = time.Millisecond
		return nil
	}))

	s.Eventually(func() bool {
		s.clock.Tick(time.Second)
		v, err := c.GetSession(s.ctx, view.ID)
		return err == nil && v.Cycles >= 1
	}, 5*time.Second, time.Millisecond)

	ended, err := c.EndSession(s.ctx, view.ID)
	s.Require().NoError(err)
	s.True(strings.Contains(ended.EndReason, "ended"))

	// EndSession waits for the runner, so the session is already released
	s.False(s.isLive(c, view.ID))
	_, err = c.GetSession(s.ctx, view.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestFrameRunnerReleasesLostSession() {
	c := s.newController(s.dict, true)
	defer c.Close()

	view, err := c.CreateSession(s.ctx, "alice", &model.Settings{Level: 1, StackCeiling: 5})
	s.Require().NoError(err)
	stacks := make([]string, 30)
	for i := range stacks {
		stacks[i] = "ABCD"
	}
	s.setBoard(c, view.ID, stacks...)
	s.Require().NoError(c.with(s.ctx, view.ID, func(sess *model.Session) error {
		sess.Countdown = time.Millisecond
		return nil
	}))

	s.Eventually(func() bool {
		s.clock.Tick(time.Second)
		return !s.isLive(c, view.ID)
	}, 5*time.Second, time.Millisecond)

	stored, err := s.storage.GetSession(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionStateLost, stored.State)
}
