package tui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/letterstacks/internal/factory"
	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/testutil"
)

type GameTestSuite struct {
	suite.Suite
	app    *factory.TestApp
	screen tcell.SimulationScreen
	sound  *SoundManager
	game   *Game
}

func TestGameSuite(t *testing.T) {
	suite.Run(t, new(GameTestSuite))
}

func (s *GameTestSuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.Require().NoError(s.app.LoadTestDictionary())

	s.screen = tcell.NewSimulationScreen("UTF-8")
	s.Require().NoError(s.screen.Init())
	s.screen.SetSize(100, 30)

	s.sound = NewSoundManager()
	s.game = New(s.screen, s.app.GameController, s.sound, testutil.NopLogger())
	s.app.GameController.SetPublisher(s.game)
}

func (s *GameTestSuite) TearDownTest() {
	s.screen.Fini()
	_ = s.app.Close()
}

// resume stores a session whose first cells hold the given stacks and attaches to it
func (s *GameTestSuite) resume(stacks ...string) {
	id := model.SessionID("TUI")
	sess, _, err := s.app.Engine.Start(id, model.DefaultProfile, model.DefaultSettings())
	s.Require().NoError(err)
	for i := range sess.Board.Cells {
		sess.Board.Cells[i] = []rune{}
		if i < len(stacks) {
			sess.Board.Cells[i] = []rune(stacks[i])
		}
	}
	s.Require().NoError(s.app.Storage.SaveSession(s.T().Context(), sess))
	s.Require().NoError(s.game.Resume(s.T().Context(), id))
}

func (s *GameTestSuite) press(k tcell.Key) bool {
	return s.game.HandleEvent(s.T().Context(), tcell.NewEventKey(k, 0, tcell.ModNone))
}

func (s *GameTestSuite) typeRune(r rune) bool {
	return s.game.HandleEvent(s.T().Context(), tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

// drain hands every queued controller event to the game
func (s *GameTestSuite) drain() {
	for {
		select {
		case event := <-s.game.events:
			s.game.HandleModelEvent(s.T().Context(), event)
		default:
			return
		}
	}
}

func (s *GameTestSuite) screenText() string {
	width, height := s.screen.Size()
	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := s.screen.GetContent(x, y)
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (s *GameTestSuite) TestStartDrawsNewSession() {
	s.Require().NoError(s.game.Start(s.T().Context(), "", nil))

	view := s.game.View()
	s.NotEmpty(view.ID)
	s.Equal(model.SessionStateRunning, view.State)
	s.Equal(6, view.Rows)
	s.Equal(5, view.Cols)

	text := s.screenText()
	s.Contains(text, "LETTER STACKS  level 1  ceiling 6  running")
	s.Contains(text, "Next spawn 10.0s")
}

func (s *GameTestSuite) TestCursorStaysOnBoard() {
	s.resume("cat")

	s.True(s.press(tcell.KeyLeft))
	s.Equal(0, s.game.Cursor())
	s.True(s.press(tcell.KeyUp))
	s.Equal(0, s.game.Cursor())

	s.press(tcell.KeyRight)
	s.press(tcell.KeyDown)
	s.Equal(6, s.game.Cursor())

	for i := 0; i < 10; i++ {
		s.press(tcell.KeyDown)
	}
	s.Equal(26, s.game.Cursor())
}

func (s *GameTestSuite) TestSelectAndSubmitWord() {
	s.resume("xc", "a", "t", "q")

	s.typeRune(' ')
	s.press(tcell.KeyRight)
	s.typeRune(' ')
	s.press(tcell.KeyRight)
	s.typeRune(' ')
	s.Equal([]int{0, 1, 2}, s.game.View().Selection)
	s.Equal("cat", s.game.View().Word)
	s.Contains(s.screenText(), "Word: CAT")

	s.press(tcell.KeyEnter)
	s.drain()

	view := s.game.View()
	s.Empty(view.Selection)
	s.Equal("x", view.Tops[0])
	s.Equal(0, view.Heights[1])
	s.Contains(s.game.Message(), "CAT accepted")
	s.Contains(s.sound.Played(), CueAccept)
}

func (s *GameTestSuite) TestRejectedWordKeepsSelection() {
	s.resume("x", "z", "q")

	s.typeRune(' ')
	s.press(tcell.KeyRight)
	s.typeRune(' ')
	s.press(tcell.KeyRight)
	s.typeRune(' ')
	s.press(tcell.KeyEnter)
	s.drain()

	s.Equal([]int{0, 1, 2}, s.game.View().Selection)
	s.Contains(s.game.Message(), "XZQ rejected")
	s.Contains(s.sound.Played(), CueReject)

	s.press(tcell.KeyEscape)
	s.Empty(s.game.View().Selection)
}

func (s *GameTestSuite) TestClearingBoardWins() {
	s.resume("c", "a", "t")

	s.typeRune(' ')
	s.press(tcell.KeyRight)
	s.typeRune(' ')
	s.press(tcell.KeyRight)
	s.typeRune(' ')
	s.press(tcell.KeyEnter)
	s.drain()

	s.Equal(model.SessionStateWon, s.game.View().State)
	s.Contains(s.game.Message(), "Board cleared")
	s.Contains(s.sound.Played(), CueWon)

	s.typeRune('r')
	s.drain()
	s.Equal(model.SessionStateRunning, s.game.View().State)
}

func (s *GameTestSuite) TestDropLandsPendingLetters() {
	s.resume("cat")
	before := s.game.View().Spawned

	s.typeRune('d')
	s.drain()

	s.Greater(s.game.View().Spawned, before)
	s.Contains(s.sound.Played(), CueSpawn)
}

func (s *GameTestSuite) TestHintAndLevelKeys() {
	s.resume("x", "t", "c", "a")

	s.typeRune('h')
	s.Contains(s.game.Message(), "ACT")

	s.typeRune('+')
	s.Equal(2, s.game.View().Level)
	s.typeRune('-')
	s.typeRune('-')
	s.Equal(1, s.game.View().Level)
}

func (s *GameTestSuite) TestQuitKeys() {
	s.resume("cat")
	s.False(s.typeRune('q'))
	s.False(s.press(tcell.KeyCtrlC))
	s.True(s.typeRune('z'))
}

func (s *GameTestSuite) TestEventsForOtherSessionsIgnored() {
	s.resume("cat")
	s.game.HandleModelEvent(s.T().Context(), model.Event{Type: model.EventSessionLost, SessionID: "OTHER"})
	s.Empty(s.game.Message())
	s.Empty(s.sound.Played())
}

func TestCellLabel(t *testing.T) {
	assert.Equal(t, "   ", cellLabel("", 0))
	assert.Equal(t, "A3 ", cellLabel("a", 3))
	assert.Equal(t, "Q10", cellLabel("q", 10))
}

func TestSoundManagerSilentUntilInitialized(t *testing.T) {
	sm := NewSoundManager()
	sm.Play(CueAccept)
	sm.Close()
	require.Equal(t, []Cue{CueAccept}, sm.Played())
	assert.NotNil(t, cueStreamer(CueWon))
}
