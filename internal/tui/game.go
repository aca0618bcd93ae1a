package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/game"
	"github.com/mcoot/letterstacks/internal/services/session"
)

const (
	// cellWidth is the screen columns used by one board cell, brackets included
	cellWidth = 6
	boardTop  = 2
	boardLeft = 2

	redrawInterval = 100 * time.Millisecond
)

var (
	styleDefault  = tcell.StyleDefault
	styleTitle    = tcell.StyleDefault.Bold(true)
	stylePending  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleSelected = tcell.StyleDefault.Reverse(true)
	styleCursor   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleDanger   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleHelp     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

const helpLine = "arrows move  space select  enter submit  esc clear  d drop  h hint  +/- level  r restart  q quit"

// Game is a terminal front end for one local session
type Game struct {
	screen     tcell.Screen
	controller *game.Controller
	sound      *SoundManager
	logger     *slog.Logger

	id      model.SessionID
	view    session.View
	cursor  int
	message string

	events chan model.Event
}

// New creates a Game drawing on screen. The caller owns the screen's Init and Fini.
func New(screen tcell.Screen, controller *game.Controller, sound *SoundManager, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if sound == nil {
		sound = NewSoundManager()
	}
	return &Game{
		screen:     screen,
		controller: controller,
		sound:      sound,
		logger:     logger.With(slog.String("component", "tui")),
		events:     make(chan model.Event, 64),
	}
}

// Publish implements game.Publisher. Events are queued for the draw loop and
// dropped when it falls behind; the next redraw reads the session anyway.
func (g *Game) Publish(event model.Event) {
	select {
	case g.events <- event:
	default:
	}
}

var _ game.Publisher = (*Game)(nil)

// Start creates a new session for profile and draws it
func (g *Game) Start(ctx context.Context, profile string, override *model.Settings) error {
	view, err := g.controller.CreateSession(ctx, profile, override)
	if err != nil {
		return err
	}
	g.id = view.ID
	g.setView(view)
	g.Draw()
	return nil
}

// Resume attaches to an existing session
func (g *Game) Resume(ctx context.Context, id model.SessionID) error {
	view, err := g.controller.GetSession(ctx, id)
	if err != nil {
		return err
	}
	g.id = id
	g.setView(view)
	g.Draw()
	return nil
}

// View returns the last drawn state of the session
func (g *Game) View() session.View {
	return g.view
}

// Cursor returns the index of the cell under the cursor
func (g *Game) Cursor() int {
	return g.cursor
}

// Message returns the status line
func (g *Game) Message() string {
	return g.message
}

// Run processes input and session events until the player quits or ctx ends.
// A running session is ended on the way out.
func (g *Game) Run(ctx context.Context) error {
	if g.id == "" {
		return errors.New("no session started")
	}

	input := make(chan tcell.Event, 32)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case input <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.shutdown()
			return nil
		case ev := <-input:
			if !g.HandleEvent(ctx, ev) {
				g.shutdown()
				return nil
			}
		case event := <-g.events:
			g.HandleModelEvent(ctx, event)
		case <-ticker.C:
			// A finished run only changes through a key press
			if g.view.State == model.SessionStateRunning {
				g.refresh(ctx)
			}
		}
		g.Draw()
	}
}

func (g *Game) shutdown() {
	if g.view.State != model.SessionStateRunning {
		return
	}
	// The caller's context may already be done
	if _, err := g.controller.EndSession(context.Background(), g.id); err != nil {
		g.logger.Warn("failed to end session",
			slog.String("session_id", string(g.id)),
			slog.String("error", err.Error()),
		)
	}
}

// HandleEvent applies one terminal event, returning false when the player quits
func (g *Game) HandleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return g.handleKey(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

func (g *Game) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		g.move(0, -1)
	case tcell.KeyRight:
		g.move(0, 1)
	case tcell.KeyUp:
		g.move(-1, 0)
	case tcell.KeyDown:
		g.move(1, 0)
	case tcell.KeyEnter:
		g.submit(ctx)
	case tcell.KeyEscape, tcell.KeyBackspace, tcell.KeyBackspace2:
		g.apply(g.controller.ClearSelection(ctx, g.id))
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			g.apply(g.controller.Toggle(ctx, g.id, g.cursor))
		case 'd':
			g.apply(g.controller.Drop(ctx, g.id))
		case 'r':
			g.message = ""
			g.apply(g.controller.Reset(ctx, g.id))
		case 'h':
			g.hint(ctx)
		case '+', '=':
			g.changeLevel(ctx, 1)
		case '-':
			g.changeLevel(ctx, -1)
		}
	}
	return true
}

// HandleModelEvent reacts to an event published by the controller
func (g *Game) HandleModelEvent(ctx context.Context, event model.Event) {
	if event.SessionID != g.id {
		return
	}
	switch event.Type {
	case model.EventSpawnApplied:
		g.sound.Play(CueSpawn)
	case model.EventWordAccepted:
		g.sound.Play(CueAccept)
		if p, ok := event.Payload.(model.WordAcceptedPayload); ok {
			g.message = fmt.Sprintf("%s accepted, next spawn in %s", strings.ToUpper(p.Word), formatDuration(p.NextTempo.Interval))
		}
	case model.EventWordRejected:
		g.sound.Play(CueReject)
		if p, ok := event.Payload.(model.WordRejectedPayload); ok {
			g.message = fmt.Sprintf("%s rejected: %s", strings.ToUpper(p.Word), p.Reason)
		}
	case model.EventSessionWon:
		g.sound.Play(CueWon)
		g.message = "Board cleared! Press r to play again"
	case model.EventSessionLost:
		g.sound.Play(CueLost)
		g.message = "A stack hit the ceiling. Press r to play again"
	}
	g.refresh(ctx)
}

func (g *Game) refresh(ctx context.Context) {
	view, err := g.controller.GetSession(ctx, g.id)
	if err != nil {
		g.logger.Warn("failed to read session",
			slog.String("session_id", string(g.id)),
			slog.String("error", err.Error()),
		)
		return
	}
	g.setView(view)
}

func (g *Game) apply(view session.View, err error) {
	if view.ID != "" {
		g.setView(view)
	}
	if err != nil {
		g.message = err.Error()
	}
}

func (g *Game) setView(view session.View) {
	g.view = view
	if n := view.Rows * view.Cols; n > 0 && g.cursor >= n {
		g.cursor = n - 1
	}
}

func (g *Game) move(dRow, dCol int) {
	if g.view.Cols == 0 {
		return
	}
	row := g.cursor/g.view.Cols + dRow
	col := g.cursor%g.view.Cols + dCol
	if row < 0 || row >= g.view.Rows || col < 0 || col >= g.view.Cols {
		return
	}
	g.cursor = row*g.view.Cols + col
}

func (g *Game) submit(ctx context.Context) {
	result, view, err := g.controller.Submit(ctx, g.id)
	g.apply(view, err)
	if err == nil {
		g.message = fmt.Sprintf("%s accepted, next spawn in %s", strings.ToUpper(result.Word), formatDuration(result.NextTempo.Interval))
	}
}

func (g *Game) hint(ctx context.Context) {
	word, cells, err := g.controller.Hint(ctx, g.id)
	switch {
	case err != nil:
		g.message = err.Error()
	case word == "":
		g.message = "No words available"
	default:
		g.message = fmt.Sprintf("Try %s (cells %v)", strings.ToUpper(word), cells)
	}
}

func (g *Game) changeLevel(ctx context.Context, delta int) {
	level := g.view.Level + delta
	if level < model.MinLevel || level > model.MaxLevel {
		return
	}
	g.message = ""
	g.apply(g.controller.UpdateSettings(ctx, g.id, model.Settings{
		Level:        level,
		StackCeiling: g.view.Ceiling,
	}))
}

// Draw renders the board and status lines
func (g *Game) Draw() {
	g.screen.Clear()
	v := g.view

	drawText(g.screen, boardLeft, 0, styleTitle, fmt.Sprintf("LETTER STACKS  level %d  ceiling %d  %s", v.Level, v.Ceiling, v.State))

	pending := make(map[int]bool, len(v.Pending))
	for _, idx := range v.Pending {
		pending[idx] = true
	}
	selected := make(map[int]bool, len(v.Selection))
	for _, idx := range v.Selection {
		selected[idx] = true
	}

	for idx := 0; idx < v.Rows*v.Cols && idx < len(v.Heights); idx++ {
		x := boardLeft + (idx%v.Cols)*cellWidth
		y := boardTop + (idx/v.Cols)*2

		bracket := styleDefault
		if pending[idx] {
			bracket = stylePending
		}
		if idx == g.cursor {
			bracket = styleCursor
		}
		content := styleDefault
		if selected[idx] {
			content = styleSelected
		} else if v.Heights[idx] >= v.Ceiling-1 {
			content = styleDanger
		}

		drawText(g.screen, x, y, bracket, "[")
		drawText(g.screen, x+1, y, content, cellLabel(v.Tops[idx], v.Heights[idx]))
		drawText(g.screen, x+4, y, bracket, "]")
	}

	y := boardTop + v.Rows*2
	drawText(g.screen, boardLeft, y, styleDefault, fmt.Sprintf("Word: %s", strings.ToUpper(v.Word)))
	drawText(g.screen, boardLeft, y+1, styleDefault, fmt.Sprintf("Next spawn %s  %d every %s  %s  vowels %d%%",
		formatDuration(time.Duration(v.CountdownMs)*time.Millisecond),
		v.Quantity,
		formatDuration(time.Duration(v.IntervalMs)*time.Millisecond),
		v.Tempo,
		v.VowelPercent,
	))
	drawText(g.screen, boardLeft, y+2, styleDefault, fmt.Sprintf("Words %d  Spawned %d  Time %s",
		v.Words, v.Spawned, formatDuration(time.Duration(v.ElapsedMs)*time.Millisecond)))
	drawText(g.screen, boardLeft, y+4, styleTitle, g.message)
	drawText(g.screen, boardLeft, y+6, styleHelp, helpLine)

	g.screen.Show()
}

// cellLabel is three columns: the top letter and the stack height
func cellLabel(top string, height int) string {
	if height == 0 {
		return "   "
	}
	return fmt.Sprintf("%s%-2d", strings.ToUpper(top), height)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
