package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcoot/letterstacks/internal/api/response"
	"github.com/mcoot/letterstacks/internal/services/audit"
	"github.com/mcoot/letterstacks/internal/services/session"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.SessionResponse:
		o.printSession(v)
	case response.SubmitResponse:
		o.printSubmit(v)
	case response.HintResponse:
		o.printHint(v)
	case response.Settings:
		o.printSettings(v)
	case response.ScoresResponse:
		o.printScores(v)
	case response.WordResponse:
		o.printWord(v)
	case response.HealthResponse:
		o.printHealth(v)
	case audit.Report:
		o.printAudit(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printSession(r response.SessionResponse) {
	v := r.Session
	fmt.Fprintf(o.w, "Session: %s (%s)\n", v.ID, v.State)
	if r.Token != "" {
		fmt.Fprintf(o.w, "Token:   %s\n", r.Token)
	}
	fmt.Fprintf(o.w, "Profile: %s  Level: %d  Ceiling: %d\n", v.Profile, v.Level, v.Ceiling)
	fmt.Fprintf(o.w, "Tempo:   %s  Next spawn in %s\n", v.Tempo, formatMs(v.CountdownMs))
	fmt.Fprintf(o.w, "Vowels:  %d%%  Words: %d  Spawned: %d  Time: %s\n",
		v.VowelPercent, v.Words, v.Spawned, formatMs(v.ElapsedMs))
	fmt.Fprintln(o.w)
	RenderBoard(o.w, v)
	if v.Word != "" {
		fmt.Fprintf(o.w, "\nSelected: %s\n", strings.ToUpper(v.Word))
	}
	if v.EndReason != "" {
		fmt.Fprintf(o.w, "\nGame over: %s\n", v.EndReason)
	}
}

// RenderBoard draws the board as a grid of top letters and heights.
// Selected cells are bracketed and pending spawn targets starred.
func RenderBoard(w io.Writer, v session.View) {
	if v.Cols == 0 {
		return
	}
	selected := make(map[int]bool, len(v.Selection))
	for _, idx := range v.Selection {
		selected[idx] = true
	}
	pending := make(map[int]bool, len(v.Pending))
	for _, idx := range v.Pending {
		pending[idx] = true
	}

	for row := 0; row < v.Rows; row++ {
		var b strings.Builder
		for col := 0; col < v.Cols; col++ {
			idx := row*v.Cols + col
			content := ".."
			if idx < len(v.Tops) && v.Tops[idx] != "" {
				content = fmt.Sprintf("%s%d", strings.ToUpper(v.Tops[idx]), v.Heights[idx])
			}
			left, right := " ", " "
			if selected[idx] {
				left, right = "[", "]"
			}
			if pending[idx] {
				right = "*"
			}
			cell := fmt.Sprintf("%s%-3s%s", left, content, right)
			fmt.Fprintf(&b, "%2d%s", idx, cell)
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

func (o *Output) printSubmit(r response.SubmitResponse) {
	fmt.Fprintf(o.w, "Accepted: %s\n", strings.ToUpper(r.Word))
	fmt.Fprintf(o.w, "Next cycle: %d letter(s) in %s\n", r.NextTempo.Quantity, formatMs(r.NextTempo.IntervalMs))
	if r.Won {
		fmt.Fprintln(o.w, "Board cleared!")
	}
	fmt.Fprintln(o.w)
	RenderBoard(o.w, r.Session)
}

func (o *Output) printHint(r response.HintResponse) {
	if r.Word == "" {
		fmt.Fprintln(o.w, "No word can be spelled from the current tops")
		return
	}
	cells := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		cells[i] = fmt.Sprint(c)
	}
	fmt.Fprintf(o.w, "Try %s (cells %s)\n", strings.ToUpper(r.Word), strings.Join(cells, " "))
}

func (o *Output) printSettings(s response.Settings) {
	fmt.Fprintf(o.w, "Profile: %s\n", s.Profile)
	fmt.Fprintf(o.w, "Level: %d\n", s.Level)
	fmt.Fprintf(o.w, "Stack ceiling: %d\n", s.StackCeiling)
}

func (o *Output) printScores(r response.ScoresResponse) {
	if len(r.Scores) == 0 {
		fmt.Fprintln(o.w, "No scores recorded")
		return
	}
	fmt.Fprintf(o.w, "%-3s %-12s %-8s %5s %7s %10s  %s\n", "#", "PROFILE", "MODE", "LEVEL", "CEILING", "TIME", "WHEN")
	for i, s := range r.Scores {
		fmt.Fprintf(o.w, "%-3d %-12s %-8s %5d %7d %10s  %s\n",
			i+1, s.Profile, s.Mode, s.Level, s.Ceiling, formatMs(s.ElapsedMs), s.Timestamp.Format("2006-01-02 15:04"))
	}
}

func (o *Output) printWord(r response.WordResponse) {
	if r.Valid {
		fmt.Fprintf(o.w, "%s is a valid word\n", strings.ToUpper(r.Word))
	} else {
		fmt.Fprintf(o.w, "%s is not accepted\n", strings.ToUpper(r.Word))
	}
}

func (o *Output) printHealth(r response.HealthResponse) {
	fmt.Fprintf(o.w, "Status: %s\n", r.Status)
	fmt.Fprintf(o.w, "Dictionary words: %d\n", r.DictionaryWords)
	if r.AllowAnyWord {
		fmt.Fprintln(o.w, "WARNING: server accepts any word")
	}
}

func formatMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(100 * time.Millisecond).String()
}

func (o *Output) printAudit(r audit.Report) {
	fmt.Fprintf(o.w, "Level %d: %d of %d cycles run, final state %s\n", r.Level, r.CyclesRun, r.Cycles, r.FinalState)
	fmt.Fprintf(o.w, "Spawned: %d  Words played: %d  Max height: %d\n", r.Spawned, r.WordsPlayed, r.MaxHeight)
	fmt.Fprintf(o.w, "Tallest fallbacks: %d\n", r.TallestFallbacks)
	fmt.Fprintf(o.w, "Random picks on cooldown: %d\n", r.RandomHitsOnCooldown)
	if r.AvgTallestGap == nil {
		fmt.Fprintln(o.w, "Tallest gap: no cell picked twice")
		return
	}
	fmt.Fprintf(o.w, "Tallest gap: avg %.2f  min %d cycles\n", *r.AvgTallestGap, r.MinTallestGap)
	for _, idx := range r.TallestCells() {
		fmt.Fprintf(o.w, "  cell %2d: %v\n", idx, r.TallestGaps[idx])
	}
}
