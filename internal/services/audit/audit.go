package audit

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/autoplay"
	"github.com/mcoot/letterstacks/internal/services/session"
	"github.com/mcoot/letterstacks/internal/services/spawn"
	"github.com/mcoot/letterstacks/internal/services/tempo"
)

// Audit defaults
const (
	DefaultLevel   = model.MaxLevel
	DefaultCycles  = 200
	DefaultCeiling = 999
)

// Config describes one audit run
type Config struct {
	Level  int
	Cycles int
	// Ceiling is applied after the session is dealt, so it may exceed the
	// range players can choose
	Ceiling int
	// Strategy, when set, plays one word after every cycle
	Strategy autoplay.Strategy
}

// Report summarises how the scheduler behaved over an audit run
type Report struct {
	Level     int `json:"level"`
	Cycles    int `json:"cycles"`
	CyclesRun int `json:"cycles_run"`

	// TallestFallbacks counts cycles where every tallest cell was cooling
	TallestFallbacks int `json:"tallest_fallbacks"`
	// RandomHitsOnCooldown counts random picks landing on cooling cells
	RandomHitsOnCooldown int `json:"random_hits_on_cooldown"`
	// TallestGaps holds, per cell, the cycle gaps between successive tallest picks
	TallestGaps map[int][]int `json:"tallest_gaps"`
	// AvgTallestGap is nil when no cell was picked as tallest twice
	AvgTallestGap *float64 `json:"avg_tallest_gap"`
	// MinTallestGap is the shortest gap seen, 0 when there are none
	MinTallestGap int `json:"min_tallest_gap"`

	Spawned     int                `json:"spawned"`
	WordsPlayed int                `json:"words_played"`
	MaxHeight   int                `json:"max_height"`
	FinalState  model.SessionState `json:"final_state"`
}

// Auditor replays the spawn scheduler on scratch sessions
type Auditor struct {
	engine    *session.Engine
	scheduler *spawn.Scheduler
	logger    *slog.Logger
}

// New creates a new Auditor
func New(engine *session.Engine, scheduler *spawn.Scheduler, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Auditor{
		engine:    engine,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "audit")),
	}
}

// Run deals a fresh board at the configured level and applies spawn cycles
// back to back, with the tempo held at the level preset
func (a *Auditor) Run(ctx context.Context, cfg Config) (Report, error) {
	cfg = withDefaults(cfg)

	sess, sel, err := a.engine.Start("audit", model.DefaultProfile, model.Settings{
		Level:        cfg.Level,
		StackCeiling: model.DefaultStackCeiling,
	})
	if err != nil {
		return Report{}, err
	}
	sess.Settings.StackCeiling = cfg.Ceiling

	report := Report{
		Level:       cfg.Level,
		Cycles:      cfg.Cycles,
		TallestGaps: make(map[int][]int),
	}
	lastTallest := make(map[int]int)

	for c := 0; c < cfg.Cycles; c++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if sel.Fallback {
			report.TallestFallbacks++
		}
		report.RandomHitsOnCooldown += sel.RandomOnCooldown
		if sel.Tallest >= 0 {
			if prev, ok := lastTallest[sel.Tallest]; ok {
				report.TallestGaps[sel.Tallest] = append(report.TallestGaps[sel.Tallest], c-prev)
			}
			lastTallest[sel.Tallest] = c
		}

		_, breached := a.scheduler.Apply(sess)
		report.CyclesRun++
		if breached {
			sess.State = model.SessionStateLost
			break
		}

		if cfg.Strategy != nil && a.playWord(sess, cfg.Strategy) {
			report.WordsPlayed++
			if !sess.IsRunning() {
				break
			}
		}

		sess.Tempo = tempo.PresetForLevel(cfg.Level)
		sess.NextTempo = nil
		sel = a.scheduler.Choose(sess)
	}

	report.Spawned = sess.Spawned
	report.MaxHeight = sess.Board.MaxHeight()
	report.FinalState = sess.State
	summarise(&report)

	a.logger.Info("spawn audit complete",
		slog.Int("level", report.Level),
		slog.Int("cycles_run", report.CyclesRun),
		slog.Int("tallest_fallbacks", report.TallestFallbacks),
		slog.Int("random_hits_on_cooldown", report.RandomHitsOnCooldown),
		slog.Int("words_played", report.WordsPlayed),
	)
	return report, nil
}

// playWord submits the strategy's word through the normal submission path
func (a *Auditor) playWord(sess *model.Session, strategy autoplay.Strategy) bool {
	_, cells := strategy.Choose(sess.Board)
	if len(cells) < session.MinWordLength {
		return false
	}
	sess.Selection = append([]int{}, cells...)
	ticket, err := a.engine.BeginSubmit(sess)
	if err != nil {
		sess.Selection = nil
		return false
	}
	if _, err := a.engine.CompleteSubmit(sess, ticket, true); err != nil {
		sess.Selection = nil
		return false
	}
	return true
}

func withDefaults(cfg Config) Config {
	if cfg.Level == 0 {
		cfg.Level = DefaultLevel
	}
	if cfg.Cycles <= 0 {
		cfg.Cycles = DefaultCycles
	}
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = DefaultCeiling
	}
	return cfg
}

func summarise(r *Report) {
	total, count := 0, 0
	for _, gaps := range r.TallestGaps {
		for _, g := range gaps {
			total += g
			count++
			if r.MinTallestGap == 0 || g < r.MinTallestGap {
				r.MinTallestGap = g
			}
		}
	}
	if count > 0 {
		avg := float64(total) / float64(count)
		r.AvgTallestGap = &avg
	}
}

// TallestCells returns the cells that were ever picked as tallest more than once, ascending
func (r Report) TallestCells() []int {
	cells := make([]int, 0, len(r.TallestGaps))
	for idx := range r.TallestGaps {
		cells = append(cells, idx)
	}
	sort.Ints(cells)
	return cells
}
