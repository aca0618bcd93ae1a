package spawn

import (
	"github.com/mcoot/letterstacks/internal/dependencies/random"
	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/supply"
)

// Scheduling constants
const (
	// TallestCooldown is how many cycles a tallest-rule pick is excluded from that rule
	TallestCooldown = 3

	// VowelRatioHigh and VowelRatioLow bound the comfortable visible vowel band
	VowelRatioHigh = 0.35
	VowelRatioLow  = 0.25

	// ScanWindow is how far back from the end of the bag a biased draw may look
	ScanWindow = 64
)

// Selection describes how a batch of targets was chosen
type Selection struct {
	Targets []model.SpawnTarget
	// Tallest is the cell picked by the tallest-first rule, or -1 when the rule did not run
	Tallest int
	// Fallback is set when every tallest cell was on cooldown and one was picked anyway
	Fallback bool
	// RandomOnCooldown counts random picks that landed on a cell with an active cooldown
	RandomOnCooldown int
}

// Scheduler chooses spawn targets and applies them to a session
type Scheduler struct {
	random random.Random
	supply *supply.Service
}

// New creates a new Scheduler
func New(random random.Random, supply *supply.Service) *Scheduler {
	return &Scheduler{
		random: random,
		supply: supply,
	}
}

// Choose selects the next batch of targets for a session and stores it as pending.
// The batch size is the session's current quantity, capped at the number of cells.
func (s *Scheduler) Choose(sess *model.Session) Selection {
	if sess.Cooldowns == nil {
		sess.Cooldowns = make(map[int]int)
	}
	decrementCooldowns(sess.Cooldowns)

	qty := min(sess.Tempo.Quantity, sess.Board.Len())
	var sel Selection
	switch {
	case qty <= 0:
		sel = Selection{Tallest: -1}
	case qty == 1:
		sel = s.chooseEarly(sess.Board)
	default:
		sel = s.chooseWeighted(sess.Board, sess.Cooldowns, qty)
	}

	sess.Pending = sel.Targets
	return sel
}

// chooseEarly picks a single target, preferring empty cells
func (s *Scheduler) chooseEarly(board *model.Board) Selection {
	sel := Selection{Tallest: -1}
	if empty := board.EmptyCells(); len(empty) > 0 {
		sel.Targets = []model.SpawnTarget{{CellIndex: empty[s.random.Intn(len(empty))]}}
		return sel
	}
	sel.Targets = []model.SpawnTarget{{CellIndex: s.random.Intn(board.Len())}}
	return sel
}

// chooseWeighted picks one target from the tallest cells, then fills the
// rest of the batch uniformly from the remaining cells
func (s *Scheduler) chooseWeighted(board *model.Board, cooldowns map[int]int, qty int) Selection {
	sel := Selection{Tallest: -1}

	maxHeight := board.MaxHeight()
	var tallest, ready []int
	for i := 0; i < board.Len(); i++ {
		if board.Height(i) != maxHeight {
			continue
		}
		tallest = append(tallest, i)
		if _, cooling := cooldowns[i]; !cooling {
			ready = append(ready, i)
		}
	}

	if len(ready) > 0 {
		sel.Tallest = ready[s.random.Intn(len(ready))]
		cooldowns[sel.Tallest] = TallestCooldown
	} else {
		// Every tallest cell is cooling down; pick one anyway so a target always exists
		sel.Tallest = tallest[s.random.Intn(len(tallest))]
		sel.Fallback = true
	}
	sel.Targets = append(sel.Targets, model.SpawnTarget{CellIndex: sel.Tallest})

	pool := make([]int, 0, board.Len()-1)
	for i := 0; i < board.Len(); i++ {
		if i != sel.Tallest {
			pool = append(pool, i)
		}
	}
	random.Shuffle(s.random, pool)
	for _, idx := range pool[:qty-1] {
		if _, cooling := cooldowns[idx]; cooling {
			sel.RandomOnCooldown++
		}
		sel.Targets = append(sel.Targets, model.SpawnTarget{CellIndex: idx})
	}
	return sel
}

func decrementCooldowns(cooldowns map[int]int) {
	for idx, remaining := range cooldowns {
		if remaining-1 <= 0 {
			delete(cooldowns, idx)
			continue
		}
		cooldowns[idx] = remaining - 1
	}
}
