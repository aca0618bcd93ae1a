package spawn

import (
	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/supply"
)

// VisibleVowelRatio returns the fraction of vowels among the top letters of
// non-empty cells. An empty board has a ratio of 0.
func VisibleVowelRatio(board *model.Board) float64 {
	total, vowels := 0, 0
	for _, top := range board.Tops() {
		if top == 0 {
			continue
		}
		total++
		if supply.IsVowel(top) {
			vowels++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(vowels) / float64(total)
}

// DrawBalanced draws a letter for a spawn, nudging the visible vowel ratio back
// into the comfortable band. Falls back to a plain draw when the scan window
// holds nothing suitable.
func (s *Scheduler) DrawBalanced(sess *model.Session) rune {
	rows, cols := sess.Board.Rows, sess.Board.Cols
	s.supply.Refill(sess.Bag, rows, cols)

	ratio := VisibleVowelRatio(sess.Board)
	switch {
	case ratio >= VowelRatioHigh:
		if l, ok := s.supply.DrawMatching(sess.Bag, ScanWindow, isConsonant); ok {
			return l
		}
	case ratio <= VowelRatioLow:
		if l, ok := s.supply.DrawMatching(sess.Bag, ScanWindow, supply.IsVowel); ok {
			return l
		}
	}
	return s.supply.Draw(sess.Bag, rows, cols)
}

// Place draws a letter for one target and pushes it onto the board.
// Returns true if the push brought the stack to the session's ceiling.
func (s *Scheduler) Place(sess *model.Session, target model.SpawnTarget) (model.SpawnEvent, bool) {
	letter := s.DrawBalanced(sess)
	height := sess.Board.Push(target.CellIndex, letter)
	sess.Spawned++
	ev := model.SpawnEvent{
		CellIndex: target.CellIndex,
		Letter:    letter,
		Height:    height,
	}
	return ev, height >= sess.Settings.StackCeiling
}

// Apply lands the pending batch, choosing one first if nothing is pending.
// Stops at the first push that breaches the ceiling; the remaining targets
// are not applied. The pending batch is cleared either way.
func (s *Scheduler) Apply(sess *model.Session) ([]model.SpawnEvent, bool) {
	if len(sess.Pending) == 0 {
		s.Choose(sess)
	}

	events := make([]model.SpawnEvent, 0, len(sess.Pending))
	breached := false
	for _, target := range sess.Pending {
		ev, hit := s.Place(sess, target)
		events = append(events, ev)
		if hit {
			breached = true
			break
		}
	}
	sess.Pending = nil
	return events, breached
}

func isConsonant(letter rune) bool {
	return !supply.IsVowel(letter)
}
