package autoplay

import (
	"unicode"

	"github.com/mcoot/letterstacks/internal/dependencies/random"
	"github.com/mcoot/letterstacks/internal/model"
)

// Strategy names
const (
	StrategyLongest = "longest"
	StrategyRandom  = "random"
)

// Finder lists dictionary words that can be spelled from a set of letters
type Finder interface {
	FindFormable(letters []rune, limit int) []string
}

// Strategy defines how autoplay chooses a word on the board
type Strategy interface {
	// Choose returns the cells spelling a word in order, or nil if none is found
	Choose(board *model.Board) (word string, cells []int)
}

// StrategyDisplayName returns a human-readable label for a strategy
func StrategyDisplayName(strategy string) string {
	switch strategy {
	case StrategyLongest:
		return "Longest word"
	case StrategyRandom:
		return "Random word"
	default:
		return strategy
	}
}

// ValidStrategies returns all valid strategy names
func ValidStrategies() []string {
	return []string{StrategyLongest, StrategyRandom}
}

// NewStrategy builds the named strategy, or returns nil for an unknown name
func NewStrategy(name string, finder Finder, rnd random.Random) Strategy {
	switch name {
	case StrategyLongest:
		return NewLongestStrategy(finder)
	case StrategyRandom:
		return NewRandomStrategy(finder, rnd)
	default:
		return nil
	}
}

// LongestStrategy always plays the longest word available
type LongestStrategy struct {
	finder Finder
}

// NewLongestStrategy creates a new LongestStrategy
func NewLongestStrategy(finder Finder) *LongestStrategy {
	return &LongestStrategy{finder: finder}
}

// Choose picks the longest formable word, alphabetically first on ties
func (s *LongestStrategy) Choose(board *model.Board) (string, []int) {
	words := s.finder.FindFormable(board.Tops(), 1)
	if len(words) == 0 {
		return "", nil
	}
	return words[0], CellsFor(board, words[0])
}

// RandomStrategy plays any formable word at random
type RandomStrategy struct {
	finder Finder
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(finder Finder, rnd random.Random) *RandomStrategy {
	return &RandomStrategy{finder: finder, random: rnd}
}

// Choose picks a random formable word
func (s *RandomStrategy) Choose(board *model.Board) (string, []int) {
	words := s.finder.FindFormable(board.Tops(), 0)
	if len(words) == 0 {
		return "", nil
	}
	word := words[s.random.Intn(len(words))]
	return word, CellsFor(board, word)
}

// CellsFor maps each letter of word to a distinct cell whose top shows it,
// lowest index first. Returns nil if the board cannot spell the word.
func CellsFor(board *model.Board, word string) []int {
	used := make(map[int]bool)
	cells := make([]int, 0, len(word))
	for _, r := range word {
		want := unicode.ToUpper(r)
		found := -1
		for idx := 0; idx < board.Len(); idx++ {
			if !used[idx] && unicode.ToUpper(board.Top(idx)) == want {
				found = idx
				break
			}
		}
		if found < 0 {
			return nil
		}
		used[found] = true
		cells = append(cells, found)
	}
	return cells
}
