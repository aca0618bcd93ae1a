package supply

import (
	"github.com/mcoot/letterstacks/internal/dependencies/random"
	"github.com/mcoot/letterstacks/internal/model"
)

// Service builds, draws from and recycles letter supplies
type Service struct {
	random random.Random
}

// New creates a new SupplyService
func New(random random.Random) *Service {
	return &Service{
		random: random,
	}
}

// Build returns a freshly shuffled supply sized for a rows x cols board
func (s *Service) Build(rows, cols int) []rune {
	multi := Multiplier(rows, cols)
	letters := make([]rune, 0, multi*BaseSize())
	for k := 0; k < multi; k++ {
		for _, l := range Alphabet {
			for i := 0; i < frequencies[l]; i++ {
				letters = append(letters, l)
			}
		}
	}
	random.Shuffle(s.random, letters)
	return letters
}

// NewBag returns a bag holding a freshly built supply
func (s *Service) NewBag(rows, cols int) *model.Bag {
	return model.NewBag(s.Build(rows, cols))
}

// Refill tops up an empty bag using the given board dimensions.
// Returns true if a refill happened.
func (s *Service) Refill(bag *model.Bag, rows, cols int) bool {
	if !bag.IsEmpty() {
		return false
	}
	bag.Letters = append(bag.Letters, s.Build(rows, cols)...)
	return true
}

// Draw removes and returns the letter at the end of the bag, refilling first if empty
func (s *Service) Draw(bag *model.Bag, rows, cols int) rune {
	s.Refill(bag, rows, cols)
	last := len(bag.Letters) - 1
	letter := bag.Letters[last]
	bag.Letters = bag.Letters[:last]
	return letter
}

// DrawMatching scans at most window letters back from the end of the bag and
// removes the first one satisfying match. Returns false if none matched.
// The caller is responsible for refilling an empty bag beforehand.
func (s *Service) DrawMatching(bag *model.Bag, window int, match func(rune) bool) (rune, bool) {
	start := len(bag.Letters) - window
	if start < 0 {
		start = 0
	}
	for i := len(bag.Letters) - 1; i >= start; i-- {
		letter := bag.Letters[i]
		if match(letter) {
			bag.Letters = append(bag.Letters[:i], bag.Letters[i+1:]...)
			return letter, true
		}
	}
	return 0, false
}

// Return reinserts letters at uniformly random positions, then diffuses them
// with a pass of random swaps across the whole bag
func (s *Service) Return(bag *model.Bag, letters []rune) {
	for _, l := range letters {
		pos := s.random.Intn(len(bag.Letters) + 1)
		bag.Letters = append(bag.Letters, 0)
		copy(bag.Letters[pos+1:], bag.Letters[pos:])
		bag.Letters[pos] = l
	}

	n := len(bag.Letters)
	if n == 0 {
		return
	}
	swaps := min(n, max(10, 5*len(letters)))
	for r := 0; r < swaps; r++ {
		i := s.random.Intn(n)
		j := s.random.Intn(n)
		bag.Letters[i], bag.Letters[j] = bag.Letters[j], bag.Letters[i]
	}
}
