package tempo

import (
	"fmt"
	"time"

	"github.com/mcoot/letterstacks/internal/model"
)

// Bounds for any resolved tempo
const (
	MinInterval = 1 * time.Second
	MaxInterval = 60 * time.Second
	MinQuantity = 1
	MaxQuantity = 5
)

// WordAdjustment is how far a short or long word moves the next interval
const WordAdjustment = 3 * time.Second

// tier is one row of the level preset table
type tier struct {
	first, last int
	quantity    int
	// seconds returns the base interval for a level within the tier
	seconds func(level int) int
}

var presets = []tier{
	{first: 1, last: 6, quantity: 1, seconds: func(l int) int { return 11 - l }},
	{first: 7, last: 12, quantity: 2, seconds: func(l int) int { return 10 - (l - 7) }},
	{first: 13, last: 18, quantity: 3, seconds: func(l int) int { return 10 - (l - 13) }},
	{first: 19, last: 19, quantity: 3, seconds: func(int) int { return 4 }},
	{first: 20, last: 20, quantity: 4, seconds: func(int) int { return 10 }},
	{first: 21, last: 24, quantity: 4, seconds: func(l int) int { return 29 - l }},
	{first: 25, last: 25, quantity: 5, seconds: func(int) int { return 6 }},
}

// PresetForLevel returns the base tempo for a level.
// Levels outside the table resolve to one letter every 10 seconds.
func PresetForLevel(level int) model.Tempo {
	t := model.Tempo{Interval: 10 * time.Second, Quantity: 1}
	for _, p := range presets {
		if level >= p.first && level <= p.last {
			t = model.Tempo{
				Interval: time.Duration(p.seconds(level)) * time.Second,
				Quantity: p.quantity,
			}
			break
		}
	}
	return Clamp(t)
}

// Clamp bounds a tempo to the allowed interval and quantity ranges
func Clamp(t model.Tempo) model.Tempo {
	t.Interval = min(max(t.Interval, MinInterval), MaxInterval)
	t.Quantity = min(max(t.Quantity, MinQuantity), MaxQuantity)
	return t
}

// AfterSubmission returns the tempo for the cycle following an accepted word.
// Three-letter words shorten the interval, four leave it alone, five or more lengthen it.
func AfterSubmission(base model.Tempo, wordLen int) model.Tempo {
	next := base
	switch {
	case wordLen <= 3:
		next.Interval -= WordAdjustment
	case wordLen >= 5:
		next.Interval += WordAdjustment
	}
	return Clamp(next)
}

// Describe renders a tempo the way the level badge shows it
func Describe(t model.Tempo) string {
	unit := "tiles"
	if t.Quantity == 1 {
		unit = "tile"
	}
	return fmt.Sprintf("%d %s every %s", t.Quantity, unit, t.Interval)
}
