package model

import (
	"encoding/json"
	"time"
)

// Tempo is the spawn cadence: how often a batch lands and how many letters it carries
type Tempo struct {
	Interval time.Duration `json:"interval"`
	Quantity int           `json:"quantity"`
}

// SpawnTarget is a cell chosen to receive the next letter.
// It deliberately carries no letter: the letter is drawn when the target is applied.
type SpawnTarget struct {
	CellIndex int `json:"cell"`
}

// SpawnEvent is a letter that actually landed on a cell
type SpawnEvent struct {
	CellIndex int  `json:"cell"`
	Letter    rune `json:"letter"`
	Height    int  `json:"height"`
}

// MarshalJSON renders the letter as a string
func (e SpawnEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CellIndex int    `json:"cell"`
		Letter    string `json:"letter"`
		Height    int    `json:"height"`
	}{e.CellIndex, string(e.Letter), e.Height})
}

// TargetIndices returns the cell indices of a batch of targets
func TargetIndices(targets []SpawnTarget) []int {
	indices := make([]int, len(targets))
	for i, t := range targets {
		indices[i] = t.CellIndex
	}
	return indices
}
