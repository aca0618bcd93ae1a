package tempo

import (
	"testing"
	"time"

	"github.com/mcoot/letterstacks/internal/model"
	"github.com/stretchr/testify/suite"
)

type TempoSuite struct {
	suite.Suite
}

func TestTempoSuite(t *testing.T) {
	suite.Run(t, new(TempoSuite))
}

func (s *TempoSuite) TestPresetTable() {
	cases := []struct {
		level    int
		seconds  int
		quantity int
	}{
		{1, 10, 1}, {4, 7, 1}, {6, 5, 1},
		{7, 10, 2}, {12, 5, 2},
		{13, 10, 3}, {18, 5, 3},
		{19, 4, 3},
		{20, 10, 4},
		{21, 8, 4}, {24, 5, 4},
		{25, 6, 5},
	}
	for _, tc := range cases {
		got := PresetForLevel(tc.level)
		s.Equal(time.Duration(tc.seconds)*time.Second, got.Interval, "level %d", tc.level)
		s.Equal(tc.quantity, got.Quantity, "level %d", tc.level)
	}
}

func (s *TempoSuite) TestPresetIntervalDecreasesWithinTiers() {
	for level := 2; level <= 6; level++ {
		s.Equal(PresetForLevel(level-1).Interval-time.Second, PresetForLevel(level).Interval)
	}
	for level := 8; level <= 12; level++ {
		s.Equal(PresetForLevel(level-1).Interval-time.Second, PresetForLevel(level).Interval)
	}
}

func (s *TempoSuite) TestPresetOutOfRange() {
	s.Equal(model.Tempo{Interval: 10 * time.Second, Quantity: 1}, PresetForLevel(0))
	s.Equal(model.Tempo{Interval: 10 * time.Second, Quantity: 1}, PresetForLevel(99))
}

func (s *TempoSuite) TestClamp() {
	s.Equal(model.Tempo{Interval: time.Second, Quantity: 1}, Clamp(model.Tempo{Interval: 0, Quantity: 0}))
	s.Equal(model.Tempo{Interval: time.Minute, Quantity: 5}, Clamp(model.Tempo{Interval: time.Hour, Quantity: 9}))
}

func (s *TempoSuite) TestAfterSubmission() {
	base := model.Tempo{Interval: 10 * time.Second, Quantity: 2}

	s.Equal(model.Tempo{Interval: 7 * time.Second, Quantity: 2}, AfterSubmission(base, 3))
	s.Equal(base, AfterSubmission(base, 4))
	s.Equal(model.Tempo{Interval: 13 * time.Second, Quantity: 2}, AfterSubmission(base, 5))
	s.Equal(model.Tempo{Interval: 13 * time.Second, Quantity: 2}, AfterSubmission(base, 9))
}

func (s *TempoSuite) TestAfterSubmissionFloorsAtOneSecond() {
	base := model.Tempo{Interval: 2 * time.Second, Quantity: 3}

	s.Equal(model.Tempo{Interval: time.Second, Quantity: 3}, AfterSubmission(base, 3))
}

func (s *TempoSuite) TestDescribe() {
	s.Equal("1 tile every 10s", Describe(PresetForLevel(1)))
	s.Equal("5 tiles every 6s", Describe(PresetForLevel(25)))
}
