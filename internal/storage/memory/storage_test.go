package memory

import (
	"context"
	"testing"
	"time"

	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/storage"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func newSession(id model.SessionID) *model.Session {
	board := model.NewBoard(2, 2)
	board.Push(0, 'C')
	board.Push(1, 'A')
	return &model.Session{
		ID:        id,
		Profile:   "local",
		Settings:  model.DefaultSettings(),
		State:     model.SessionStateRunning,
		Board:     board,
		Bag:       model.NewBag([]rune("XYZ")),
		Selection: []int{0},
		Cooldowns: map[int]int{1: 2},
		Tempo:     model.Tempo{Interval: 10 * time.Second, Quantity: 1},
		Countdown: 4 * time.Second,
	}
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	sess := newSession("sess-1")

	err := s.storage.SaveSession(s.ctx, sess)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(sess, retrieved)
}

func (s *StorageSuite) TestSavedSessionIsASnapshot() {
	sess := newSession("sess-1")
	_ = s.storage.SaveSession(s.ctx, sess)

	sess.Board.Push(2, 'T')
	sess.Selection = append(sess.Selection, 1)

	retrieved, err := s.storage.GetSession(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(0, retrieved.Board.Height(2))
	s.Equal([]int{0}, retrieved.Selection)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSession() {
	_ = s.storage.SaveSession(s.ctx, newSession("sess-1"))

	err := s.storage.DeleteSession(s.ctx, "sess-1")
	s.Require().NoError(err)

	_, err = s.storage.GetSession(s.ctx, "sess-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Settings tests

func (s *StorageSuite) TestSaveAndGetSettings() {
	err := s.storage.SaveSettings(s.ctx, "local", []byte(`{"version":2,"level":4}`))
	s.Require().NoError(err)

	doc, err := s.storage.GetSettings(s.ctx, "local")
	s.Require().NoError(err)
	s.JSONEq(`{"version":2,"level":4}`, string(doc))
}

func (s *StorageSuite) TestGetSettingsNotFound() {
	_, err := s.storage.GetSettings(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrSettingsNotFound)
}

// Score tests

func (s *StorageSuite) TestAppendAndListScores() {
	now := time.Now()
	_ = s.storage.AppendScore(s.ctx, &model.ScoreRecord{Profile: "local", Level: 3, Mode: model.ScoreModeWin, Timestamp: now})
	_ = s.storage.AppendScore(s.ctx, &model.ScoreRecord{Profile: "local", Level: 5, Mode: model.ScoreModeSurvival, Timestamp: now})
	_ = s.storage.AppendScore(s.ctx, &model.ScoreRecord{Profile: "other", Level: 3, Mode: model.ScoreModeSurvival, Timestamp: now})

	all, err := s.storage.ListScores(s.ctx, storage.ScoreFilter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	local, err := s.storage.ListScores(s.ctx, storage.ScoreFilter{Profile: "local"})
	s.Require().NoError(err)
	s.Len(local, 2)

	level3Survival, err := s.storage.ListScores(s.ctx, storage.ScoreFilter{Level: 3, Mode: model.ScoreModeSurvival})
	s.Require().NoError(err)
	s.Require().Len(level3Survival, 1)
	s.Equal("other", level3Survival[0].Profile)
}

// Dictionary tests

func (s *StorageSuite) TestSaveAndGetDictionaryWords() {
	words := []string{"apple", "banana", "cherry"}

	err := s.storage.SaveDictionaryWords(s.ctx, words)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.Equal(words, retrieved)
}

func (s *StorageSuite) TestGetDictionaryWordsNotLoaded() {
	_, err := s.storage.GetDictionaryWords(s.ctx)
	s.ErrorIs(err, model.ErrDictionaryNotLoaded)
}
