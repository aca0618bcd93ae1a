package memory

import (
	"context"
	"sync"

	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	sessions        map[model.SessionID]*model.Session
	settings        map[string][]byte
	scores          []*model.ScoreRecord
	dictionaryWords []string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions: make(map[model.SessionID]*model.Session),
		settings: make(map[string][]byte),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

// SaveSession stores a copy so later mutation of the live session is not visible
func (s *Storage) SaveSession(ctx context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Settings operations

func (s *Storage) SaveSettings(ctx context.Context, profile string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[profile] = append([]byte{}, doc...)
	return nil
}

func (s *Storage) GetSettings(ctx context.Context, profile string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.settings[profile]
	if !ok {
		return nil, model.ErrSettingsNotFound
	}
	return append([]byte{}, doc...), nil
}

// Score operations

func (s *Storage) AppendScore(ctx context.Context, rec *model.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *rec
	s.scores = append(s.scores, &copied)
	return nil
}

func (s *Storage) ListScores(ctx context.Context, filter storage.ScoreFilter) ([]*model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.ScoreRecord, 0, len(s.scores))
	for _, rec := range s.scores {
		if filter.Matches(rec) {
			copied := *rec
			result = append(result, &copied)
		}
	}
	return result, nil
}

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dictionaryWords == nil {
		return nil, model.ErrDictionaryNotLoaded
	}
	return s.dictionaryWords, nil
}

func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dictionaryWords = words
	return nil
}
