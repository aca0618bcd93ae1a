package storage

import (
	"context"

	"github.com/mcoot/letterstacks/internal/model"
)

// ScoreFilter narrows a score listing. Zero values match everything.
type ScoreFilter struct {
	Profile string
	Level   int
	Mode    model.ScoreMode
}

// Matches returns true if the record passes the filter
func (f ScoreFilter) Matches(rec *model.ScoreRecord) bool {
	if f.Profile != "" && rec.Profile != f.Profile {
		return false
	}
	if f.Level != 0 && rec.Level != f.Level {
		return false
	}
	if f.Mode != "" && rec.Mode != f.Mode {
		return false
	}
	return true
}

// Storage defines the interface for data persistence
type Storage interface {
	// Session snapshot operations
	SaveSession(ctx context.Context, sess *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error

	// Settings operations. Documents are stored raw so older formats survive
	// until they are parsed.
	SaveSettings(ctx context.Context, profile string, doc []byte) error
	GetSettings(ctx context.Context, profile string) ([]byte, error)

	// Score log operations (append-only)
	AppendScore(ctx context.Context, rec *model.ScoreRecord) error
	ListScores(ctx context.Context, filter ScoreFilter) ([]*model.ScoreRecord, error)

	// Dictionary operations
	GetDictionaryWords(ctx context.Context) ([]string, error)
	SaveDictionaryWords(ctx context.Context, words []string) error
}
