package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/storage"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Config holds SQLite settings
type Config struct {
	// Path is the database file, or MemoryPath
	Path string

	// BusyTimeout is how long a writer waits on a locked database
	BusyTimeout time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults for SQLite configuration
func DefaultConfig() Config {
	return Config{
		Path:        "data/letterstacks.db",
		BusyTimeout: 5 * time.Second,
	}
}

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (creating if missing) a SQLite database and applies migrations
func New(ctx context.Context, cfg Config) (*Storage, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With(slog.String("component", "sqlite"))

	if cfg.Path != MemoryPath {
		if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	dsn := fmt.Sprintf("%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on", cfg.Path, busy.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: an in-memory database exists per connection, and
	// SQLite serialises writers regardless.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSession(ctx context.Context, sess *model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, profile, state, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			profile=excluded.profile,
			state=excluded.state,
			data=excluded.data,
			updated_at=excluded.updated_at`,
		string(sess.ID), sess.Profile, string(sess.State), data, sess.UpdatedAt.UnixMilli(),
	)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM sessions WHERE id=?`, string(id)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, string(id))
	return err
}

// Settings operations

func (s *Storage) SaveSettings(ctx context.Context, profile string, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (profile, doc) VALUES (?, ?)
		ON CONFLICT(profile) DO UPDATE SET doc=excluded.doc`,
		profile, doc,
	)
	return err
}

func (s *Storage) GetSettings(ctx context.Context, profile string) ([]byte, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM settings WHERE profile=?`, profile).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSettingsNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Score operations

func (s *Storage) AppendScore(ctx context.Context, rec *model.ScoreRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scores (profile, session_id, level, elapsed_ms, ceiling, mode, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Profile, string(rec.SessionID), rec.Level, rec.ElapsedMs(), rec.Ceiling, string(rec.Mode), rec.Timestamp.UnixMilli(),
	)
	return err
}

func (s *Storage) ListScores(ctx context.Context, filter storage.ScoreFilter) ([]*model.ScoreRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.Profile != "" {
		where = append(where, "profile=?")
		args = append(args, filter.Profile)
	}
	if filter.Level != 0 {
		where = append(where, "level=?")
		args = append(args, filter.Level)
	}
	if filter.Mode != "" {
		where = append(where, "mode=?")
		args = append(args, string(filter.Mode))
	}

	query := `SELECT profile, session_id, level, elapsed_ms, ceiling, mode, at FROM scores`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.ScoreRecord, 0)
	for rows.Next() {
		var (
			rec       model.ScoreRecord
			sessionID string
			mode      string
			elapsedMs int64
			at        int64
		)
		if err := rows.Scan(&rec.Profile, &sessionID, &rec.Level, &elapsedMs, &rec.Ceiling, &mode, &at); err != nil {
			return nil, err
		}
		rec.SessionID = model.SessionID(sessionID)
		rec.Mode = model.ScoreMode(mode)
		rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		rec.Timestamp = time.UnixMilli(at).UTC()
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word FROM dictionary ORDER BY word`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, model.ErrDictionaryNotLoaded
	}
	return words, nil
}

// SaveDictionaryWords replaces the stored word list in one transaction
func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dictionary`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO dictionary (word) VALUES (?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, w := range words {
		if _, err := stmt.ExecContext(ctx, w); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("dictionary stored", slog.Int("word_count", len(words)))
	return nil
}
