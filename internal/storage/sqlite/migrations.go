package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// migration is one ordered schema step, recorded by name in _migrations once applied
type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "0001_sessions",
		sql: `CREATE TABLE sessions (
			id         TEXT PRIMARY KEY,
			profile    TEXT NOT NULL,
			state      TEXT NOT NULL,
			data       BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	},
	{
		name: "0002_settings",
		sql: `CREATE TABLE settings (
			profile TEXT PRIMARY KEY,
			doc     BLOB NOT NULL
		);`,
	},
	{
		name: "0003_scores",
		sql: `CREATE TABLE scores (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			profile    TEXT NOT NULL,
			session_id TEXT NOT NULL,
			level      INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			ceiling    INTEGER NOT NULL,
			mode       TEXT NOT NULL,
			at         INTEGER NOT NULL
		);
		CREATE INDEX idx_scores_profile ON scores(profile);`,
	},
	{
		name: "0004_dictionary",
		sql:  `CREATE TABLE dictionary (word TEXT PRIMARY KEY);`,
	},
}

// migrate applies any migrations not yet recorded, each in its own transaction
func migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	for _, m := range migrations {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, m.name).Scan(&done)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", m.name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", m.name, err)
		}
		logger.Info("migration applied", slog.String("migration", m.name))
	}
	return nil
}
