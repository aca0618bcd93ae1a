package scoreboard

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/storage"
)

// Service records finished runs and ranks them
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new scoreboard Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "scoreboard")),
	}
}

// Record appends a score to the log
func (s *Service) Record(ctx context.Context, rec *model.ScoreRecord) error {
	if err := s.storage.AppendScore(ctx, rec); err != nil {
		s.logger.Error("failed to record score",
			slog.String("session_id", string(rec.SessionID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	s.logger.Info("score recorded",
		slog.String("profile", rec.Profile),
		slog.String("mode", string(rec.Mode)),
		slog.Int("level", rec.Level),
		slog.Int64("elapsed_ms", rec.ElapsedMs()),
	)
	return nil
}

// List returns matching scores ranked: wins before survival runs, wins
// fastest first, survival runs longest first. Ties go to the earlier run.
// limit <= 0 returns everything.
func (s *Service) List(ctx context.Context, filter storage.ScoreFilter, limit int) ([]*model.ScoreRecord, error) {
	records, err := s.storage.ListScores(ctx, filter)
	if err != nil {
		return nil, err
	}
	Rank(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Best returns the top ranked score for a filter, or nil if there is none
func (s *Service) Best(ctx context.Context, filter storage.ScoreFilter) (*model.ScoreRecord, error) {
	records, err := s.List(ctx, filter, 1)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

// Rank sorts records in place in leaderboard order
func Rank(records []*model.ScoreRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Mode != b.Mode {
			return a.Mode == model.ScoreModeWin
		}
		if a.Elapsed != b.Elapsed {
			if a.Mode == model.ScoreModeWin {
				return a.Elapsed < b.Elapsed
			}
			return a.Elapsed > b.Elapsed
		}
		return a.Timestamp.Before(b.Timestamp)
	})
}
