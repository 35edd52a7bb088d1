package leaderboard

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/yanqian/carbonlens/pkg/errors"
	"github.com/yanqian/carbonlens/pkg/util"
)

// Service exposes leaderboard queries.
type Service interface {
	Top(ctx context.Context, limit int) (Board, error)
	Monthly(ctx context.Context) (Board, error)
	UserRank(ctx context.Context, userID int64) (Standing, error)
}

type service struct {
	cfg    Config
	repo   Repository
	logger *slog.Logger
	now    util.Clock
}

// NewService constructs the leaderboard service.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	if cfg.MonthlyLimit <= 0 {
		cfg.MonthlyLimit = 20
	}
	if cfg.MonthlyWindow <= 0 {
		cfg.MonthlyWindow = 30 * 24 * time.Hour
	}
	return &service{
		cfg:    cfg,
		repo:   repo,
		logger: logger.With("component", "leaderboard.service"),
		now:    util.NowUTC,
	}
}

func (s *service) Top(ctx context.Context, limit int) (Board, error) {
	switch {
	case limit < 0:
		return Board{}, apperrors.Wrap(apperrors.CodeInvalidInput, "limit must be positive", nil)
	case limit == 0:
		limit = s.cfg.DefaultLimit
	case limit > s.cfg.MaxLimit:
		limit = s.cfg.MaxLimit
	}
	records, err := s.repo.TopScores(ctx, limit)
	if err != nil {
		s.logger.Error("load leaderboard failed", "error", err)
		return Board{}, apperrors.Wrap(apperrors.CodeLeaderboard, "leaderboard unavailable", err)
	}
	return Board{Entries: rank(records, 1), GeneratedAt: s.now()}, nil
}

func (s *service) Monthly(ctx context.Context) (Board, error) {
	now := s.now()
	since := util.StartOfWindow(now, s.cfg.MonthlyWindow)
	records, err := s.repo.TopScoresSince(ctx, since, s.cfg.MonthlyLimit)
	if err != nil {
		s.logger.Error("load monthly leaderboard failed", "error", err)
		return Board{}, apperrors.Wrap(apperrors.CodeLeaderboard, "monthly leaderboard unavailable", err)
	}
	return Board{Entries: rank(records, 1), Since: since, GeneratedAt: now}, nil
}

func (s *service) UserRank(ctx context.Context, userID int64) (Standing, error) {
	if userID <= 0 {
		return Standing{}, apperrors.Wrap(apperrors.CodeInvalidInput, "user id must be positive", nil)
	}
	best, found, err := s.repo.BestForUser(ctx, userID)
	if err != nil {
		return Standing{}, apperrors.Wrap(apperrors.CodeLeaderboard, "failed to load user entry", err)
	}
	if !found {
		return Standing{UserID: userID}, nil
	}
	ahead, err := s.repo.CountAhead(ctx, best)
	if err != nil {
		return Standing{}, apperrors.Wrap(apperrors.CodeLeaderboard, "failed to rank user", err)
	}
	entry := toEntry(best, ahead+1)
	return Standing{UserID: userID, Found: true, Rank: entry.Rank, Entry: &entry}, nil
}

func rank(records []Record, first int) []Entry {
	entries := make([]Entry, 0, len(records))
	for i, rec := range records {
		entries = append(entries, toEntry(rec, first+i))
	}
	return entries
}

func toEntry(rec Record, position int) Entry {
	return Entry{
		Rank:        position,
		RunID:       rec.RunID,
		UserID:      rec.UserID,
		DisplayName: rec.DisplayName,
		Score:       rec.Score,
		Tier:        Tier(rec.Score),
		XP:          XP(rec.Score),
		TotalKg:     rec.TotalKg,
		CreatedAt:   rec.CreatedAt,
	}
}
