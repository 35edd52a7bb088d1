package runrepo

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/yanqian/carbonlens/internal/domain/footprint"
	"github.com/yanqian/carbonlens/internal/domain/leaderboard"
)

// MemoryRepository keeps runs in process memory for tests and local dev.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs []footprint.Run
	ids  map[string]struct{}
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{ids: make(map[string]struct{})}
}

// SaveRun implements footprint.RunRepository.
func (r *MemoryRepository) SaveRun(ctx context.Context, run footprint.Run) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if run.ID == "" {
		return "", errors.New("run id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ids[run.ID]; exists {
		return "", ErrDuplicateRun
	}
	if run.UserID != nil {
		id := *run.UserID
		run.UserID = &id
	}
	r.ids[run.ID] = struct{}{}
	r.runs = append(r.runs, run)
	return run.ID, nil
}

// TopScores implements leaderboard.Repository.
func (r *MemoryRepository) TopScores(_ context.Context, limit int) ([]leaderboard.Record, error) {
	return r.top(time.Time{}, limit), nil
}

// TopScoresSince implements leaderboard.Repository.
func (r *MemoryRepository) TopScoresSince(_ context.Context, since time.Time, limit int) ([]leaderboard.Record, error) {
	return r.top(since, limit), nil
}

// BestForUser implements leaderboard.Repository.
func (r *MemoryRepository) BestForUser(_ context.Context, userID int64) (leaderboard.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		best  leaderboard.Record
		found bool
	)
	for _, run := range r.runs {
		if run.UserID == nil || *run.UserID != userID {
			continue
		}
		rec := toRecord(run)
		if !found || ranksBefore(rec, best) {
			best, found = rec, true
		}
	}
	return best, found, nil
}

// CountAhead implements leaderboard.Repository.
func (r *MemoryRepository) CountAhead(_ context.Context, rec leaderboard.Record) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ahead := 0
	for _, run := range r.runs {
		if ranksBefore(toRecord(run), rec) {
			ahead++
		}
	}
	return ahead, nil
}

func (r *MemoryRepository) top(since time.Time, limit int) []leaderboard.Record {
	r.mu.RLock()
	records := make([]leaderboard.Record, 0, len(r.runs))
	for _, run := range r.runs {
		if !since.IsZero() && run.CreatedAt.Before(since) {
			continue
		}
		records = append(records, toRecord(run))
	}
	r.mu.RUnlock()

	slices.SortStableFunc(records, func(a, b leaderboard.Record) int {
		switch {
		case ranksBefore(a, b):
			return -1
		case ranksBefore(b, a):
			return 1
		default:
			return 0
		}
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

// ranksBefore orders by score descending, then earliest submission.
func ranksBefore(a, b leaderboard.Record) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func toRecord(run footprint.Run) leaderboard.Record {
	return leaderboard.Record{
		RunID:       run.ID,
		UserID:      run.UserID,
		DisplayName: run.DisplayName,
		Score:       run.Score,
		TotalKg:     run.Totals.Total,
		CreatedAt:   run.CreatedAt,
	}
}

var (
	_ footprint.RunRepository = (*MemoryRepository)(nil)
	_ leaderboard.Repository  = (*MemoryRepository)(nil)
)
