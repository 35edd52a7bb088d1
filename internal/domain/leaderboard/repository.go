package leaderboard

import (
	"context"
	"time"
)

// Repository reads leaderboard rows. Ordering is score descending, then oldest first.
type Repository interface {
	TopScores(ctx context.Context, limit int) ([]Record, error)
	TopScoresSince(ctx context.Context, since time.Time, limit int) ([]Record, error)
	BestForUser(ctx context.Context, userID int64) (Record, bool, error)
	CountAhead(ctx context.Context, rec Record) (int, error)
}
