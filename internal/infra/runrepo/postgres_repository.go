package runrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/carbonlens/internal/domain/footprint"
	"github.com/yanqian/carbonlens/internal/domain/leaderboard"
)

// PostgresRepository stores runs in Postgres via pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the runs table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create footprint_runs: %w", err)
	}
	return nil
}

// SaveRun inserts one run.
func (r *PostgresRepository) SaveRun(ctx context.Context, run footprint.Run) (string, error) {
	inputs, err := json.Marshal(run.Input)
	if err != nil {
		return "", fmt.Errorf("encode inputs: %w", err)
	}
	var id string
	err = r.pool.QueryRow(ctx, `
		INSERT INTO footprint_runs (id, user_id, display_name, inputs, total_kg, energy_kg, travel_kg, food_kg, goods_kg, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, run.ID, run.UserID, run.DisplayName, inputs,
		run.Totals.Total, run.Totals.Energy, run.Totals.Travel, run.Totals.Food, run.Totals.Goods,
		run.Score, run.CreatedAt.UTC()).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrDuplicateRun
		}
		return "", err
	}
	return id, nil
}

// TopScores returns the best runs of all time.
func (r *PostgresRepository) TopScores(ctx context.Context, limit int) ([]leaderboard.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, display_name, score, total_kg, created_at
		FROM footprint_runs
		ORDER BY score DESC, created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

// TopScoresSince returns the best runs created at or after since.
func (r *PostgresRepository) TopScoresSince(ctx context.Context, since time.Time, limit int) ([]leaderboard.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, display_name, score, total_kg, created_at
		FROM footprint_runs
		WHERE created_at >= $1
		ORDER BY score DESC, created_at ASC
		LIMIT $2
	`, since.UTC(), limit)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

// BestForUser returns the user's highest ranked run.
func (r *PostgresRepository) BestForUser(ctx context.Context, userID int64) (leaderboard.Record, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, display_name, score, total_kg, created_at
		FROM footprint_runs
		WHERE user_id = $1
		ORDER BY score DESC, created_at ASC
		LIMIT 1
	`, userID)
	if err != nil {
		return leaderboard.Record{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return leaderboard.Record{}, false, rows.Err()
	}
	rec, err := scanRecord(rows)
	if err != nil {
		return leaderboard.Record{}, false, err
	}
	return rec, true, rows.Err()
}

// CountAhead counts runs ranked strictly before rec.
func (r *PostgresRepository) CountAhead(ctx context.Context, rec leaderboard.Record) (int, error) {
	var ahead int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM footprint_runs
		WHERE score > $1 OR (score = $1 AND created_at < $2)
	`, rec.Score, rec.CreatedAt.UTC()).Scan(&ahead)
	return ahead, err
}

func collectRecords(rows pgx.Rows) ([]leaderboard.Record, error) {
	defer rows.Close()
	var records []leaderboard.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (leaderboard.Record, error) {
	var (
		rec     leaderboard.Record
		userID  *int64
		created time.Time
	)
	if err := row.Scan(&rec.RunID, &userID, &rec.DisplayName, &rec.Score, &rec.TotalKg, &created); err != nil {
		return leaderboard.Record{}, err
	}
	rec.UserID = userID
	rec.CreatedAt = created.UTC()
	return rec, nil
}

var (
	_ footprint.RunRepository = (*PostgresRepository)(nil)
	_ leaderboard.Repository  = (*PostgresRepository)(nil)
)
