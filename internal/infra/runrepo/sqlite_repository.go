package runrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/carbonlens/internal/domain/footprint"
	"github.com/yanqian/carbonlens/internal/domain/leaderboard"
)

// SQLiteRepository stores runs in an embedded SQLite database. The caller owns db
// and must register the "sqlite" driver (modernc.org/sqlite).
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository constructs the repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// EnsureSchema creates the runs table when missing.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create footprint_runs: %w", err)
	}
	return nil
}

// SaveRun inserts one run.
func (r *SQLiteRepository) SaveRun(ctx context.Context, run footprint.Run) (string, error) {
	inputs, err := json.Marshal(run.Input)
	if err != nil {
		return "", fmt.Errorf("encode inputs: %w", err)
	}
	var userID sql.NullInt64
	if run.UserID != nil {
		userID = sql.NullInt64{Int64: *run.UserID, Valid: true}
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO footprint_runs (id, user_id, display_name, inputs, total_kg, energy_kg, travel_kg, food_kg, goods_kg, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, userID, run.DisplayName, string(inputs),
		run.Totals.Total, run.Totals.Energy, run.Totals.Travel, run.Totals.Food, run.Totals.Goods,
		run.Score, run.CreatedAt.UnixNano())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", ErrDuplicateRun
		}
		return "", err
	}
	return run.ID, nil
}

// TopScores returns the best runs of all time.
func (r *SQLiteRepository) TopScores(ctx context.Context, limit int) ([]leaderboard.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, display_name, score, total_kg, created_at
		FROM footprint_runs
		ORDER BY score DESC, created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectSQLiteRecords(rows)
}

// TopScoresSince returns the best runs created at or after since.
func (r *SQLiteRepository) TopScoresSince(ctx context.Context, since time.Time, limit int) ([]leaderboard.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, display_name, score, total_kg, created_at
		FROM footprint_runs
		WHERE created_at >= ?
		ORDER BY score DESC, created_at ASC
		LIMIT ?
	`, since.UnixNano(), limit)
	if err != nil {
		return nil, err
	}
	return collectSQLiteRecords(rows)
}

// BestForUser returns the user's highest ranked run.
func (r *SQLiteRepository) BestForUser(ctx context.Context, userID int64) (leaderboard.Record, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, display_name, score, total_kg, created_at
		FROM footprint_runs
		WHERE user_id = ?
		ORDER BY score DESC, created_at ASC
		LIMIT 1
	`, userID)
	rec, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return leaderboard.Record{}, false, nil
	}
	if err != nil {
		return leaderboard.Record{}, false, err
	}
	return rec, true, nil
}

// CountAhead counts runs ranked strictly before rec.
func (r *SQLiteRepository) CountAhead(ctx context.Context, rec leaderboard.Record) (int, error) {
	var ahead int
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*)
		FROM footprint_runs
		WHERE score > ? OR (score = ? AND created_at < ?)
	`, rec.Score, rec.Score, rec.CreatedAt.UnixNano()).Scan(&ahead)
	return ahead, err
}

func collectSQLiteRecords(rows *sql.Rows) ([]leaderboard.Record, error) {
	defer rows.Close()
	var records []leaderboard.Record
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanSQLiteRecord(row rowScanner) (leaderboard.Record, error) {
	var (
		rec     leaderboard.Record
		userID  sql.NullInt64
		created int64
	)
	if err := row.Scan(&rec.RunID, &userID, &rec.DisplayName, &rec.Score, &rec.TotalKg, &created); err != nil {
		return leaderboard.Record{}, err
	}
	if userID.Valid {
		id := userID.Int64
		rec.UserID = &id
	}
	rec.CreatedAt = time.Unix(0, created).UTC()
	return rec, nil
}

var (
	_ footprint.RunRepository = (*SQLiteRepository)(nil)
	_ leaderboard.Repository  = (*SQLiteRepository)(nil)
)
