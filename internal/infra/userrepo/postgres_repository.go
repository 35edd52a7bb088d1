package userrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/carbonlens/internal/domain/auth"
)

const postgresUsersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	nickname      TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const userColumns = `id, email, nickname, password_hash, created_at`

// PostgresRepository stores accounts in the same database as footprint runs.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the users table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresUsersSchema); err != nil {
		return fmt.Errorf("create users: %w", err)
	}
	return nil
}

// Create inserts a user. A conflicting email returns no row, which maps to auth.ErrEmailExists.
func (r *PostgresRepository) Create(ctx context.Context, email, nickname, passwordHash string) (auth.User, error) {
	user, found, err := r.queryOne(ctx, `
		INSERT INTO users (email, nickname, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
		RETURNING `+userColumns, email, nickname, passwordHash)
	if err != nil {
		return auth.User{}, fmt.Errorf("insert user: %w", err)
	}
	if !found {
		return auth.User{}, auth.ErrEmailExists
	}
	return user, nil
}

// GetByEmail fetches a user by normalized email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByID fetches by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (auth.User, bool, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (auth.User, bool, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return auth.User{}, false, err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, false, nil
	}
	if err != nil {
		return auth.User{}, false, err
	}
	return row.user(), true, nil
}

// userRow mirrors userColumns for pgx.RowToStructByName.
type userRow struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	Nickname     string    `db:"nickname"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) user() auth.User {
	return auth.User{
		ID:           r.ID,
		Email:        r.Email,
		Nickname:     r.Nickname,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

var _ auth.Repository = (*PostgresRepository)(nil)
