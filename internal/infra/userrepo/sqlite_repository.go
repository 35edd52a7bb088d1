package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/carbonlens/internal/domain/auth"
)

// SQLiteRepository persists users in an embedded SQLite database.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a new repository over db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the users table when missing.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			email         TEXT NOT NULL UNIQUE,
			nickname      TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create users: %w", err)
	}
	return nil
}

// Create inserts a new user row.
func (r *SQLiteRepository) Create(ctx context.Context, email, nickname, passwordHash string) (auth.User, error) {
	created := r.now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (email, nickname, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, email, nickname, passwordHash, created.UnixNano())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return auth.User{}, auth.ErrEmailExists
		}
		return auth.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return auth.User{}, err
	}
	return auth.User{
		ID:           id,
		Email:        email,
		Nickname:     nickname,
		PasswordHash: passwordHash,
		CreatedAt:    time.Unix(0, created.UnixNano()).UTC(),
	}, nil
}

// GetByEmail fetches a user by email.
func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	return r.getOne(ctx, `
		SELECT id, email, nickname, password_hash, created_at
		FROM users
		WHERE email = ?
	`, email)
}

// GetByID fetches by primary key.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (auth.User, bool, error) {
	return r.getOne(ctx, `
		SELECT id, email, nickname, password_hash, created_at
		FROM users
		WHERE id = ?
	`, id)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg any) (auth.User, bool, error) {
	var (
		user    auth.User
		created int64
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.Nickname, &user.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, false, nil
	}
	if err != nil {
		return auth.User{}, false, err
	}
	user.CreatedAt = time.Unix(0, created).UTC()
	return user, true, nil
}

var _ auth.Repository = (*SQLiteRepository)(nil)
