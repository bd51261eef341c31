package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corpsite/corpsite/internal/rbac"
)

const userColumns = `id, name, COALESCE(email, ''), status, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all users.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// CreateUser inserts an active user.
func (r *Repository) CreateUser(ctx context.Context, name, email string) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email) VALUES ($1, NULLIF($2, ''))
		RETURNING `+userColumns, name, email))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return User{}, ErrDuplicateEmail
	}
	return u, err
}

// SetStatus updates the account status.
func (r *Repository) SetStatus(ctx context.Context, id int64, status string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1
		RETURNING `+userColumns, id, status))
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, rbac.ErrNotFound
	}
	return u, err
}
