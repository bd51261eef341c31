package rbac

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corpsite/corpsite/internal/platform/db"
)

// Migration is one versioned schema change.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all RBAC migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users table",
			SQL: `
				CREATE TABLE IF NOT EXISTS users (
					id BIGSERIAL PRIMARY KEY,
					name TEXT NOT NULL DEFAULT '',
					email TEXT UNIQUE,
					status TEXT NOT NULL DEFAULT 'active',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			Version:     2,
			Description: "Create roles and permissions tables",
			SQL: `
				CREATE TABLE IF NOT EXISTS roles (
					id BIGSERIAL PRIMARY KEY,
					name TEXT NOT NULL UNIQUE,
					description TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS permissions (
					id BIGSERIAL PRIMARY KEY,
					name TEXT NOT NULL UNIQUE,
					description TEXT
				);
			`,
		},
		{
			Version:     3,
			Description: "Create role_permissions and user_roles join tables",
			SQL: `
				CREATE TABLE IF NOT EXISTS role_permissions (
					role_id BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
					permission_id BIGINT NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (role_id, permission_id)
				);

				CREATE TABLE IF NOT EXISTS user_roles (
					user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					role_id BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (user_id, role_id)
				);

				CREATE INDEX IF NOT EXISTS idx_user_roles_role_id ON user_roles(role_id);
				CREATE INDEX IF NOT EXISTS idx_role_permissions_permission_id ON role_permissions(permission_id);
			`,
		},
		{
			Version:     4,
			Description: "Seed built-in roles",
			SQL: `
				INSERT INTO roles (name, description) VALUES
					('superadmin', 'Full access to every dashboard feature'),
					('admin', 'Content, contact and office management'),
					('admin-tier-1', 'Senior editor'),
					('admin-tier-2', 'Editor'),
					('user', 'Basic dashboard access')
				ON CONFLICT (name) DO NOTHING;
			`,
		},
	}
}

// Migrate applies every migration not yet recorded in schema_migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return 0, fmt.Errorf("rbac: create schema_migrations: %w", err)
	}

	applied := 0
	for _, m := range GetMigrations() {
		ran := false
		err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
			ran = false
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return nil
			}
			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`, m.Version, m.Description); err != nil {
				return err
			}
			ran = true
			return nil
		})
		if err != nil {
			return applied, fmt.Errorf("rbac: migration %d (%s): %w", m.Version, m.Description, err)
		}
		if ran {
			applied++
		}
	}
	return applied, nil
}
