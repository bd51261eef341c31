package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corpsite/corpsite/internal/platform/db"
)

const pgForeignKeyViolation = "23503"

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGRepository implements Store using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GetRole fetches a role by id.
func (r *PGRepository) GetRole(ctx context.Context, id int64) (Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''), created_at, updated_at
		FROM roles WHERE id = $1`, id))
	return role, storeErr("get role", err)
}

// FindRoleByName fetches a role by its unique name.
func (r *PGRepository) FindRoleByName(ctx context.Context, name string) (Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''), created_at, updated_at
		FROM roles WHERE name = $1`, name))
	return role, storeErr("find role by name", err)
}

// FindPermissionsByNames returns the permissions whose names are in names.
func (r *PGRepository) FindPermissionsByNames(ctx context.Context, names []string) ([]Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}
	perms, err := queryPermissions(ctx, r.pool, `
		SELECT id, name, COALESCE(description, '')
		FROM permissions WHERE name = ANY($1) ORDER BY name`, names)
	return perms, storeErr("find permissions by names", err)
}

// UpsertPermission inserts a permission or refreshes its description.
func (r *PGRepository) UpsertPermission(ctx context.Context, name, description string) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (name, description)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING id, name, COALESCE(description, '')`, name, description).Scan(&p.ID, &p.Name, &p.Description)
	return p, storeErr("upsert permission", err)
}

// ListPermissions returns all permissions ordered by name.
func (r *PGRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	perms, err := queryPermissions(ctx, r.pool, `
		SELECT id, name, COALESCE(description, '') FROM permissions ORDER BY name`)
	return perms, storeErr("list permissions", err)
}

// RolePermissions returns the permissions currently granted to a role.
func (r *PGRepository) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	perms, err := queryPermissions(ctx, r.pool, `
		SELECT p.id, p.name, COALESCE(p.description, '')
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.name`, roleID)
	return perms, storeErr("role permissions", err)
}

// PrincipalRoles returns roles held by a principal with their permission names.
func (r *PGRepository) PrincipalRoles(ctx context.Context, principalID int64) ([]HeldRole, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.name, COALESCE(r.description, ''), r.created_at, r.updated_at, p.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		LEFT JOIN role_permissions rp ON rp.role_id = r.id
		LEFT JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
		ORDER BY r.id, p.name`, principalID)
	if err != nil {
		return nil, storeErr("principal roles", err)
	}
	defer rows.Close()

	var held []HeldRole
	for rows.Next() {
		var role Role
		var perm *string
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt, &perm); err != nil {
			return nil, storeErr("principal roles", err)
		}
		if n := len(held); n == 0 || held[n-1].ID != role.ID {
			held = append(held, HeldRole{Role: role})
		}
		if perm != nil {
			last := &held[len(held)-1]
			last.Permissions = append(last.Permissions, *perm)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("principal roles", err)
	}
	return held, nil
}

// WithTx runs fn inside a repeatable-read transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx})
	})
}

type txRepo struct {
	q querier
}

// ReplaceRoleGrants implements TxStore.
func (t *txRepo) ReplaceRoleGrants(ctx context.Context, roleID int64, permissionIDs []int64) ([]int64, error) {
	if _, err := t.q.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return nil, storeErr("delete role grants", err)
	}
	if len(permissionIDs) == 0 {
		return nil, nil
	}
	ids, err := queryIDs(ctx, t.q, `
		INSERT INTO role_permissions (role_id, permission_id)
		SELECT $1, p.id FROM permissions p WHERE p.id = ANY($2)
		ON CONFLICT DO NOTHING
		RETURNING permission_id`, roleID, permissionIDs)
	return ids, storeErr("insert role grants", err)
}

// ReplaceRoleAssignments implements TxStore.
func (t *txRepo) ReplaceRoleAssignments(ctx context.Context, principalID int64, roleIDs []int64) ([]int64, error) {
	if _, err := t.q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, principalID); err != nil {
		return nil, storeErr("delete role assignments", err)
	}
	if len(roleIDs) == 0 {
		return nil, nil
	}
	ids, err := queryIDs(ctx, t.q, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, r.id FROM roles r WHERE r.id = ANY($2)
		ON CONFLICT DO NOTHING
		RETURNING role_id`, principalID, roleIDs)
	return ids, storeErr("insert role assignments", err)
}

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, ErrNotFound
	}
	return role, err
}

func queryPermissions(ctx context.Context, q querier, sql string, args ...any) ([]Permission, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func queryIDs(ctx context.Context, q querier, sql string, args ...any) ([]int64, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, mapPgError(rows.Err())
}

// mapPgError turns a foreign key violation (the role or principal vanished)
// into ErrNotFound.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return ErrNotFound
	}
	return err
}

var (
	_ Store   = (*PGRepository)(nil)
	_ TxStore = (*txRepo)(nil)
)
