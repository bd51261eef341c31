package jobs

import (
	"context"

	"github.com/corpsite/corpsite/internal/rbac"
)

// grantStore is a read-only rbac.Store where principal 1 holds one role that
// either carries every permission or none.
type grantStore struct {
	perms []string
}

func rbacStoreFor(allowed bool) rbac.Store {
	if allowed {
		return grantStore{perms: rbac.CatalogNames()}
	}
	return grantStore{}
}

func (s grantStore) GetRole(context.Context, int64) (rbac.Role, error) {
	return rbac.Role{}, rbac.ErrNotFound
}

func (s grantStore) FindRoleByName(context.Context, string) (rbac.Role, error) {
	return rbac.Role{}, rbac.ErrNotFound
}

func (s grantStore) FindPermissionsByNames(context.Context, []string) ([]rbac.Permission, error) {
	return nil, nil
}

func (s grantStore) UpsertPermission(_ context.Context, name, description string) (rbac.Permission, error) {
	return rbac.Permission{Name: name, Description: description}, nil
}

func (s grantStore) ListPermissions(context.Context) ([]rbac.Permission, error) {
	return nil, nil
}

func (s grantStore) RolePermissions(context.Context, int64) ([]rbac.Permission, error) {
	return nil, nil
}

func (s grantStore) PrincipalRoles(_ context.Context, principalID int64) ([]rbac.HeldRole, error) {
	if principalID != 1 {
		return nil, nil
	}
	return []rbac.HeldRole{{Role: rbac.Role{ID: 1, Name: rbac.RoleSuperAdmin}, Permissions: s.perms}}, nil
}

func (s grantStore) WithTx(ctx context.Context, fn func(context.Context, rbac.TxStore) error) error {
	return fn(ctx, nil)
}
