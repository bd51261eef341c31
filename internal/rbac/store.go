package rbac

import "context"

// Store is the persistence contract of the authorization core.
type Store interface {
	GetRole(ctx context.Context, id int64) (Role, error)
	FindRoleByName(ctx context.Context, name string) (Role, error)
	// FindPermissionsByNames returns the matching subset only; unknown names
	// are silently absent from the result.
	FindPermissionsByNames(ctx context.Context, names []string) ([]Permission, error)
	UpsertPermission(ctx context.Context, name, description string) (Permission, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	RolePermissions(ctx context.Context, roleID int64) ([]Permission, error)
	// PrincipalRoles returns every role held by the principal with each role's
	// granted permission names, in one traversal.
	PrincipalRoles(ctx context.Context, principalID int64) ([]HeldRole, error)
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
}

// TxStore exposes the replace writes, which must run inside one transaction.
type TxStore interface {
	// ReplaceRoleGrants deletes every grant of roleID and inserts the given
	// permissions. Ids with no matching permission row are skipped. It returns
	// the ids actually inserted.
	ReplaceRoleGrants(ctx context.Context, roleID int64, permissionIDs []int64) ([]int64, error)
	// ReplaceRoleAssignments deletes every role held by principalID and
	// inserts the given roles. Ids with no matching role row are skipped. It
	// returns the ids actually inserted.
	ReplaceRoleAssignments(ctx context.Context, principalID int64, roleIDs []int64) ([]int64, error)
}
