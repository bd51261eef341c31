package rbac

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store   *memoryStore
	service *Service
	roles   map[string]int64
}

// newFixture returns a service over a store holding the built-in roles and
// the full catalog, with no grants or assignments.
func newFixture(t *testing.T) fixture {
	t.Helper()
	store := newMemoryStore()
	roles := store.seedBuiltInRoles()
	for _, name := range CatalogNames() {
		store.addPermission(name)
	}
	return fixture{store: store, service: NewService(store, nil, discardLogger()), roles: roles}
}

func (f fixture) assign(t *testing.T, principalID int64, roles ...string) {
	t.Helper()
	ids := make([]int64, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, f.roles[r])
	}
	_, err := f.service.AssignRolesToUser(context.Background(), principalID, ids)
	require.NoError(t, err)
}

func (f fixture) grant(t *testing.T, role string, names ...string) AssignResult {
	t.Helper()
	res, err := f.service.AssignPermissionsToRole(context.Background(), f.roles[role], names)
	require.NoError(t, err)
	return res
}

func TestPermissionSetQuantifiers(t *testing.T) {
	set := NewPermissionSet("gallery:read", "Gallery:Create", "gallery:read")

	require.Equal(t, 2, set.Len())
	require.Equal(t, []string{"gallery:create", "gallery:read"}, set.Names())
	require.False(t, set.HasAny())
	require.True(t, set.HasAll())
	require.True(t, set.HasAny("system:backup", "gallery:read"))
	require.False(t, set.HasAll("system:backup", "gallery:read"))

	var empty PermissionSet
	require.False(t, empty.Has("gallery:read"))
	require.False(t, empty.HasAny())
	require.True(t, empty.HasAll())
}

func TestFindRoleByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role, err := f.service.FindRoleByName(ctx, " Admin ")
	require.NoError(t, err)
	require.Equal(t, f.roles[RoleAdmin], role.ID)

	_, err = f.service.FindRoleByName(ctx, "  ")
	require.ErrorIs(t, err, ErrRoleNameRequired)

	_, err = f.service.FindRoleByName(ctx, "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreFailureIsDistinguishable(t *testing.T) {
	f := newFixture(t)
	f.assign(t, 7, RoleAdmin)
	f.store.fail["principal roles"] = errors.New("connection reset")

	set, err := f.service.UserPermissions(context.Background(), 7)
	require.Error(t, err)
	require.True(t, IsStoreFailure(err))
	require.Zero(t, set.Len())

	ok, err := f.service.UserHasAnyPermission(context.Background(), 7, Key(ResourceGallery, ActionRead))
	require.Error(t, err)
	require.False(t, ok)

	// A principal with no roles is a clean "no", not a failure.
	delete(f.store.fail, "principal roles")
	set, err = f.service.UserPermissions(context.Background(), 99)
	require.NoError(t, err)
	require.Zero(t, set.Len())
	require.False(t, IsStoreFailure(ErrNotFound))
}
