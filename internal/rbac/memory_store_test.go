package rbac

import (
	"context"
	"sort"
	"time"
)

// memoryStore is an in-process Store. Writes made inside WithTx are staged on
// a copy and only published when fn succeeds.
type memoryStore struct {
	roles       map[int64]Role
	permissions map[int64]Permission
	grants      map[int64][]int64
	assignments map[int64][]int64
	nextID      int64

	// fail makes the named operation return the error.
	fail map[string]error
	// failAfterDelete aborts a replace after its delete step.
	failAfterDelete error
}

type memoryTx struct {
	grants          map[int64][]int64
	assignments     map[int64][]int64
	store           *memoryStore
	failAfterDelete error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		roles:       make(map[int64]Role),
		permissions: make(map[int64]Permission),
		grants:      make(map[int64][]int64),
		assignments: make(map[int64][]int64),
		fail:        make(map[string]error),
	}
}

// seedBuiltInRoles adds the five default roles and returns name to id.
func (m *memoryStore) seedBuiltInRoles() map[string]int64 {
	ids := make(map[string]int64)
	for _, name := range []string{RoleSuperAdmin, RoleAdmin, RoleAdminTier1, RoleAdminTier2, RoleUser} {
		ids[name] = m.addRole(name)
	}
	return ids
}

func (m *memoryStore) addRole(name string) int64 {
	m.nextID++
	now := time.Now()
	m.roles[m.nextID] = Role{ID: m.nextID, Name: name, CreatedAt: now, UpdatedAt: now}
	return m.nextID
}

func (m *memoryStore) addPermission(name string) int64 {
	m.nextID++
	m.permissions[m.nextID] = Permission{ID: m.nextID, Name: name}
	return m.nextID
}

func (m *memoryStore) err(op string) error {
	if err, ok := m.fail[op]; ok {
		return storeErr(op, err)
	}
	return nil
}

func (m *memoryStore) GetRole(_ context.Context, id int64) (Role, error) {
	if err := m.err("get role"); err != nil {
		return Role{}, err
	}
	role, ok := m.roles[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	return role, nil
}

func (m *memoryStore) FindRoleByName(_ context.Context, name string) (Role, error) {
	if err := m.err("find role"); err != nil {
		return Role{}, err
	}
	for _, role := range m.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return Role{}, ErrNotFound
}

func (m *memoryStore) FindPermissionsByNames(_ context.Context, names []string) ([]Permission, error) {
	if err := m.err("find permissions"); err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	var out []Permission
	for _, p := range m.sortedPermissions() {
		if _, ok := want[p.Name]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryStore) UpsertPermission(_ context.Context, name, description string) (Permission, error) {
	if err := m.err("upsert permission"); err != nil {
		return Permission{}, err
	}
	for id, p := range m.permissions {
		if p.Name == name {
			p.Description = description
			m.permissions[id] = p
			return p, nil
		}
	}
	id := m.addPermission(name)
	p := m.permissions[id]
	p.Description = description
	m.permissions[id] = p
	return p, nil
}

func (m *memoryStore) ListPermissions(_ context.Context) ([]Permission, error) {
	if err := m.err("list permissions"); err != nil {
		return nil, err
	}
	return m.sortedPermissions(), nil
}

func (m *memoryStore) RolePermissions(_ context.Context, roleID int64) ([]Permission, error) {
	if err := m.err("role permissions"); err != nil {
		return nil, err
	}
	var out []Permission
	for _, id := range m.grants[roleID] {
		out = append(out, m.permissions[id])
	}
	return out, nil
}

func (m *memoryStore) PrincipalRoles(_ context.Context, principalID int64) ([]HeldRole, error) {
	if err := m.err("principal roles"); err != nil {
		return nil, err
	}
	var out []HeldRole
	for _, roleID := range m.assignments[principalID] {
		held := HeldRole{Role: m.roles[roleID]}
		for _, pid := range m.grants[roleID] {
			held.Permissions = append(held.Permissions, m.permissions[pid].Name)
		}
		out = append(out, held)
	}
	return out, nil
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	if err := m.err("begin tx"); err != nil {
		return err
	}
	tx := &memoryTx{
		grants:          cloneLinks(m.grants),
		assignments:     cloneLinks(m.assignments),
		store:           m,
		failAfterDelete: m.failAfterDelete,
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.grants = tx.grants
	m.assignments = tx.assignments
	return nil
}

func (tx *memoryTx) ReplaceRoleGrants(_ context.Context, roleID int64, permissionIDs []int64) ([]int64, error) {
	delete(tx.grants, roleID)
	if tx.failAfterDelete != nil {
		return nil, storeErr("replace role grants", tx.failAfterDelete)
	}
	var inserted []int64
	for _, id := range permissionIDs {
		if _, ok := tx.store.permissions[id]; !ok {
			continue
		}
		inserted = append(inserted, id)
	}
	if len(inserted) > 0 {
		tx.grants[roleID] = inserted
	}
	return inserted, nil
}

func (tx *memoryTx) ReplaceRoleAssignments(_ context.Context, principalID int64, roleIDs []int64) ([]int64, error) {
	delete(tx.assignments, principalID)
	if tx.failAfterDelete != nil {
		return nil, storeErr("replace role assignments", tx.failAfterDelete)
	}
	var inserted []int64
	for _, id := range roleIDs {
		if _, ok := tx.store.roles[id]; !ok {
			continue
		}
		inserted = append(inserted, id)
	}
	if len(inserted) > 0 {
		tx.assignments[principalID] = inserted
	}
	return inserted, nil
}

func (m *memoryStore) sortedPermissions() []Permission {
	out := make([]Permission, 0, len(m.permissions))
	for _, p := range m.permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func cloneLinks(in map[int64][]int64) map[int64][]int64 {
	out := make(map[int64][]int64, len(in))
	for k, v := range in {
		out[k] = append([]int64(nil), v...)
	}
	return out
}

var _ Store = (*memoryStore)(nil)
