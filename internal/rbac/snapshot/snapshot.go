// Package snapshot holds a process-local, read-only copy of one principal's
// roles and permissions so presentation code can gate itself without a store
// round-trip.
//
// A Snapshot is advisory. It is never refreshed automatically: callers
// re-initialize it after login or a profile refresh, and any change made in
// the store in between is not visible until then. The authoritative check is
// always the store-backed rbac.Service.
package snapshot

import (
	"context"
	"sync"

	"github.com/corpsite/corpsite/internal/rbac"
)

// Snapshot answers permission and role queries for one principal.
type Snapshot struct {
	hierarchy *rbac.Hierarchy

	mu          sync.RWMutex
	principalID int64
	roles       []string
	roleSet     map[string]struct{}
	perms       rbac.PermissionSet
}

// New builds a snapshot. A nil hierarchy selects the default role table.
func New(h *rbac.Hierarchy, principalID int64, roles, permissions []string) *Snapshot {
	if h == nil {
		h = rbac.DefaultHierarchy()
	}
	s := &Snapshot{hierarchy: h}
	s.Initialize(principalID, roles, permissions)
	return s
}

// Initialize replaces the stored roles and permissions.
func (s *Snapshot) Initialize(principalID int64, roles, permissions []string) {
	roleSet := make(map[string]struct{}, len(roles))
	kept := make([]string, 0, len(roles))
	for _, r := range roles {
		r = rbac.NormalizeName(r)
		if r == "" {
			continue
		}
		if _, ok := roleSet[r]; ok {
			continue
		}
		roleSet[r] = struct{}{}
		kept = append(kept, r)
	}
	perms := rbac.NewPermissionSet(permissions...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.principalID = principalID
	s.roles = kept
	s.roleSet = roleSet
	s.perms = perms
}

// PrincipalID returns the principal the snapshot was taken for.
func (s *Snapshot) PrincipalID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principalID
}

// HasPermission reports whether the snapshot holds name.
func (s *Snapshot) HasPermission(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.perms.Has(name)
}

// HasAnyPermission is false when names is empty.
func (s *Snapshot) HasAnyPermission(names ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.perms.HasAny(names...)
}

// HasAllPermissions is true when names is empty.
func (s *Snapshot) HasAllPermissions(names ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.perms.HasAll(names...)
}

// Can is HasPermission for a typed key.
func (s *Snapshot) Can(key rbac.PermissionKey) bool {
	return s.HasPermission(key.String())
}

// HasRole reports whether the snapshot holds role.
func (s *Snapshot) HasRole(role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roleSet[rbac.NormalizeName(role)]
	return ok
}

// HasAnyRole is false when roles is empty.
func (s *Snapshot) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if s.HasRole(r) {
			return true
		}
	}
	return false
}

// UserRoleLevel returns the highest level among the held roles.
func (s *Snapshot) UserRoleLevel() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hierarchy.MaxLevel(s.roles)
}

// Roles returns the held role names.
func (s *Snapshot) Roles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.roles))
	copy(out, s.roles)
	return out
}

// Permissions returns the held permissions, sorted.
func (s *Snapshot) Permissions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.perms.Names()
}

type contextKey struct{}

// WithSnapshot binds s to ctx for render functions.
func WithSnapshot(ctx context.Context, s *Snapshot) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the snapshot bound to ctx, or nil.
func FromContext(ctx context.Context) *Snapshot {
	s, _ := ctx.Value(contextKey{}).(*Snapshot)
	return s
}
