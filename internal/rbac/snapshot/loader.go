package snapshot

import (
	"context"
	"fmt"

	"github.com/corpsite/corpsite/internal/rbac"
)

// Resolver is the subset of rbac.Service a snapshot is loaded from.
type Resolver interface {
	HeldRoles(ctx context.Context, principalID int64) ([]rbac.HeldRole, error)
}

// Load builds a snapshot from a single read of the principal's held roles, so
// the roles and permissions it carries always come from the same state.
func Load(ctx context.Context, resolver Resolver, h *rbac.Hierarchy, principalID int64) (*Snapshot, error) {
	held, err := resolver.HeldRoles(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("snapshot: load principal %d: %w", principalID, err)
	}
	roles := make([]string, 0, len(held))
	perms := rbac.NewPermissionSet()
	for _, r := range held {
		roles = append(roles, r.Name)
		perms.Add(r.Permissions...)
	}
	return New(h, principalID, roles, perms.Names()), nil
}
