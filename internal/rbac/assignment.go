package rbac

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
)

// AssignPermissionsToRole replaces the full permission set granted to a role.
// Names that do not match a catalog row are dropped and reported in
// AssignResult.Dropped. The delete and insert run in one transaction, so
// readers never observe the role with an empty intermediate set.
func (s *Service) AssignPermissionsToRole(ctx context.Context, roleID int64, names []string) (AssignResult, error) {
	names = normalizeNames(names)
	log := s.logger.With(slog.Int64("role_id", roleID))

	perms, err := s.store.FindPermissionsByNames(ctx, names)
	if err != nil {
		log.Error("rbac resolve permissions", slog.Any("error", err))
		return AssignResult{}, fmt.Errorf("rbac: assign permissions to role %d: %w", roleID, err)
	}
	byID := make(map[int64]string, len(perms))
	ids := make([]int64, 0, len(perms))
	for _, p := range perms {
		if _, ok := byID[p.ID]; ok {
			continue
		}
		byID[p.ID] = p.Name
		ids = append(ids, p.ID)
	}

	var inserted []int64
	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		var err error
		inserted, err = tx.ReplaceRoleGrants(ctx, roleID, ids)
		return err
	})
	if err != nil {
		log.Error("rbac assign permissions to role", slog.Any("error", err))
		return AssignResult{}, fmt.Errorf("rbac: assign permissions to role %d: %w", roleID, err)
	}

	applied := make(map[string]struct{}, len(inserted))
	result := AssignResult{Applied: make([]string, 0, len(inserted))}
	for _, id := range inserted {
		name := byID[id]
		applied[name] = struct{}{}
		result.Applied = append(result.Applied, name)
	}
	for _, n := range names {
		if _, ok := applied[n]; !ok {
			result.Dropped = append(result.Dropped, n)
		}
	}
	if len(result.Dropped) > 0 {
		log.Warn("rbac dropped unknown permissions", slog.Any("dropped", result.Dropped))
	}
	return result, nil
}

// AssignRolesToUser replaces the full role set held by a principal. Role ids
// without a matching row are dropped and reported in AssignResult.Dropped.
func (s *Service) AssignRolesToUser(ctx context.Context, principalID int64, roleIDs []int64) (AssignResult, error) {
	roleIDs = uniqueIDs(roleIDs)
	log := s.logger.With(slog.Int64("principal_id", principalID))

	var inserted []int64
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		var err error
		inserted, err = tx.ReplaceRoleAssignments(ctx, principalID, roleIDs)
		return err
	})
	if err != nil {
		log.Error("rbac assign roles to user", slog.Any("error", err))
		return AssignResult{}, fmt.Errorf("rbac: assign roles to user %d: %w", principalID, err)
	}

	applied := make(map[int64]struct{}, len(inserted))
	result := AssignResult{Applied: make([]string, 0, len(inserted))}
	for _, id := range inserted {
		applied[id] = struct{}{}
		result.Applied = append(result.Applied, strconv.FormatInt(id, 10))
	}
	for _, id := range roleIDs {
		if _, ok := applied[id]; !ok {
			result.Dropped = append(result.Dropped, strconv.FormatInt(id, 10))
		}
	}
	if len(result.Dropped) > 0 {
		log.Warn("rbac dropped unknown roles", slog.Any("dropped", result.Dropped))
	}
	return result, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
