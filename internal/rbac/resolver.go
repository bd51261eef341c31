package rbac

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// RolePermissions returns the permissions currently granted to a role.
func (s *Service) RolePermissions(ctx context.Context, roleID int64) (PermissionSet, error) {
	perms, err := s.store.RolePermissions(ctx, roleID)
	if err != nil {
		s.logger.Error("rbac role permissions", slog.Int64("role_id", roleID), slog.Any("error", err))
		return PermissionSet{}, fmt.Errorf("rbac: role %d permissions: %w", roleID, err)
	}
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set.Add(p.Name)
	}
	return set, nil
}

// UserPermissions returns the deduplicated union of the permissions granted by
// every role the principal currently holds. It is recomputed on every call.
func (s *Service) UserPermissions(ctx context.Context, principalID int64) (PermissionSet, error) {
	held, err := s.HeldRoles(ctx, principalID)
	if err != nil {
		return PermissionSet{}, err
	}
	set := make(PermissionSet)
	for _, r := range held {
		set.Add(r.Permissions...)
	}
	return set, nil
}

// UserRoles returns the names of the roles the principal holds.
func (s *Service) UserRoles(ctx context.Context, principalID int64) ([]string, error) {
	held, err := s.HeldRoles(ctx, principalID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(held))
	for _, r := range held {
		names = append(names, r.Name)
	}
	return names, nil
}

// UserHasPermission reports whether the principal holds key.
func (s *Service) UserHasPermission(ctx context.Context, principalID int64, key PermissionKey) (bool, error) {
	set, err := s.UserPermissions(ctx, principalID)
	if err != nil {
		return false, err
	}
	return set.Has(key.String()), nil
}

// UserHasAnyPermission reports whether the principal holds at least one of
// keys. It is false when keys is empty.
func (s *Service) UserHasAnyPermission(ctx context.Context, principalID int64, keys ...PermissionKey) (bool, error) {
	if len(keys) == 0 {
		return false, nil
	}
	set, err := s.UserPermissions(ctx, principalID)
	if err != nil {
		return false, err
	}
	return set.HasAny(keyNames(keys)...), nil
}

// UserHasAllPermissions reports whether the principal holds every key. It is
// true when keys is empty.
func (s *Service) UserHasAllPermissions(ctx context.Context, principalID int64, keys ...PermissionKey) (bool, error) {
	if len(keys) == 0 {
		return true, nil
	}
	set, err := s.UserPermissions(ctx, principalID)
	if err != nil {
		return false, err
	}
	return set.HasAll(keyNames(keys)...), nil
}

// RoleLevel returns the hierarchy level of a role name.
func (s *Service) RoleLevel(name string) int {
	return s.hierarchy.Level(name)
}

// IsHigherRole reports whether role a strictly outranks role b.
func (s *Service) IsHigherRole(a, b string) bool {
	return s.hierarchy.IsHigher(a, b)
}

// UserRoleLevel returns the highest level among the principal's roles, or 0
// when the principal holds none.
func (s *Service) UserRoleLevel(ctx context.Context, principalID int64) (int, error) {
	roles, err := s.UserRoles(ctx, principalID)
	if err != nil {
		return 0, err
	}
	return s.hierarchy.MaxLevel(roles), nil
}

// CanManage reports whether the actor strictly outranks targetRole.
func (s *Service) CanManage(ctx context.Context, actorID int64, targetRole string) (bool, error) {
	level, err := s.UserRoleLevel(ctx, actorID)
	if err != nil {
		return false, err
	}
	return level > s.hierarchy.Level(targetRole), nil
}

// CanManagePrincipal reports whether the actor strictly outranks every role
// the target currently holds. The two levels are read concurrently.
func (s *Service) CanManagePrincipal(ctx context.Context, actorID, targetID int64) (bool, error) {
	var actorLevel, targetLevel int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		actorLevel, err = s.UserRoleLevel(gctx, actorID)
		return err
	})
	g.Go(func() error {
		var err error
		targetLevel, err = s.UserRoleLevel(gctx, targetID)
		return err
	})
	if err := g.Wait(); err != nil {
		return false, err
	}
	return actorLevel > targetLevel, nil
}

// HeldRoles returns the principal's roles with the permissions each grants,
// read in one traversal so roles and permissions describe the same state.
func (s *Service) HeldRoles(ctx context.Context, principalID int64) ([]HeldRole, error) {
	held, err := s.store.PrincipalRoles(ctx, principalID)
	if err != nil {
		s.logger.Error("rbac principal roles", slog.Int64("principal_id", principalID), slog.Any("error", err))
		return nil, fmt.Errorf("rbac: principal %d roles: %w", principalID, err)
	}
	return held, nil
}
