package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultAdminGroups are the catalog groups granted to the admin role.
var DefaultAdminGroups = []Group{GroupContent, GroupContactOffice, GroupBasic}

// BootstrapReport summarizes a SetupDefaultPermissions run.
type BootstrapReport struct {
	Upserted        int
	SuperAdminGrant *AssignResult
	AdminGrant      *AssignResult
}

// SetupDefaultPermissions upserts the whole permission catalog, then grants
// the entire catalog to the superadmin role and the default groups to the
// admin role, when those roles exist. Grants use replace semantics, so running
// it again converges to the same state.
func (s *Service) SetupDefaultPermissions(ctx context.Context) (BootstrapReport, error) {
	var report BootstrapReport
	for _, entry := range catalog {
		if _, err := s.store.UpsertPermission(ctx, entry.Name(), entry.Description); err != nil {
			s.logger.Error("rbac upsert permission", slog.String("permission", entry.Name()), slog.Any("error", err))
			return report, fmt.Errorf("rbac: upsert permission %s: %w", entry.Name(), err)
		}
		report.Upserted++
	}

	grants := []struct {
		role  string
		names []string
		out   **AssignResult
	}{
		{RoleSuperAdmin, CatalogNames(), &report.SuperAdminGrant},
		{RoleAdmin, GroupNames(DefaultAdminGroups...), &report.AdminGrant},
	}
	for _, g := range grants {
		role, err := s.store.FindRoleByName(ctx, g.role)
		if errors.Is(err, ErrNotFound) {
			s.logger.Info("rbac bootstrap role missing", slog.String("role", g.role))
			continue
		}
		if err != nil {
			s.logger.Error("rbac bootstrap find role", slog.String("role", g.role), slog.Any("error", err))
			return report, fmt.Errorf("rbac: find role %s: %w", g.role, err)
		}
		res, err := s.AssignPermissionsToRole(ctx, role.ID, g.names)
		if err != nil {
			return report, err
		}
		*g.out = &res
	}

	s.logger.Info("rbac catalog bootstrapped",
		slog.Int("permissions", report.Upserted),
		slog.Bool("superadmin", report.SuperAdminGrant != nil),
		slog.Bool("admin", report.AdminGrant != nil))
	return report, nil
}
