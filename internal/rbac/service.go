package rbac

import (
	"context"
	"log/slog"
)

// Service orchestrates RBAC operations over a Store.
type Service struct {
	store     Store
	hierarchy *Hierarchy
	logger    *slog.Logger
}

// NewService constructs a Service. A nil hierarchy selects the default role
// table and a nil logger selects slog.Default.
func NewService(store Store, hierarchy *Hierarchy, logger *slog.Logger) *Service {
	if hierarchy == nil {
		hierarchy = DefaultHierarchy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, hierarchy: hierarchy, logger: logger}
}

// Hierarchy returns the role level table used by the service.
func (s *Service) Hierarchy() *Hierarchy {
	return s.hierarchy
}

// ListPermissions returns all persisted permissions ordered by name.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	perms, err := s.store.ListPermissions(ctx)
	if err != nil {
		s.logger.Error("rbac list permissions", slog.Any("error", err))
		return nil, err
	}
	return perms, nil
}

// GetRole fetches a role by id.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.store.GetRole(ctx, id)
}

// FindRoleByName fetches a role by name.
func (s *Service) FindRoleByName(ctx context.Context, name string) (Role, error) {
	name = NormalizeName(name)
	if name == "" {
		return Role{}, ErrRoleNameRequired
	}
	return s.store.FindRoleByName(ctx, name)
}
