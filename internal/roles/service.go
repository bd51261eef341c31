package roles

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corpsite/corpsite/internal/rbac"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, name, description string) (Role, error)
	DeleteRole(ctx context.Context, id int64) error
}

// Authorizer answers rank questions about the acting principal.
type Authorizer interface {
	CanManage(ctx context.Context, actorID int64, targetRole string) (bool, error)
}

// Service handles role business logic.
type Service struct {
	repo      RepositoryPort
	authz     Authorizer
	hierarchy *rbac.Hierarchy
	logger    *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, authz Authorizer, hierarchy *rbac.Hierarchy, logger *slog.Logger) *Service {
	if hierarchy == nil {
		hierarchy = rbac.DefaultHierarchy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, authz: authz, hierarchy: hierarchy, logger: logger}
}

// ListRoles returns all roles with their levels, highest level first.
func (s *Service) ListRoles(ctx context.Context) ([]RoleView, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	views := make([]RoleView, 0, len(roles))
	for _, role := range roles {
		views = append(views, s.view(role))
	}
	sortByLevel(views)
	return views, nil
}

// CreateRole adds a role. Names outside the level table get level 0.
func (s *Service) CreateRole(ctx context.Context, name, description string) (RoleView, error) {
	name = rbac.NormalizeName(name)
	if name == "" {
		return RoleView{}, rbac.ErrRoleNameRequired
	}
	role, err := s.repo.CreateRole(ctx, name, description)
	if err != nil {
		return RoleView{}, fmt.Errorf("roles: create %s: %w", name, err)
	}
	s.logger.Info("role created", slog.Int64("role_id", role.ID), slog.String("role", role.Name))
	return s.view(role), nil
}

// DeleteRole removes a custom role the actor strictly outranks.
func (s *Service) DeleteRole(ctx context.Context, actorID, id int64) error {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return fmt.Errorf("roles: get %d: %w", id, err)
	}
	if s.builtIn(role.Name) {
		return ErrBuiltIn
	}
	ok, err := s.authz.CanManage(ctx, actorID, role.Name)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOutranked
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return fmt.Errorf("roles: delete %d: %w", id, err)
	}
	s.logger.Info("role deleted", slog.Int64("role_id", id), slog.String("role", role.Name), slog.Int64("actor_id", actorID))
	return nil
}

func (s *Service) view(role Role) RoleView {
	return RoleView{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Level:       s.hierarchy.Level(role.Name),
		BuiltIn:     s.builtIn(role.Name),
		CreatedAt:   role.CreatedAt,
	}
}

func (s *Service) builtIn(name string) bool {
	_, ok := s.hierarchy.Levels()[rbac.NormalizeName(name)]
	return ok
}
