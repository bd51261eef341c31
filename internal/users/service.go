package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, name, email string) (User, error)
	SetStatus(ctx context.Context, id int64, status string) (User, error)
}

// Authorizer compares the rank of two principals.
type Authorizer interface {
	UserRoleLevel(ctx context.Context, principalID int64) (int, error)
}

// Service handles user business logic.
type Service struct {
	repo   RepositoryPort
	authz  Authorizer
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, authz Authorizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, authz: authz, logger: logger}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	return users, nil
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("users: get %d: %w", id, err)
	}
	return u, nil
}

// CreateUser registers an active principal with no roles.
func (s *Service) CreateUser(ctx context.Context, name, email string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.CreateUser(ctx, name, email)
	if err != nil {
		return User{}, fmt.Errorf("users: create: %w", err)
	}
	s.logger.Info("user created", slog.Int64("user_id", u.ID))
	return u, nil
}

// SetStatus enables or disables an account. The actor must strictly
// outrank the target and may not disable itself.
func (s *Service) SetStatus(ctx context.Context, actorID, id int64, status string) (User, error) {
	if !validStatus(status) {
		return User{}, ErrInvalidStatus
	}
	if actorID == id && status != StatusActive {
		return User{}, ErrSelfDisable
	}
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return User{}, fmt.Errorf("users: get %d: %w", id, err)
	}
	actorLevel, err := s.authz.UserRoleLevel(ctx, actorID)
	if err != nil {
		return User{}, err
	}
	targetLevel, err := s.authz.UserRoleLevel(ctx, id)
	if err != nil {
		return User{}, err
	}
	if actorLevel <= targetLevel {
		return User{}, ErrOutranked
	}
	u, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		return User{}, fmt.Errorf("users: set status %d: %w", id, err)
	}
	s.logger.Info("user status changed",
		slog.Int64("user_id", id),
		slog.String("status", status),
		slog.Int64("actor_id", actorID))
	return u, nil
}
