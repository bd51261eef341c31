package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/corpsite/corpsite/internal/rbac"
)

type memoryRepo struct {
	users  map[int64]User
	nextID int64
	err    error
}

func newMemoryRepo(names ...string) *memoryRepo {
	repo := &memoryRepo{users: make(map[int64]User)}
	for _, n := range names {
		_, _ = repo.CreateUser(context.Background(), n, "")
	}
	return repo
}

func (m *memoryRepo) ListUsers(context.Context) ([]User, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]User, 0, len(m.users))
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memoryRepo) GetUser(_ context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, rbac.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) CreateUser(_ context.Context, name, email string) (User, error) {
	for _, u := range m.users {
		if email != "" && u.Email == email {
			return User{}, ErrDuplicateEmail
		}
	}
	m.nextID++
	now := time.Now()
	u := User{ID: m.nextID, Name: name, Email: email, Status: StatusActive, CreatedAt: now, UpdatedAt: now}
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryRepo) SetStatus(_ context.Context, id int64, status string) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, rbac.ErrNotFound
	}
	u.Status = status
	m.users[id] = u
	return u, nil
}

type levelAuthz map[int64]int

func (a levelAuthz) UserRoleLevel(_ context.Context, id int64) (int, error) {
	return a[id], nil
}

func newService(repo *memoryRepo) *Service {
	// 1 superadmin, 2 admin, 3 plain user
	authz := levelAuthz{1: 100, 2: 80, 3: 10}
	return NewService(repo, authz, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)

	u, err := svc.CreateUser(context.Background(), "  Dana ", " Dana@Example.COM ")
	require.NoError(t, err)
	require.Equal(t, "Dana", u.Name)
	require.Equal(t, "dana@example.com", u.Email)
	require.True(t, u.IsActive())

	_, err = svc.CreateUser(context.Background(), "Other", "dana@example.com")
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSetStatusRules(t *testing.T) {
	repo := newMemoryRepo("root", "admin", "viewer")
	svc := newService(repo)
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, 1, 3, "banned")
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.SetStatus(ctx, 2, 2, StatusDisabled)
	require.ErrorIs(t, err, ErrSelfDisable)

	_, err = svc.SetStatus(ctx, 2, 1, StatusDisabled)
	require.ErrorIs(t, err, ErrOutranked)

	_, err = svc.SetStatus(ctx, 1, 99, StatusDisabled)
	require.ErrorIs(t, err, rbac.ErrNotFound)

	u, err := svc.SetStatus(ctx, 2, 3, StatusDisabled)
	require.NoError(t, err)
	require.False(t, u.IsActive())

	u, err = svc.SetStatus(ctx, 1, 3, StatusActive)
	require.NoError(t, err)
	require.True(t, u.IsActive())
}

func TestListUsersFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.err = errors.New("db down")

	_, err := newService(repo).ListUsers(context.Background())
	require.ErrorIs(t, err, repo.err)
}

func TestHandlerRequiresPermission(t *testing.T) {
	h := NewHandler(nil, newService(newMemoryRepo("root")), rbac.Middleware{})
	r := chi.NewRouter()
	h.MountRoutes(r)

	// no principal: the permission check denies before touching the service
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/users", nil),
		httptest.NewRequest(http.MethodGet, "/users/1", nil),
		httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"x"}`)),
		httptest.NewRequest(http.MethodPut, "/users/1/status", strings.NewReader(`{"status":"disabled"}`)),
	} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		require.Equal(t, http.StatusForbidden, rr.Code, req.URL.Path)
	}
}
