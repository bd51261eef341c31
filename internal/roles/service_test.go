package roles

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
	roles  map[int64]Role
	nextID int64
	err    error
}

func newMemoryRepo(names ...string) *memoryRepo {
	repo := &memoryRepo{roles: make(map[int64]Role)}
	for _, n := range names {
		_, _ = repo.CreateRole(context.Background(), n, "")
	}
	return repo
}

func (m *memoryRepo) ListRoles(context.Context) ([]Role, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Role, 0, len(m.roles))
	for id := int64(1); id <= m.nextID; id++ {
		if r, ok := m.roles[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRepo) GetRole(_ context.Context, id int64) (Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return Role{}, rbac.ErrNotFound
	}
	return r, nil
}

func (m *memoryRepo) CreateRole(_ context.Context, name, description string) (Role, error) {
	for _, r := range m.roles {
		if r.Name == name {
			return Role{}, ErrDuplicateName
		}
	}
	m.nextID++
	r := Role{ID: m.nextID, Name: name, Description: description, CreatedAt: time.Now()}
	m.roles[r.ID] = r
	return r, nil
}

func (m *memoryRepo) DeleteRole(_ context.Context, id int64) error {
	if _, ok := m.roles[id]; !ok {
		return rbac.ErrNotFound
	}
	delete(m.roles, id)
	return nil
}

// levelAuthz grants management when the actor level exceeds the role level.
type levelAuthz struct {
	levels map[int64]int
	h      *rbac.Hierarchy
}

func (a levelAuthz) CanManage(_ context.Context, actorID int64, role string) (bool, error) {
	return a.levels[actorID] > a.h.Level(role), nil
}

func newService(repo *memoryRepo) *Service {
	h := rbac.DefaultHierarchy()
	authz := levelAuthz{levels: map[int64]int{1: 100, 2: 60}, h: h}
	return NewService(repo, authz, h, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestListRolesOrdersByLevel(t *testing.T) {
	svc := newService(newMemoryRepo("user", "editor", "superadmin", "admin"))

	views, err := svc.ListRoles(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, v.Name)
	}
	require.Equal(t, []string{"superadmin", "admin", "user", "editor"}, names)
	require.True(t, views[0].BuiltIn)
	require.False(t, views[3].BuiltIn)
	require.Zero(t, views[3].Level)
}

func TestCreateRoleNormalizesName(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)

	view, err := svc.CreateRole(context.Background(), "  Newsroom ", "press team")
	require.NoError(t, err)
	require.Equal(t, "newsroom", view.Name)

	_, err = svc.CreateRole(context.Background(), "NEWSROOM", "")
	require.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.CreateRole(context.Background(), " ", "")
	require.ErrorIs(t, err, rbac.ErrRoleNameRequired)
}

func TestDeleteRoleRules(t *testing.T) {
	repo := newMemoryRepo("admin", "newsroom")
	svc := newService(repo)
	ctx := context.Background()

	require.ErrorIs(t, svc.DeleteRole(ctx, 1, 1), ErrBuiltIn)
	require.ErrorIs(t, svc.DeleteRole(ctx, 1, 99), rbac.ErrNotFound)
	require.NoError(t, svc.DeleteRole(ctx, 2, 2))
	require.Len(t, repo.roles, 1)
}

func TestHandlerRoutes(t *testing.T) {
	repo := newMemoryRepo("superadmin", "admin")
	svc := newService(repo)
	mw := rbac.Middleware{Service: nil}
	h := NewHandler(nil, svc, mw)

	r := chi.NewRouter()
	h.MountRoutes(r)

	// no principal: the permission check denies before touching the service
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/roles", nil))
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/roles", strings.NewReader(`{"name":"x"}`)))
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestListRolesFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.err = errors.New("db down")

	_, err := newService(repo).ListRoles(context.Background())
	require.ErrorIs(t, err, repo.err)
}
