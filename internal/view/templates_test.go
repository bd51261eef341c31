package view

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/corpsite/corpsite/internal/rbac"
	"github.com/corpsite/corpsite/internal/rbac/snapshot"
)

type resolverStub struct {
	roles []string
	perms []string
	err   error
}

func (s resolverStub) HeldRoles(context.Context, int64) ([]rbac.HeldRole, error) {
	if s.err != nil {
		return nil, s.err
	}
	held := make([]rbac.HeldRole, 0, len(s.roles))
	for i, name := range s.roles {
		held = append(held, rbac.HeldRole{Role: rbac.Role{ID: int64(i + 1), Name: name}, Permissions: s.perms})
	}
	return held, nil
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err, "Templates should parse without error")
	require.NotNil(t, engine)
}

func TestRenderWithoutSnapshotDenies(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, engine.Render(rr, req, "nav", TemplateData{}))
	require.NotContains(t, rr.Body.String(), "<li>")
	require.Contains(t, rr.Body.String(), `data-level="0"`)
}

func TestRenderGatesByPermission(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	s := snapshot.New(nil, 7, []string{rbac.RoleAdmin}, []string{"dashboard:read", "gallery:read", "message:read"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(snapshot.WithSnapshot(req.Context(), s))
	rr := httptest.NewRecorder()
	require.NoError(t, engine.Render(rr, req, "nav", TemplateData{PrincipalID: 7, CurrentPath: "/admin"}))

	body := rr.Body.String()
	require.Contains(t, body, "/admin/gallery")
	require.Contains(t, body, "/admin/messages")
	require.Contains(t, body, `class="active"`)
	require.Contains(t, body, `data-level="80"`)
	require.NotContains(t, body, "/admin/sliders")
	require.NotContains(t, body, "/admin/users")
	require.NotContains(t, body, "/admin/system")
}

func TestNavHandler(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	serve := func(resolver snapshot.Resolver, principalID int64) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		NewHandler(logger, engine, resolver, nil).MountRoutes(r)
		req := httptest.NewRequest(http.MethodGet, "/me/nav", nil)
		if principalID > 0 {
			req = req.WithContext(rbac.WithPrincipal(req.Context(), principalID))
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	rr := serve(resolverStub{roles: []string{rbac.RoleSuperAdmin}, perms: rbac.CatalogNames()}, 1)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Body.String(), "/admin/system")
	require.Contains(t, rr.Body.String(), `data-principal="1"`)

	require.Equal(t, http.StatusUnauthorized, serve(resolverStub{}, 0).Code)
	require.Equal(t, http.StatusInternalServerError, serve(resolverStub{err: errors.New("db down")}, 1).Code)
}
