package snapshot

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/corpsite/corpsite/internal/rbac"
)

type opsRecorder struct{ ops []string }

func (r *opsRecorder) RecordSnapshot(op string) { r.ops = append(r.ops, op) }

func newTestRouter(t *testing.T, withStore bool) (http.Handler, *opsRecorder) {
	t.Helper()
	var store *RedisStore
	if withStore {
		store, _ = newRedisStore(t, time.Minute)
	}
	rec := &opsRecorder{}
	resolver := resolverStub{roles: []string{"admin"}, perms: []string{"gallery:read"}}
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), resolver, nil, store).WithRecorder(rec)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r, rec
}

func call(router http.Handler, method, path string, principalID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if principalID > 0 {
		req = req.WithContext(rbac.WithPrincipal(req.Context(), principalID))
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandlerCurrentSnapshot(t *testing.T) {
	router, rec := newTestRouter(t, false)

	rr := call(router, http.MethodGet, "/me/snapshot", 7)
	require.Equal(t, http.StatusOK, rr.Code)
	var out Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, int64(7), out.PrincipalID)
	require.Equal(t, []string{"admin"}, out.Roles)
	require.Equal(t, 80, out.Level)
	require.Equal(t, []string{"load"}, rec.ops)

	require.Equal(t, http.StatusUnauthorized, call(router, http.MethodGet, "/me/snapshot", 0).Code)
	require.Equal(t, http.StatusServiceUnavailable, call(router, http.MethodPost, "/me/snapshot", 7).Code)
}

func TestHandlerPushFetchDrop(t *testing.T) {
	router, rec := newTestRouter(t, true)

	rr := call(router, http.MethodPost, "/me/snapshot", 7)
	require.Equal(t, http.StatusCreated, rr.Code)
	var pushed pushView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pushed))
	require.NotEmpty(t, pushed.Token)

	rr = call(router, http.MethodGet, "/snapshots/"+pushed.Token, 7)
	require.Equal(t, http.StatusOK, rr.Code)
	var got Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, []string{"gallery:read"}, got.Permissions)

	require.Equal(t, http.StatusForbidden, call(router, http.MethodGet, "/snapshots/"+pushed.Token, 8).Code)
	require.Equal(t, http.StatusForbidden, call(router, http.MethodDelete, "/snapshots/"+pushed.Token, 8).Code)

	require.Equal(t, http.StatusNoContent, call(router, http.MethodDelete, "/snapshots/"+pushed.Token, 7).Code)
	require.Equal(t, http.StatusNotFound, call(router, http.MethodGet, "/snapshots/"+pushed.Token, 7).Code)
	require.Equal(t, []string{"load", "save", "delete"}, rec.ops)
}
