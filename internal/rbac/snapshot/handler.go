package snapshot

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corpsite/corpsite/internal/platform/httpx"
	"github.com/corpsite/corpsite/internal/rbac"
)

// Recorder observes snapshot operations.
type Recorder interface {
	RecordSnapshot(op string)
}

// Handler serves the current principal's snapshot.
type Handler struct {
	logger    *slog.Logger
	resolver  Resolver
	hierarchy *rbac.Hierarchy
	store     *RedisStore
	recorder  Recorder
}

// NewHandler builds Handler instance. store may be nil, in which case
// snapshots can be read but not pushed.
func NewHandler(logger *slog.Logger, resolver Resolver, h *rbac.Hierarchy, store *RedisStore) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, resolver: resolver, hierarchy: h, store: store}
}

// WithRecorder attaches a recorder and returns h.
func (h *Handler) WithRecorder(r Recorder) *Handler {
	h.recorder = r
	return h
}

// MountRoutes registers snapshot routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me/snapshot", h.current)
	r.Post("/me/snapshot", h.push)
	r.Get("/snapshots/{token}", h.fetch)
	r.Delete("/snapshots/{token}", h.drop)
}

type pushView struct {
	Token  string `json:"token"`
	Record Record `json:"snapshot"`
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, RecordOf(s))
}

func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "snapshot store not configured")
		return
	}
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	token, err := h.store.Save(r.Context(), s)
	if err != nil {
		h.logger.Error("snapshot save", slog.Int64("principal_id", s.PrincipalID()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.record("save")
	httpx.JSON(w, http.StatusCreated, pushView{Token: token, Record: RecordOf(s)})
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.stored(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, RecordOf(s))
}

func (h *Handler) drop(w http.ResponseWriter, r *http.Request) {
	s, ok := h.stored(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "token")); err != nil {
		h.logger.Error("snapshot delete", slog.Int64("principal_id", s.PrincipalID()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.record("delete")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Snapshot, bool) {
	principalID, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return nil, false
	}
	s, err := Load(r.Context(), h.resolver, h.hierarchy, principalID)
	if err != nil {
		h.logger.Error("snapshot load", slog.Int64("principal_id", principalID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return nil, false
	}
	h.record("load")
	return s, true
}

func (h *Handler) record(op string) {
	if h.recorder != nil {
		h.recorder.RecordSnapshot(op)
	}
}

// stored fetches the snapshot named by the path token. Only its owner may
// read or drop it.
func (h *Handler) stored(w http.ResponseWriter, r *http.Request) (*Snapshot, bool) {
	if h.store == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "snapshot store not configured")
		return nil, false
	}
	principalID, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return nil, false
	}
	s, err := h.store.Get(r.Context(), chi.URLParam(r, "token"))
	if errors.Is(err, ErrExpired) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return nil, false
	}
	if err != nil {
		h.logger.Error("snapshot get", slog.Any("error", err))
		httpx.RespondError(w, err)
		return nil, false
	}
	if s.PrincipalID() != principalID {
		httpx.RespondError(w, httpx.ErrForbidden)
		return nil, false
	}
	return s, true
}
