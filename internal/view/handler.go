package view

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corpsite/corpsite/internal/platform/httpx"
	"github.com/corpsite/corpsite/internal/rbac"
	"github.com/corpsite/corpsite/internal/rbac/snapshot"
)

// Handler serves server-rendered dashboard fragments.
type Handler struct {
	logger    *slog.Logger
	engine    *Engine
	resolver  snapshot.Resolver
	hierarchy *rbac.Hierarchy
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, engine *Engine, resolver snapshot.Resolver, h *rbac.Hierarchy) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, engine: engine, resolver: resolver, hierarchy: h}
}

// MountRoutes registers fragment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.withSnapshot)
		r.Get("/me/nav", h.nav)
	})
}

// withSnapshot loads the principal's snapshot into the request context.
func (h *Handler) withSnapshot(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principalID, ok := rbac.PrincipalFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		s, err := snapshot.Load(r.Context(), h.resolver, h.hierarchy, principalID)
		if err != nil {
			h.logger.Error("view snapshot load", slog.Int64("principal_id", principalID), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(snapshot.WithSnapshot(r.Context(), s)))
	})
}

func (h *Handler) nav(w http.ResponseWriter, r *http.Request) {
	principalID, _ := rbac.PrincipalFromContext(r.Context())
	data := TemplateData{
		Title:       "Navigation",
		CurrentPath: r.URL.Query().Get("path"),
		PrincipalID: principalID,
	}
	if err := h.engine.Render(w, r, "nav", data); err != nil {
		h.logger.Error("render nav", slog.Any("error", err))
	}
}
