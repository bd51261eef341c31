package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/corpsite/corpsite/internal/observability"
	"github.com/corpsite/corpsite/internal/platform/httpx"
	"github.com/corpsite/corpsite/internal/rbac"
	"github.com/corpsite/corpsite/internal/rbac/snapshot"
	"github.com/corpsite/corpsite/internal/roles"
	"github.com/corpsite/corpsite/internal/users"
	"github.com/corpsite/corpsite/internal/view"
	"github.com/corpsite/corpsite/jobs"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Database        Pinger
	RBACHandler     *rbac.Handler
	RolesHandler    *roles.Handler
	UsersHandler    *users.Handler
	ViewHandler     *view.Handler
	SnapshotHandler *snapshot.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with dashboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if params.Database == nil {
			httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := params.Database.Ping(ctx); err != nil {
			params.Logger.Warn("readiness check failed", slog.Any("error", err))
			httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "database unreachable")
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/admin", func(r chi.Router) {
		if params.RBACHandler != nil {
			params.RBACHandler.MountRoutes(r)
		}
		if params.RolesHandler != nil {
			params.RolesHandler.MountRoutes(r)
		}
		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(r)
		}
		if params.SnapshotHandler != nil {
			params.SnapshotHandler.MountRoutes(r)
		}
		if params.ViewHandler != nil {
			params.ViewHandler.MountRoutes(r)
		}
		if params.JobHandler != nil {
			params.JobHandler.MountRoutes(r)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
