package rbac

import (
	"context"
	"log/slog"
	"net/http"
)

type principalContextKey struct{}

// WithPrincipal stores an authenticated principal id in ctx. The identity
// layer calls it after verifying credentials; this package trusts the value.
func WithPrincipal(ctx context.Context, principalID int64) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principalID)
}

// PrincipalFromContext returns the principal id bound to ctx.
func PrincipalFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(principalContextKey{}).(int64)
	return id, ok
}

// DecisionRecorder observes authorization outcomes.
type DecisionRecorder interface {
	RecordDecision(check string, allowed bool)
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Service  *Service
	Logger   *slog.Logger
	Recorder DecisionRecorder
}

// RequireAny ensures the current user has at least one of the required permissions.
func (m Middleware) RequireAny(keys ...PermissionKey) func(http.Handler) http.Handler {
	return m.require("any", keys, func(ctx context.Context, id int64) (bool, error) {
		return m.Service.UserHasAnyPermission(ctx, id, keys...)
	})
}

// RequireAll ensures the current user has all required permissions.
func (m Middleware) RequireAll(keys ...PermissionKey) func(http.Handler) http.Handler {
	return m.require("all", keys, func(ctx context.Context, id int64) (bool, error) {
		return m.Service.UserHasAllPermissions(ctx, id, keys...)
	})
}

// RequireLevel ensures the current user's role level is at least minLevel.
func (m Middleware) RequireLevel(minLevel int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := PrincipalFromContext(r.Context())
			if !ok {
				m.deny(w, "level")
				return
			}
			level, err := m.Service.UserRoleLevel(r.Context(), userID)
			if err != nil {
				m.fail(w, "rbac require level", err)
				return
			}
			if level < minLevel {
				m.deny(w, "level")
				return
			}
			m.record("level", true)
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) require(check string, keys []PermissionKey, decide func(context.Context, int64) (bool, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(keys) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := PrincipalFromContext(r.Context())
			if !ok {
				m.deny(w, check)
				return
			}
			allowed, err := decide(r.Context(), userID)
			if err != nil {
				m.fail(w, "rbac require "+check, err)
				return
			}
			if !allowed {
				m.deny(w, check)
				return
			}
			m.record(check, true)
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) deny(w http.ResponseWriter, check string) {
	m.record(check, false)
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

func (m Middleware) fail(w http.ResponseWriter, msg string, err error) {
	if m.Logger != nil {
		m.Logger.Error(msg, slog.Any("error", err))
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (m Middleware) record(check string, allowed bool) {
	if m.Recorder != nil {
		m.Recorder.RecordDecision(check, allowed)
	}
}
