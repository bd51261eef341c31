package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/corpsite/corpsite/internal/platform/httpx"
	"github.com/corpsite/corpsite/internal/rbac"
)

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers user routes. Paths are absolute so they share a
// router with the permission routes under /users/{id}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.Key(rbac.ResourceUser, rbac.ActionRead)))
		r.Get("/users", h.listUsers)
		r.Get("/users/{id}", h.getUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.Key(rbac.ResourceUser, rbac.ActionCreate)))
		r.Post("/users", h.createUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.Key(rbac.ResourceUser, rbac.ActionUpdate)))
		r.Put("/users/{id}/status", h.setStatus)
	})
}

type createUserRequest struct {
	Name  string `json:"name" validate:"required,max=128"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active disabled"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	u, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !httpx.DecodeValid(w, r, h.validator, &req) {
		return
	}
	u, err := h.service.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Location", "/api/admin/users/"+strconv.FormatInt(u.ID, 10))
	httpx.JSON(w, http.StatusCreated, u)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !httpx.DecodeValid(w, r, h.validator, &req) {
		return
	}
	actorID, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	u, err := h.service.SetStatus(r.Context(), actorID, id, req.Status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rbac.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrDuplicateEmail):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrOutranked), errors.Is(err, ErrSelfDisable):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		h.logger.Error("users handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
