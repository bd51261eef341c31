package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/corpsite/corpsite/internal/platform/httpx"
)

// Handler exposes the admin API for grants and assignments.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers permission and assignment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(Key(ResourcePermission, ActionRead)))
		r.Get("/permissions", h.listPermissions)
		r.Get("/roles/{id}/permissions", h.rolePermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(Key(ResourcePermission, ActionAssign)))
		r.Put("/roles/{id}/permissions", h.assignRolePermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(Key(ResourceUser, ActionRead)))
		r.Get("/users/{id}/permissions", h.userPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(Key(ResourceRole, ActionAssign)))
		r.Put("/users/{id}/roles", h.assignUserRoles)
	})
}

type assignPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"max=256,dive,required,max=128"`
}

type assignRolesRequest struct {
	RoleIDs []int64 `json:"role_ids" validate:"max=64,dive,gt=0"`
}

type permissionView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type rolePermissionsView struct {
	RoleID      int64    `json:"role_id"`
	Permissions []string `json:"permissions"`
}

type userPermissionsView struct {
	UserID      int64    `json:"user_id"`
	Roles       []string `json:"roles"`
	Level       int      `json:"level"`
	Permissions []string `json:"permissions"`
}

type assignResultView struct {
	Applied []string `json:"applied"`
	Dropped []string `json:"dropped,omitempty"`
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]permissionView, 0, len(perms))
	for _, p := range perms {
		out = append(out, permissionView{Name: p.Name, Description: p.Description})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) rolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	set, err := h.service.RolePermissions(r.Context(), roleID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rolePermissionsView{RoleID: roleID, Permissions: set.Names()})
}

func (h *Handler) assignRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var req assignPermissionsRequest
	if !httpx.DecodeValid(w, r, h.validator, &req) {
		return
	}
	role, err := h.service.GetRole(r.Context(), roleID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if !h.outranks(w, r, role.Name) {
		return
	}
	if !h.holdsAll(w, r, req.Permissions) {
		return
	}
	res, err := h.service.AssignPermissionsToRole(r.Context(), roleID, req.Permissions)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, assignResultView(res))
}

func (h *Handler) userPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	held, err := h.service.HeldRoles(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	roles := make([]string, 0, len(held))
	set := make(PermissionSet)
	for _, role := range held {
		roles = append(roles, role.Name)
		set.Add(role.Permissions...)
	}
	httpx.JSON(w, http.StatusOK, userPermissionsView{
		UserID:      userID,
		Roles:       roles,
		Level:       h.service.Hierarchy().MaxLevel(roles),
		Permissions: set.Names(),
	})
}

func (h *Handler) assignUserRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.PathID(w, r, "id")
	if !ok {
		return
	}
	var req assignRolesRequest
	if !httpx.DecodeValid(w, r, h.validator, &req) {
		return
	}
	if !h.outranksPrincipal(w, r, userID) {
		return
	}
	for _, id := range req.RoleIDs {
		role, err := h.service.GetRole(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			// dropped by the assignment
			continue
		}
		if err != nil {
			h.respondError(w, err)
			return
		}
		if !h.outranks(w, r, role.Name) {
			return
		}
	}
	res, err := h.service.AssignRolesToUser(r.Context(), userID, req.RoleIDs)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, assignResultView(res))
}

// outranks writes 403 unless the acting principal strictly outranks role.
func (h *Handler) outranks(w http.ResponseWriter, r *http.Request, role string) bool {
	actorID, ok := PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return false
	}
	allowed, err := h.service.CanManage(r.Context(), actorID, role)
	if err != nil {
		h.respondError(w, err)
		return false
	}
	if !allowed {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "role "+role+" is at or above your level")
		return false
	}
	return true
}

// outranksPrincipal writes 403 unless the acting principal strictly outranks
// every role the target currently holds. Acting on oneself is allowed; the
// per-role check still stops self-promotion.
func (h *Handler) outranksPrincipal(w http.ResponseWriter, r *http.Request, targetID int64) bool {
	actorID, ok := PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return false
	}
	if actorID == targetID {
		return true
	}
	allowed, err := h.service.CanManagePrincipal(r.Context(), actorID, targetID)
	if err != nil {
		h.respondError(w, err)
		return false
	}
	if !allowed {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "principal is at or above your level")
		return false
	}
	return true
}

// holdsAll writes 403 when the acting principal would grant a catalog
// permission it does not hold itself. Names outside the catalog are left for
// the assignment to drop.
func (h *Handler) holdsAll(w http.ResponseWriter, r *http.Request, names []string) bool {
	actorID, ok := PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return false
	}
	own, err := h.service.UserPermissions(r.Context(), actorID)
	if err != nil {
		h.respondError(w, err)
		return false
	}
	var missing []string
	for _, name := range normalizeNames(names) {
		if _, err := ParsePermissionKey(name); err != nil {
			continue
		}
		if !own.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "cannot grant permissions you do not hold: "+strings.Join(missing, ", "))
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrRoleNameRequired), errors.Is(err, ErrUnknownPermission):
		httpx.RespondError(w, httpx.ErrValidation)
	default:
		h.logger.Error("rbac handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
