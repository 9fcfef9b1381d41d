package role

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/httputil"
)

type Handle struct {
	roleService *RoleService
}

func NewHandle(roleService *RoleService) Handle {
	return Handle{
		roleService: roleService,
	}
}

// RegisterRoutes mounts the role endpoints on r. Authorization is applied by the caller.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/", h.DeleteAll)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/users", h.Users)
}

// List handles GET /
func (h Handle) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleService.FindRoles(r.Context())
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, ToDTOs(roles))
}

// Get handles GET /{id}
func (h Handle) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	role, err := h.roleService.GetRole(r.Context(), id)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, ToDTO(role))
}

// Create handles POST /
func (h Handle) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateRoleInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		errs.Render(w, r, err)
		return
	}
	role, err := h.roleService.CreateRole(r.Context(), in)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusCreated, ToDTO(role))
}

// Update handles PUT /{id}
func (h Handle) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	var in UpdateRoleInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		errs.Render(w, r, err)
		return
	}
	role, err := h.roleService.UpdateRole(r.Context(), id, in)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, ToDTO(role))
}

// Delete handles DELETE /{id}
func (h Handle) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	if err := h.roleService.DeleteRole(r.Context(), id); err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.NoContent(w, r)
}

// Users handles GET /{id}/users
func (h Handle) Users(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	users, err := h.roleService.GetRoleUsers(r.Context(), id)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, ToRoleUserDTOs(users))
}

// DeleteAll handles DELETE /
func (h Handle) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.roleService.DeleteAllRoles(r.Context()); err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.NoContent(w, r)
}
