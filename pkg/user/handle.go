package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/httputil"
	"github.com/tendant/simple-todo/pkg/paging"
)

type Handle struct {
	userService     *UserService
	defaultPageSize int
}

func NewHandle(userService *UserService, defaultPageSize int) Handle {
	return Handle{
		userService:     userService,
		defaultPageSize: defaultPageSize,
	}
}

// RegisterRoutes mounts the user endpoints on r. Authorization is applied by the caller.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/", h.DeleteAll)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List handles GET /?page&pageSize&userNameContains&emailContains&roleName
func (h Handle) List(w http.ResponseWriter, r *http.Request) {
	req, err := paging.FromQuery(r, h.defaultPageSize)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	q := r.URL.Query()
	page, err := h.userService.FindUsers(r.Context(), ListInput{
		UserNameContains: q.Get("userNameContains"),
		EmailContains:    q.Get("emailContains"),
		RoleName:         q.Get("roleName"),
		Page:             req.Page,
		PageSize:         req.PageSize,
	})
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, paging.Map(page, ToDTOWithRoles))
}

// Get handles GET /{id}
func (h Handle) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, ToDTOWithRoles(user))
}

// Create handles POST /
func (h Handle) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		errs.Render(w, r, err)
		return
	}
	user, err := h.userService.CreateUser(r.Context(), in)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusCreated, ToDTOWithRoles(user))
}

// Update handles PUT /{id}
func (h Handle) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	var in UpdateInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		errs.Render(w, r, err)
		return
	}
	user, err := h.userService.UpdateUser(r.Context(), id, in)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, ToDTOWithRoles(user))
}

// Delete handles DELETE /{id}
func (h Handle) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	if err := h.userService.DeleteUser(r.Context(), id); err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.NoContent(w, r)
}

// DeleteAll handles DELETE /
func (h Handle) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteAllUsers(r.Context()); err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.NoContent(w, r)
}
