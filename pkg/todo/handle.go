package todo

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/simple-todo/pkg/client"
	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/httputil"
	"github.com/tendant/simple-todo/pkg/paging"
)

type Handle struct {
	service         *Service
	defaultPageSize int
}

func NewHandle(service *Service, defaultPageSize int) Handle {
	return Handle{
		service:         service,
		defaultPageSize: defaultPageSize,
	}
}

// RegisterRoutes mounts the owner scoped item endpoints on r.
// Requires client.AuthUserMiddleware upstream.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func owner(r *http.Request) (int64, error) {
	user := client.GetAuthUser(r)
	if user == nil {
		return 0, errs.Unauthorized("", "authentication required")
	}
	return user.UserID, nil
}

// List handles GET /?page&pageSize&isComplete&search
func (h Handle) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := owner(r)
	if err != nil {
		errs.Render(w, r, err)
		return
	}

	req, err := paging.FromQuery(r, h.defaultPageSize)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	in := ListInput{
		Search:   r.URL.Query().Get("search"),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if raw := r.URL.Query().Get("isComplete"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs.Render(w, r, errs.ValidationFailed(map[string]interface{}{"isComplete": "must be true or false"}))
			return
		}
		in.IsComplete = &v
	}

	page, err := h.service.FindItems(r.Context(), in, &ownerID)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, paging.Map(page, ToDTO))
}

// Get handles GET /{id}
func (h Handle) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := owner(r)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		errs.Render(w, r, err)
		return
	}

	item, err := h.service.GetItem(r.Context(), id, &ownerID)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, ToDTO(item))
}

// Create handles POST /
func (h Handle) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := owner(r)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	var in CreateInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		errs.Render(w, r, err)
		return
	}

	item, err := h.service.CreateItem(r.Context(), in, ownerID)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusCreated, ToDTO(item))
}

// Update handles PUT /{id}
func (h Handle) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, err := owner(r)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
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

	item, err := h.service.UpdateItem(r.Context(), id, in, &ownerID)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, ToDTO(item))
}

// Delete handles DELETE /{id}
func (h Handle) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, err := owner(r)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		errs.Render(w, r, err)
		return
	}

	if err := h.service.DeleteItem(r.Context(), id, &ownerID); err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.NoContent(w, r)
}

// DeleteAll handles DELETE / for administrators.
func (h Handle) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAllItems(r.Context()); err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.NoContent(w, r)
}

// Generate handles POST /generate-todo-items?count for administrators.
func (h Handle) Generate(w http.ResponseWriter, r *http.Request) {
	count := DefaultGenerateCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs.Render(w, r, errs.ValidationFailed(map[string]interface{}{"count": "must be an integer"}))
			return
		}
		count = n
	}

	created, err := h.service.GenerateItems(r.Context(), count)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, map[string]int{"generated": created})
}
