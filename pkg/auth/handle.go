package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/httputil"
	"github.com/tendant/simple-todo/pkg/user"
)

// SessionResponse is returned by login and register.
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      user.UserDTO `json:"user"`
}

func toResponse(s Session) SessionResponse {
	return SessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      user.ToDTOWithRoles(s.User),
	}
}

type Handle struct {
	service *Service
}

func NewHandle(service *Service) Handle {
	return Handle{service: service}
}

// RegisterRoutes mounts the public auth endpoints on r.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/register", h.Register)
}

// Login handles POST /login
func (h Handle) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		errs.Render(w, r, err)
		return
	}
	session, err := h.service.Login(r.Context(), in)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, toResponse(session))
}

// Register handles POST /register
func (h Handle) Register(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		errs.Render(w, r, err)
		return
	}
	session, err := h.service.Register(r.Context(), in)
	if err != nil {
		errs.Render(w, r, err)
		return
	}
	httputil.JSON(w, r, http.StatusCreated, toResponse(session))
}
