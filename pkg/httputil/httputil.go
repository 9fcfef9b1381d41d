// Package httputil holds the request decoding and response helpers shared by handlers.
package httputil

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	errs "github.com/tendant/simple-todo/pkg/errors"
)

// DecodeJSON reads the request body into v. Malformed bodies are reported as VALIDATION_FAILED.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.ValidationFailed(map[string]interface{}{"body": "request body is required"})
		}
		return errs.ValidationFailed(map[string]interface{}{"body": "invalid JSON: " + err.Error()})
	}
	return nil
}

// IDParam parses a positive integer URL parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errs.ValidationFailed(map[string]interface{}{name: "must be a positive integer"})
	}
	return id, nil
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// NoContent writes a 204 response.
func NoContent(w http.ResponseWriter, r *http.Request) {
	render.NoContent(w, r)
}
