package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"not found", NotFound(ReasonItemNotFound, "missing"), http.StatusNotFound},
		{"duplicate title", Conflict(ReasonTitleExists, "dup"), http.StatusBadRequest},
		{"duplicate user name", Conflict(ReasonUserNameExists, "dup"), http.StatusConflict},
		{"role in use", Conflict(ReasonRoleInUse, "busy"), http.StatusConflict},
		{"unknown role", ReferentialViolation(ReasonRoleNotFound, "no role"), http.StatusBadRequest},
		{"no roles", InvalidState(ReasonNoRolesProvided, "empty"), http.StatusBadRequest},
		{"validation", ValidationFailed(map[string]interface{}{"title": "required"}), http.StatusBadRequest},
		{"store", StoreUnavailable(fmt.Errorf("dial tcp")), http.StatusServiceUnavailable},
		{"unauthorized", Unauthorized(ReasonInvalidCredentials, "bad"), http.StatusUnauthorized},
		{"forbidden", Forbidden("nope"), http.StatusForbidden},
		{"rate limited", RateLimited("slow down"), http.StatusTooManyRequests},
		{"internal", Internal("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatusCode())
		})
	}
}

func TestCodeAndReasonHelpers(t *testing.T) {
	err := fmt.Errorf("creating item: %w", Conflict(ReasonTitleExists, "title already exists"))

	assert.True(t, IsCode(err, ErrCodeConflict))
	assert.False(t, IsCode(err, ErrCodeNotFound))
	assert.True(t, IsReason(err, ReasonTitleExists))
	assert.Equal(t, ErrCodeConflict, GetCode(err))
	assert.Equal(t, ReasonTitleExists, GetReason(err))

	plain := fmt.Errorf("plain")
	assert.Equal(t, ErrCodeInternal, GetCode(plain))
	assert.Equal(t, Reason(""), GetReason(plain))
	assert.Nil(t, GetDetails(plain))
}

func TestEnsure(t *testing.T) {
	assert.NoError(t, Ensure(nil))

	structured := NotFound(ReasonUserNotFound, "user not found")
	assert.Same(t, structured, Ensure(structured))

	wrapped := Ensure(fmt.Errorf("connection reset"))
	assert.True(t, IsCode(wrapped, ErrCodeStoreUnavailable))
}

func TestRender(t *testing.T) {
	t.Run("structured error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/todoitems/1", nil)
		rec := httptest.NewRecorder()

		Render(rec, req, NotFound(ReasonItemNotFound, "todo item 1 not found"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, ProblemContentType, rec.Header().Get("Content-Type"))

		var p Problem
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, ErrCodeNotFound, p.Code)
		assert.Equal(t, ReasonItemNotFound, p.Reason)
		assert.Equal(t, "todo item 1 not found", p.Detail)
	})

	t.Run("internal detail hidden unless debug", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		SetDebug(false)
		rec := httptest.NewRecorder()
		Render(rec, req, fmt.Errorf("secret connection string"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret")

		SetDebug(true)
		defer SetDebug(false)
		rec = httptest.NewRecorder()
		Render(rec, req, fmt.Errorf("secret connection string"))
		assert.Contains(t, rec.Body.String(), "secret")
	})
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ProblemContentType, rec.Header().Get("Content-Type"))
}

func TestFromValidation(t *testing.T) {
	type input struct{ Title string }
	in := input{}
	verr := validation.ValidateStruct(&in, validation.Field(&in.Title, validation.Required))

	err := FromValidation(verr)
	require.True(t, IsCode(err, ErrCodeValidationFailed))
	assert.Contains(t, GetDetails(err), "Title")

	assert.NoError(t, FromValidation(nil))
}
