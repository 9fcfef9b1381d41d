package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tendant/simple-todo/pkg/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.User.PasswordHashCost = bcrypt.MinCost
	cfg.User.AdminUserName = "admin"
	cfg.User.AdminEmail = "admin@example.com"
	cfg.User.AdminPassword = "changeme"
	return cfg
}

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *client) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func (c *client) signIn(path, body string, want int) {
	c.t.Helper()
	rec := c.do(http.MethodPost, path, body)
	require.Equal(c.t, want, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	c.token = resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestEndToEnd(t *testing.T) {
	a := New(testConfig(t), MemoryBackend())
	require.NoError(t, a.Bootstrap(context.Background()))

	admin := &client{t: t, router: a.Router}
	admin.signIn("/api/auth/login", `{"userName":"admin","password":"changeme"}`, http.StatusOK)

	bob := &client{t: t, router: a.Router}
	bob.signIn("/api/auth/register",
		`{"userName":"bob","email":"bob@example.com","password":"secret1","confirmPassword":"secret1"}`,
		http.StatusCreated)

	rec := bob.do(http.MethodPost, "/api/todo-items", `{"title":"Buy milk"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Buy milk", decode(t, rec)["title"])

	rec = bob.do(http.MethodPost, "/api/todo-items", `{"title":"Buy milk"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = bob.do(http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = admin.do(http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["totalCount"])

	rec = admin.do(http.MethodGet, "/api/roles", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = admin.do(http.MethodPost, "/api/test-data/generate-todo-items?count=4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), decode(t, rec)["generated"])

	rec = bob.do(http.MethodGet, "/api/todo-items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode(t, rec)["totalCount"])

	rec = admin.do(http.MethodDelete, "/api/todo-items", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = bob.do(http.MethodGet, "/api/todo-items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["totalCount"])

	rec = admin.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit = config.RateLimitConfig{PerMinute: 1, Burst: 2}
	a := New(cfg, MemoryBackend())
	require.NoError(t, a.Bootstrap(context.Background()))

	c := &client{t: t, router: a.Router}
	for i := 0; i < 2; i++ {
		rec := c.do(http.MethodPost, "/api/auth/login", `{"userName":"admin","password":"wrong-one"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := c.do(http.MethodPost, "/api/auth/login", `{"userName":"admin","password":"changeme"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
