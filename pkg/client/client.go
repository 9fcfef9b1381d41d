package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/jwtauth/v5"

	errs "github.com/tendant/simple-todo/pkg/errors"
)

// ExtraClaims is the application part of an access token.
type ExtraClaims struct {
	UserName string   `json:"user_name,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// AuthUser is the authenticated caller of a request.
type AuthUser struct {
	UserID      int64
	ExtraClaims ExtraClaims
}

func (i AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("user", i.UserID),
		slog.Any("roles", i.ExtraClaims.Roles),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "todo context value " + k.name
}

var (
	AuthUserKey = &contextKey{"AuthUser"}
)

func LoadFromMap[T any](m map[string]interface{}, c *T) error {
	data, err := json.Marshal(m)
	if err == nil {
		err = json.Unmarshal(data, c)
	}
	return err
}

// WithAuthUser returns a copy of ctx carrying user.
func WithAuthUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, AuthUserKey, user)
}

// GetAuthUser returns the authenticated user of r, or nil.
func GetAuthUser(r *http.Request) *AuthUser {
	return AuthUserFromContext(r.Context())
}

func AuthUserFromContext(ctx context.Context) *AuthUser {
	user, _ := ctx.Value(AuthUserKey).(*AuthUser)
	return user
}

// Verifier looks for a bearer token in the Authorization header and verifies it with ja.
func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return jwtauth.Verify(ja, jwtauth.TokenFromHeader)
}

// AuthUserMiddleware turns the claims verified by Verifier into an AuthUser.
// Requests without a valid token are rejected with 401.
func AuthUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			slog.Debug("Rejected request without valid token", "error", err)
			errs.Render(w, r, errs.Unauthorized("", "missing or invalid token"))
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			slog.Warn("Token subject is not a user id", "sub", sub)
			errs.Render(w, r, errs.Unauthorized("", "invalid token subject"))
			return
		}

		authUser := &AuthUser{UserID: userID}
		if raw, ok := claims["extra_claims"].(map[string]interface{}); ok {
			if err := LoadFromMap(raw, &authUser.ExtraClaims); err != nil {
				slog.Error("failed to parse extra claims", "error", err)
				errs.Render(w, r, errs.Unauthorized("", "invalid extra claims"))
				return
			}
		}

		slog.Debug("authenticated user", "userId", authUser.UserID, "roles", authUser.ExtraClaims.Roles)
		next.ServeHTTP(w, r.WithContext(WithAuthUser(r.Context(), authUser)))
	})
}
