// Package app wires configuration, storage and services into a runnable
// application.
package app

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	"github.com/tendant/simple-todo/pkg/auth"
	"github.com/tendant/simple-todo/pkg/bootstrap"
	"github.com/tendant/simple-todo/pkg/config"
	"github.com/tendant/simple-todo/pkg/login"
	"github.com/tendant/simple-todo/pkg/ratelimit"
	"github.com/tendant/simple-todo/pkg/role"
	"github.com/tendant/simple-todo/pkg/router"
	"github.com/tendant/simple-todo/pkg/todo"
	"github.com/tendant/simple-todo/pkg/tokengenerator"
	"github.com/tendant/simple-todo/pkg/user"
)

// App holds the services of a running instance.
type App struct {
	Config config.Config

	RoleService *role.RoleService
	UserService *user.UserService
	TodoService *todo.Service
	AuthService *auth.Service

	Tokens    *tokengenerator.JwtTokenGenerator
	RateLimit *ratelimit.Middleware
	Router    chi.Router
}

// New builds every service on top of backend.
func New(cfg config.Config, backend Backend) *App {
	policy := login.DefaultPasswordPolicy()
	policy.MinLength = cfg.User.MinPasswordLength
	credentials := login.NewCredentialProvider(login.NewBcryptHasher(cfg.User.PasswordHashCost), policy)

	tokens := tokengenerator.NewJwtTokenGenerator(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)

	roleService := role.NewRoleService(backend.Roles, backend.Tx, backend.RoleResetter)
	userService := user.NewUserService(backend.Users, backend.Roles, backend.Tx, credentials, backend.UserResetter,
		user.WithDefaultRole(cfg.User.DefaultRole),
		user.WithMaxPageSize(cfg.Page.MaxPageSize),
	)
	todoService := todo.NewService(backend.Todos, backend.Tx, backend.TodoResetter, backend.Users,
		todo.WithMaxPageSize(cfg.Page.MaxPageSize),
	)
	authService := auth.NewService(backend.Users, userService, credentials, tokens, backend.Tx, cfg.JWT.AccessTokenExpiry)

	var limiter *ratelimit.Middleware
	if cfg.RateLimit.PerMinute > 0 {
		limiter = ratelimit.NewMiddleware(ratelimit.PerMinute(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst))
	}

	r := router.New(router.Config{
		AdminRole:     cfg.User.AdminRole,
		JWTAuth:       jwtauth.New("HS256", []byte(cfg.JWT.Secret), nil),
		HealthCheck:   backend.HealthCheck,
		AuthRateLimit: limiter,
		AuthHandle:    auth.NewHandle(authService),
		TodoHandle:    todo.NewHandle(todoService, cfg.Page.DefaultPageSize),
		UserHandle:    user.NewHandle(userService, cfg.Page.DefaultPageSize),
		RoleHandle:    role.NewHandle(roleService),
	})

	return &App{
		Config:      cfg,
		RoleService: roleService,
		UserService: userService,
		TodoService: todoService,
		AuthService: authService,
		Tokens:      tokens,
		RateLimit:   limiter,
		Router:      r,
	}
}

// Bootstrap ensures the default and admin roles exist and creates the
// configured admin user on an empty store.
func (a *App) Bootstrap(ctx context.Context) error {
	result, err := bootstrap.BootstrapAdminRolesAndUser(ctx, bootstrap.AdminBootstrapConfig{
		RoleNames:     []string{a.Config.User.DefaultRole, a.Config.User.AdminRole},
		AdminRoleName: a.Config.User.AdminRole,
		AdminUserName: a.Config.User.AdminUserName,
		AdminEmail:    a.Config.User.AdminEmail,
		AdminPassword: a.Config.User.AdminPassword,
		RoleService:   a.RoleService,
		UserService:   a.UserService,
	})
	if err != nil {
		return err
	}
	if result.UserCreated {
		slog.Info("Admin user ready", "user_id", result.UserID, "username", result.UserName)
	}
	return nil
}
