// Package bootstrap seeds the roles every deployment needs and, on an empty
// store, the first administrator.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tendant/simple-todo/pkg/role"
	"github.com/tendant/simple-todo/pkg/user"
)

// AdminBootstrapConfig contains configuration for bootstrapping roles and the admin user
type AdminBootstrapConfig struct {
	// Role names that must exist, e.g. DEFAULT_ROLE and ADMIN_ROLE
	RoleNames []string
	// Role granted to the admin user
	AdminRoleName string

	// Admin user credentials (from ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD).
	// User creation is skipped when AdminUserName is empty.
	AdminUserName string
	AdminEmail    string
	AdminPassword string

	RoleService *role.RoleService
	UserService *user.UserService
}

// RoleInfo contains information about a bootstrapped role
type RoleInfo struct {
	ID      int64
	Name    string
	Created bool // true if created, false if already existed
}

// AdminBootstrapResult contains the result of the bootstrap
type AdminBootstrapResult struct {
	Roles       []RoleInfo
	UserID      int64
	UserName    string
	UserCreated bool
}

// BootstrapAdminRolesAndUser ensures the configured roles exist and creates the
// admin user when the store holds no users yet.
func BootstrapAdminRolesAndUser(ctx context.Context, cfg AdminBootstrapConfig) (*AdminBootstrapResult, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid bootstrap configuration: %w", err)
	}

	roleInfos, err := ensureRoles(ctx, cfg.RoleService, cfg.RoleNames)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure roles: %w", err)
	}
	result := &AdminBootstrapResult{Roles: roleInfos}

	if cfg.AdminUserName == "" {
		slog.Info("No admin user configured - skipping admin bootstrap")
		return result, nil
	}

	count, err := cfg.UserService.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check if users exist: %w", err)
	}
	if count > 0 {
		slog.Info("Users already exist - skipping admin bootstrap", "users", count)
		return result, nil
	}

	admin, err := cfg.UserService.CreateUser(ctx, user.CreateInput{
		UserName: cfg.AdminUserName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		RoleIds:  []string{cfg.AdminRoleName},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}
	result.UserID = admin.ID
	result.UserName = admin.UserName
	result.UserCreated = true

	slog.Info("Admin bootstrap completed successfully",
		"roles_created", countCreated(roleInfos),
		"user_id", admin.ID,
		"username", admin.UserName,
		"role", cfg.AdminRoleName)
	return result, nil
}

func validateConfig(cfg AdminBootstrapConfig) error {
	if cfg.RoleService == nil {
		return fmt.Errorf("RoleService is required")
	}
	if cfg.UserService == nil {
		return fmt.Errorf("UserService is required")
	}
	if cfg.AdminUserName != "" && cfg.AdminRoleName == "" {
		return fmt.Errorf("admin role name is required")
	}
	return nil
}

// ensureRoles creates every name in roleNames that does not exist yet
func ensureRoles(ctx context.Context, roleService *role.RoleService, roleNames []string) ([]RoleInfo, error) {
	existingRoles, err := roleService.FindRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find existing roles: %w", err)
	}

	// Role names are unique ignoring case
	existingMap := make(map[string]int64, len(existingRoles))
	for _, r := range existingRoles {
		existingMap[strings.ToLower(r.Name)] = r.ID
	}

	roleInfos := make([]RoleInfo, 0, len(roleNames))
	for _, roleName := range roleNames {
		key := strings.ToLower(strings.TrimSpace(roleName))
		if key == "" {
			continue
		}
		if roleID, exists := existingMap[key]; exists {
			slog.Debug("Role already exists", "role", roleName, "id", roleID)
			roleInfos = append(roleInfos, RoleInfo{ID: roleID, Name: roleName})
			continue
		}

		created, err := roleService.CreateRole(ctx, role.CreateRoleInput{Name: roleName})
		if err != nil {
			return nil, fmt.Errorf("failed to create role %s: %w", roleName, err)
		}
		existingMap[key] = created.ID

		slog.Info("Role created", "role", created.Name, "id", created.ID)
		roleInfos = append(roleInfos, RoleInfo{ID: created.ID, Name: created.Name, Created: true})
	}
	return roleInfos, nil
}

func countCreated(roles []RoleInfo) int {
	count := 0
	for _, r := range roles {
		if r.Created {
			count++
		}
	}
	return count
}
