package config

import "strings"

// UserConfig holds user and role defaults
type UserConfig struct {
	DefaultRole       string `env:"DEFAULT_ROLE" env-default:"User"`
	AdminRole         string `env:"ADMIN_ROLE" env-default:"Admin"`
	MinPasswordLength int    `env:"PASSWORD_MIN_LENGTH" env-default:"6"`
	PasswordHashCost  int    `env:"PASSWORD_HASH_COST" env-default:"10"`

	// Bootstrap admin. Skipped when AdminUserName is empty.
	AdminUserName string `env:"ADMIN_USERNAME" env-default:""`
	AdminEmail    string `env:"ADMIN_EMAIL" env-default:""`
	AdminPassword string `env:"ADMIN_PASSWORD" env-default:""`
}

// PageConfig holds list pagination defaults
type PageConfig struct {
	DefaultPageSize int `env:"PAGE_SIZE_DEFAULT" env-default:"10"`
	MaxPageSize     int `env:"PAGE_SIZE_MAX" env-default:"50"`
}

// IsRole reports whether role matches name, ignoring case
func IsRole(role, name string) bool {
	return strings.EqualFold(strings.TrimSpace(role), strings.TrimSpace(name))
}

// HasRole checks if any of userRoles matches name, ignoring case
func HasRole(userRoles []string, name string) bool {
	for _, r := range userRoles {
		if IsRole(r, name) {
			return true
		}
	}
	return false
}
