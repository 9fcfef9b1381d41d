package role

import (
	"context"
	"fmt"

	errs "github.com/tendant/simple-todo/pkg/errors"
)

// Role is a named group of permissions.
type Role struct {
	ID          int64
	Name        string
	Description string
}

// RoleUser is a user holding a role.
type RoleUser struct {
	ID       int64
	UserName string
	Email    string
}

type CreateRoleParams struct {
	Name        string
	Description string
}

type UpdateRoleParams struct {
	ID          int64
	Name        string
	Description string
}

// RoleRepository defines the interface for role storage.
// Lookups of a single missing role return a NOT_FOUND error with ReasonRoleNotFound.
type RoleRepository interface {
	FindRoles(ctx context.Context) ([]Role, error)
	GetRoleByID(ctx context.Context, id int64) (Role, error)
	// GetRoleByName matches ignoring case.
	GetRoleByName(ctx context.Context, name string) (Role, error)
	// GetRolesByNames and GetRolesByIDs skip entries that do not exist.
	GetRolesByNames(ctx context.Context, names []string) ([]Role, error)
	GetRolesByIDs(ctx context.Context, ids []int64) ([]Role, error)
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
	CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error)
	UpdateRole(ctx context.Context, arg UpdateRoleParams) (Role, error)
	DeleteRole(ctx context.Context, id int64) error
	CountRoleUsers(ctx context.Context, id int64) (int, error)
	GetRoleUsers(ctx context.Context, id int64) ([]RoleUser, error)
}

func roleNotFound(id int64) *errs.Error {
	return errs.NotFound(errs.ReasonRoleNotFound, fmt.Sprintf("role %d not found", id)).WithDetail("id", id)
}
