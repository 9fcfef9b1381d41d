package user

import (
	"context"
	"fmt"
	"time"

	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/paging"
	"github.com/tendant/simple-todo/pkg/role"
)

type User struct {
	ID           int64
	UserName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserWithRoles is a user together with the roles it holds, ordered by role id.
type UserWithRoles struct {
	User
	Roles []role.Role
}

// Filter selects users. Empty fields match everything; RoleName naming an
// unknown role matches nothing.
type Filter struct {
	UserNameContains string
	EmailContains    string
	RoleName         string
	Page             paging.Request
}

type CreateUserParams struct {
	UserName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type UpdateUserParams struct {
	ID        int64
	UserName  string
	Email     string
	UpdatedAt time.Time
}

// UserRepository defines the interface for user storage.
// User name and email are unique ignoring case.
type UserRepository interface {
	FindUsers(ctx context.Context, f Filter) ([]User, int, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	GetUserByUserName(ctx context.Context, userName string) (User, error)
	UserNameTaken(ctx context.Context, userName string, excludeID int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error)
	// DeleteUser also removes the memberships and todo items of the user.
	DeleteUser(ctx context.Context, id int64) error
	// RolesForUsers loads the roles of every given user in one pass.
	RolesForUsers(ctx context.Context, userIDs []int64) (map[int64][]role.Role, error)
	AddUserRoles(ctx context.Context, userID int64, roleIDs []int64) error
	RemoveUserRoles(ctx context.Context, userID int64, roleIDs []int64) error
	CountUsers(ctx context.Context) (int, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
}

func userNotFound(id int64) *errs.Error {
	return errs.NotFound(errs.ReasonUserNotFound, fmt.Sprintf("user %d not found", id)).WithDetail("id", id)
}

func userNameExists(name string) *errs.Error {
	return errs.Conflict(errs.ReasonUserNameExists, "user name already exists").WithDetail("userName", name)
}

func emailExists(email string) *errs.Error {
	return errs.Conflict(errs.ReasonEmailExists, "email already exists").WithDetail("email", email)
}
