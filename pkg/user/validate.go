package user

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	errs "github.com/tendant/simple-todo/pkg/errors"
)

const (
	maxUserNameLength = 256
	maxEmailLength    = 256
)

// CreateInput is the caller supplied data for a new user. RoleIds holds role
// names or numeric role ids.
type CreateInput struct {
	UserName string   `json:"userName"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	RoleIds  []string `json:"roleIds"`
}

// UpdateInput changes a user. Blank UserName or Email keep the stored value;
// RoleIds is the complete desired role set.
type UpdateInput struct {
	UserName string   `json:"userName"`
	Email    string   `json:"email"`
	RoleIds  []string `json:"roleIds"`
}

// ListInput selects the users to list.
type ListInput struct {
	UserNameContains string
	EmailContains    string
	RoleName         string
	Page             int
	PageSize         int
}

func (in CreateInput) Validate() error {
	return errs.FromValidation(validation.Errors{
		"userName": validation.Validate(strings.TrimSpace(in.UserName),
			validation.Required.Error("user name is required"),
			validation.RuneLength(1, maxUserNameLength)),
		"email": validation.Validate(strings.TrimSpace(in.Email),
			validation.Required.Error("email is required"),
			validation.RuneLength(1, maxEmailLength),
			is.EmailFormat),
		"password": validation.Validate(in.Password, validation.Required.Error("password is required")),
	}.Filter())
}

func (in UpdateInput) Validate() error {
	return errs.FromValidation(validation.Errors{
		"userName": validation.Validate(strings.TrimSpace(in.UserName), validation.RuneLength(0, maxUserNameLength)),
		"email": validation.Validate(strings.TrimSpace(in.Email),
			validation.RuneLength(0, maxEmailLength),
			is.EmailFormat),
	}.Filter())
}
