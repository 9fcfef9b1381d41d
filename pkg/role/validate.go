package role

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	errs "github.com/tendant/simple-todo/pkg/errors"
)

const (
	maxNameLength        = 256
	maxDescriptionLength = 1024
)

// CreateRoleInput is the caller supplied data for a new role.
type CreateRoleInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateRoleInput replaces the name and description of a role.
type UpdateRoleInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (in CreateRoleInput) Validate() error {
	return errs.FromValidation(validateRole(in.Name, in.Description))
}

func (in UpdateRoleInput) Validate() error {
	return errs.FromValidation(validateRole(in.Name, in.Description))
}

func validateRole(name, description string) error {
	name = strings.TrimSpace(name)
	return validation.Errors{
		"name":        validation.Validate(name, validation.Required, validation.RuneLength(1, maxNameLength)),
		"description": validation.Validate(description, validation.RuneLength(0, maxDescriptionLength)),
	}.Filter()
}
