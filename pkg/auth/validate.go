package auth

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	errs "github.com/tendant/simple-todo/pkg/errors"
)

type LoginInput struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type RegisterInput struct {
	UserName        string `json:"userName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (in LoginInput) Validate() error {
	return errs.FromValidation(validation.Errors{
		"userName": validation.Validate(strings.TrimSpace(in.UserName), validation.Required),
		"password": validation.Validate(in.Password, validation.Required),
	}.Filter())
}

func (in RegisterInput) Validate() error {
	return errs.FromValidation(validation.Errors{
		"userName": validation.Validate(strings.TrimSpace(in.UserName), validation.Required),
		"email":    validation.Validate(strings.TrimSpace(in.Email), validation.Required, is.EmailFormat),
		"password": validation.Validate(in.Password, validation.Required),
		"confirmPassword": validation.Validate(in.ConfirmPassword,
			validation.Required,
			validation.In(in.Password).Error("passwords do not match")),
	}.Filter())
}
