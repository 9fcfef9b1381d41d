package todo

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	errs "github.com/tendant/simple-todo/pkg/errors"
)

const (
	minTitleLength       = 3
	maxTitleLength       = 200
	maxDescriptionLength = 2000
)

// CreateInput is the caller supplied data for a new item.
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsComplete  bool   `json:"isComplete"`
}

// UpdateInput replaces title, description and completion of an item.
type UpdateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsComplete  bool   `json:"isComplete"`
}

// ListInput selects the items to list.
type ListInput struct {
	Search     string
	IsComplete *bool
	Page       int
	PageSize   int
}

func (in CreateInput) Validate() error {
	return errs.FromValidation(validateItem(in.Title, in.Description))
}

func (in UpdateInput) Validate() error {
	return errs.FromValidation(validateItem(in.Title, in.Description))
}

func validateItem(title, description string) error {
	return validation.Errors{
		"title": validation.Validate(strings.TrimSpace(title),
			validation.Required.Error("title is required"),
			validation.RuneLength(minTitleLength, maxTitleLength)),
		"description": validation.Validate(description, validation.RuneLength(0, maxDescriptionLength)),
	}.Filter()
}
