package todo

import (
	"context"
	"fmt"
	"time"

	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/paging"
)

// Item is a todo item.
type Item struct {
	ID              int64
	Title           string
	Description     string
	IsComplete      bool
	Created         time.Time
	Updated         time.Time
	CreatedByUserID int64
}

// Filter selects items. Filters apply in order: owner, search, completion.
type Filter struct {
	OwnerID *int64
	// Search matches title or description as a substring, ignoring case.
	Search     string
	IsComplete *bool
	Page       paging.Request
}

// Repository defines the interface for todo item storage.
type Repository interface {
	// FindItems returns one page of matching items ordered by id, and the total match count.
	FindItems(ctx context.Context, f Filter) ([]Item, int, error)
	// GetItem returns NOT_FOUND when the item is missing or not owned by ownerID.
	GetItem(ctx context.Context, id int64, ownerID *int64) (Item, error)
	TitleExists(ctx context.Context, ownerID int64, title string, excludeID int64) (bool, error)
	CreateItem(ctx context.Context, item Item) (Item, error)
	UpdateItem(ctx context.Context, item Item) (Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

// Resetter clears the todo item table.
type Resetter interface {
	ClearTodoItems(ctx context.Context) error
}

// OwnerSource lists candidate owners for generated items.
type OwnerSource interface {
	ListUserIDs(ctx context.Context) ([]int64, error)
}

func itemNotFound(id int64) *errs.Error {
	return errs.NotFound(errs.ReasonItemNotFound, fmt.Sprintf("todo item %d not found", id)).WithDetail("id", id)
}

func titleExists(title string) *errs.Error {
	return errs.Conflict(errs.ReasonTitleExists, "a todo item with this title already exists").WithDetail("title", title)
}

func ownerMissing(ownerID int64) *errs.Error {
	return errs.ReferentialViolation(errs.ReasonUserNotFound, fmt.Sprintf("owner %d does not exist", ownerID)).WithDetail("ownerId", ownerID)
}
