package todo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-todo/pkg/database"
	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/metrics"
	"github.com/tendant/simple-todo/pkg/paging"
)

const (
	DefaultGenerateCount = 100
	MaxGenerateCount     = 1000
)

// Service provides methods for todo item management
type Service struct {
	repo        Repository
	tx          database.TxManager
	resetter    Resetter
	owners      OwnerSource
	maxPageSize int
	now         func() time.Time
}

type Option func(*Service)

// WithMaxPageSize caps the page size of FindItems.
func WithMaxPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPageSize = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, tx database.TxManager, resetter Resetter, owners OwnerSource, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		tx:          tx,
		resetter:    resetter,
		owners:      owners,
		maxPageSize: paging.MaxPageSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func observe(operation string, err error) {
	metrics.ObserveOperation("todo", operation, err)
}

// timestamp is the current time at the precision the store keeps.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// FindItems lists items, scoped to ownerID when it is set.
func (s *Service) FindItems(ctx context.Context, in ListInput, ownerID *int64) (page paging.Page[Item], err error) {
	defer func() { observe("list", err) }()

	req, err := paging.Normalize(paging.Request{Page: in.Page, PageSize: in.PageSize}, s.maxPageSize)
	if err != nil {
		return paging.Page[Item]{}, err
	}
	f := Filter{
		OwnerID:    ownerID,
		Search:     strings.TrimSpace(in.Search),
		IsComplete: in.IsComplete,
		Page:       req,
	}

	var (
		items []Item
		total int
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		items, total, err = s.repo.FindItems(ctx, f)
		return err
	})
	if err != nil {
		return paging.Page[Item]{}, errs.Ensure(err)
	}
	return paging.New(items, total, req), nil
}

// GetItem retrieves an item, scoped to ownerID when it is set.
func (s *Service) GetItem(ctx context.Context, id int64, ownerID *int64) (item Item, err error) {
	defer func() { observe("get", err) }()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		item, err = s.repo.GetItem(ctx, id, ownerID)
		return err
	})
	return item, errs.Ensure(err)
}

// CreateItem stores a new item owned by ownerID.
func (s *Service) CreateItem(ctx context.Context, in CreateInput, ownerID int64) (item Item, err error) {
	defer func() { observe("create", err) }()

	if err = in.Validate(); err != nil {
		return Item{}, err
	}
	item = FromCreate(in, ownerID, s.timestamp())

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.repo.TitleExists(ctx, ownerID, item.Title, 0)
		if err != nil {
			return err
		}
		if exists {
			return titleExists(item.Title)
		}
		item, err = s.repo.CreateItem(ctx, item)
		return err
	})
	if err != nil {
		return Item{}, errs.Ensure(err)
	}

	slog.Debug("Todo item created", "id", item.ID, "owner", ownerID)
	return item, nil
}

// UpdateItem overwrites title, description and completion. Created is kept
// and Updated moves strictly forward.
func (s *Service) UpdateItem(ctx context.Context, id int64, in UpdateInput, ownerID *int64) (item Item, err error) {
	defer func() { observe("update", err) }()

	if err = in.Validate(); err != nil {
		return Item{}, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetItem(ctx, id, ownerID)
		if err != nil {
			return err
		}

		title := strings.TrimSpace(in.Title)
		exists, err := s.repo.TitleExists(ctx, current.CreatedByUserID, title, id)
		if err != nil {
			return err
		}
		if exists {
			return titleExists(title)
		}

		now := s.timestamp()
		if !now.After(current.Updated) {
			now = current.Updated.Add(time.Microsecond)
		}
		current.Title = title
		current.Description = in.Description
		current.IsComplete = in.IsComplete
		current.Updated = now

		item, err = s.repo.UpdateItem(ctx, current)
		return err
	})
	if err != nil {
		return Item{}, errs.Ensure(err)
	}
	return item, nil
}

// DeleteItem removes an item, scoped to ownerID when it is set.
func (s *Service) DeleteItem(ctx context.Context, id int64, ownerID *int64) (err error) {
	defer func() { observe("delete", err) }()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetItem(ctx, id, ownerID); err != nil {
			return err
		}
		return s.repo.DeleteItem(ctx, id)
	})
	return errs.Ensure(err)
}

// DeleteAllItems removes every item of every owner.
func (s *Service) DeleteAllItems(ctx context.Context) (err error) {
	defer func() { observe("delete_all", err) }()

	if err = s.resetter.ClearTodoItems(ctx); err != nil {
		return errs.Ensure(err)
	}
	slog.Warn("All todo items deleted")
	return nil
}

// GenerateItems creates count sample items spread round-robin over the
// existing users and returns the number created.
func (s *Service) GenerateItems(ctx context.Context, count int) (created int, err error) {
	defer func() { observe("generate", err) }()

	if count < 1 || count > MaxGenerateCount {
		return 0, errs.ValidationFailed(map[string]interface{}{
			"count": fmt.Sprintf("must be between 1 and %d", MaxGenerateCount),
		})
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		owners, err := s.owners.ListUserIDs(ctx)
		if err != nil {
			return err
		}
		if len(owners) == 0 {
			return errs.ValidationFailed(map[string]interface{}{"users": "no users found, create users first"})
		}

		now := s.timestamp()
		for i := 0; i < count; i++ {
			item := Item{
				Title:           fmt.Sprintf("Task %d", i+1),
				Description:     fmt.Sprintf("Description for task %d", i+1),
				IsComplete:      i%2 == 0,
				Created:         now,
				Updated:         now,
				CreatedByUserID: owners[i%len(owners)],
			}
			exists, err := s.repo.TitleExists(ctx, item.CreatedByUserID, item.Title, 0)
			if err != nil {
				return err
			}
			if exists {
				item.Title = fmt.Sprintf("Task %d (%s)", i+1, uuid.NewString()[:8])
			}
			if _, err := s.repo.CreateItem(ctx, item); err != nil {
				return err
			}
			created++
		}
		slog.Info("Generated todo items", "count", created, "users", len(owners))
		return nil
	})
	if err != nil {
		return 0, errs.Ensure(err)
	}
	return created, nil
}
