package todo

import (
	"context"
	"sort"
	"strings"

	"github.com/tendant/simple-todo/pkg/memstore"
)

// InMemoryRepository implements Repository on a memstore.Store
type InMemoryRepository struct {
	store *memstore.Store
}

func NewInMemoryRepository(store *memstore.Store) *InMemoryRepository {
	return &InMemoryRepository{store: store}
}

func fromRow(row memstore.TodoRow) Item {
	return Item(row)
}

func toRow(item Item) memstore.TodoRow {
	return memstore.TodoRow(item)
}

func (f Filter) matches(item memstore.TodoRow) bool {
	if f.OwnerID != nil && item.CreatedByUserID != *f.OwnerID {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(item.Title), needle) &&
			!strings.Contains(strings.ToLower(item.Description), needle) {
			return false
		}
	}
	if f.IsComplete != nil && item.IsComplete != *f.IsComplete {
		return false
	}
	return true
}

func (r *InMemoryRepository) FindItems(ctx context.Context, f Filter) ([]Item, int, error) {
	matched := []Item{}
	r.store.Read(func() {
		for _, row := range r.store.Todos {
			if f.matches(row) {
				matched = append(matched, fromRow(row))
			}
		}
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	start, end := f.Page.Window(len(matched))
	return matched[start:end], len(matched), nil
}

func (r *InMemoryRepository) GetItem(ctx context.Context, id int64, ownerID *int64) (Item, error) {
	var (
		row memstore.TodoRow
		ok  bool
	)
	r.store.Read(func() { row, ok = r.store.Todos[id] })
	if !ok || (ownerID != nil && row.CreatedByUserID != *ownerID) {
		return Item{}, itemNotFound(id)
	}
	return fromRow(row), nil
}

func (r *InMemoryRepository) TitleExists(ctx context.Context, ownerID int64, title string, excludeID int64) (bool, error) {
	exists := false
	r.store.Read(func() { exists = r.titleExistsLocked(ownerID, title, excludeID) })
	return exists, nil
}

func (r *InMemoryRepository) titleExistsLocked(ownerID int64, title string, excludeID int64) bool {
	for _, row := range r.store.Todos {
		if row.CreatedByUserID == ownerID && row.Title == title && row.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) CreateItem(ctx context.Context, item Item) (Item, error) {
	err := r.store.Write(func() error {
		if _, ok := r.store.Users[item.CreatedByUserID]; !ok {
			return ownerMissing(item.CreatedByUserID)
		}
		if r.titleExistsLocked(item.CreatedByUserID, item.Title, 0) {
			return titleExists(item.Title)
		}
		item.ID = r.store.NextTodoID()
		r.store.Todos[item.ID] = toRow(item)
		return nil
	})
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *InMemoryRepository) UpdateItem(ctx context.Context, item Item) (Item, error) {
	err := r.store.Write(func() error {
		if _, ok := r.store.Todos[item.ID]; !ok {
			return itemNotFound(item.ID)
		}
		if r.titleExistsLocked(item.CreatedByUserID, item.Title, item.ID) {
			return titleExists(item.Title)
		}
		r.store.Todos[item.ID] = toRow(item)
		return nil
	})
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *InMemoryRepository) DeleteItem(ctx context.Context, id int64) error {
	return r.store.Write(func() error {
		if _, ok := r.store.Todos[id]; !ok {
			return itemNotFound(id)
		}
		delete(r.store.Todos, id)
		return nil
	})
}
