// Package memstore is a process-local store with the same relational rules as
// the PostgreSQL schema: unique names, role memberships, cascading user deletes.
// Each domain package builds its in-memory repository on top of it.
package memstore

import (
	"context"
	"sync"
	"time"
)

type RoleRow struct {
	ID          int64
	Name        string
	Description string
}

type UserRow struct {
	ID           int64
	UserName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type TodoRow struct {
	ID              int64
	Title           string
	Description     string
	IsComplete      bool
	Created         time.Time
	Updated         time.Time
	CreatedByUserID int64
}

// Store holds every table. Repositories access the tables inside Read or
// Write; WithinTx serializes whole units of work, bulk clears included.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	Roles     map[int64]RoleRow
	Users     map[int64]UserRow
	UserRoles map[int64]map[int64]struct{} // userID -> roleIDs
	Todos     map[int64]TodoRow

	roleSeq int64
	userSeq int64
	todoSeq int64
}

func New() *Store {
	return &Store{
		Roles:     make(map[int64]RoleRow),
		Users:     make(map[int64]UserRow),
		UserRoles: make(map[int64]map[int64]struct{}),
		Todos:     make(map[int64]TodoRow),
	}
}

type txKey struct{}

// WithinTx runs fn while holding the unit-of-work lock. Nested calls join the
// outer unit. Writes made before fn fails are not undone.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == s {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, s))
}

// Read runs fn under the read lock.
func (s *Store) Read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// Write runs fn under the write lock.
func (s *Store) Write(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// NextRoleID must be called inside Write.
func (s *Store) NextRoleID() int64 {
	s.roleSeq++
	return s.roleSeq
}

// NextUserID must be called inside Write.
func (s *Store) NextUserID() int64 {
	s.userSeq++
	return s.userSeq
}

// NextTodoID must be called inside Write.
func (s *Store) NextTodoID() int64 {
	s.todoSeq++
	return s.todoSeq
}

// RoleIDsOf returns the role ids held by userID. Must be called inside Read or Write.
func (s *Store) RoleIDsOf(userID int64) []int64 {
	ids := make([]int64, 0, len(s.UserRoles[userID]))
	for id := range s.UserRoles[userID] {
		ids = append(ids, id)
	}
	return ids
}

// DeleteUserCascade removes a user with its memberships and todo items.
// Must be called inside Write.
func (s *Store) DeleteUserCascade(userID int64) {
	delete(s.Users, userID)
	delete(s.UserRoles, userID)
	for id, item := range s.Todos {
		if item.CreatedByUserID == userID {
			delete(s.Todos, id)
		}
	}
}

// ClearTodoItems removes every todo item and restarts its id sequence.
func (s *Store) ClearTodoItems(ctx context.Context) error {
	return s.WithinTx(ctx, func(context.Context) error {
		return s.Write(func() error {
			s.Todos = make(map[int64]TodoRow)
			s.todoSeq = 0
			return nil
		})
	})
}

// ClearUsers removes every user with their memberships and todo items.
func (s *Store) ClearUsers(ctx context.Context) error {
	return s.WithinTx(ctx, func(context.Context) error {
		return s.Write(func() error {
			s.Users = make(map[int64]UserRow)
			s.UserRoles = make(map[int64]map[int64]struct{})
			s.Todos = make(map[int64]TodoRow)
			s.userSeq = 0
			s.todoSeq = 0
			return nil
		})
	})
}

// ClearRoles removes every role and every membership.
func (s *Store) ClearRoles(ctx context.Context) error {
	return s.WithinTx(ctx, func(context.Context) error {
		return s.Write(func() error {
			s.Roles = make(map[int64]RoleRow)
			s.UserRoles = make(map[int64]map[int64]struct{})
			s.roleSeq = 0
			return nil
		})
	})
}
