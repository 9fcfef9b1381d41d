package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTxSerializesUnitsOfWork(t *testing.T) {
	s := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithinTx(context.Background(), func(ctx context.Context) error {
				v := counter
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestWithinTxNested(t *testing.T) {
	s := New()
	calls := 0
	err := s.WithinTx(context.Background(), func(ctx context.Context) error {
		return s.WithinTx(ctx, func(ctx context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithinTxCancelled(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WithinTx(ctx, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeleteUserCascade(t *testing.T) {
	s := New()
	require.NoError(t, s.Write(func() error {
		s.Users[1] = UserRow{ID: 1, UserName: "alice"}
		s.Users[2] = UserRow{ID: 2, UserName: "bob"}
		s.UserRoles[1] = map[int64]struct{}{7: {}}
		s.Todos[1] = TodoRow{ID: 1, CreatedByUserID: 1}
		s.Todos[2] = TodoRow{ID: 2, CreatedByUserID: 2}
		s.DeleteUserCascade(1)
		return nil
	}))

	s.Read(func() {
		assert.NotContains(t, s.Users, int64(1))
		assert.NotContains(t, s.UserRoles, int64(1))
		assert.NotContains(t, s.Todos, int64(1))
		assert.Contains(t, s.Todos, int64(2))
	})
}

func TestClearRestartsSequences(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Write(func() error {
		s.NextTodoID()
		s.NextTodoID()
		s.NextUserID()
		s.NextRoleID()
		return nil
	}))

	require.NoError(t, s.ClearTodoItems(ctx))
	require.NoError(t, s.ClearUsers(ctx))
	require.NoError(t, s.ClearRoles(ctx))

	require.NoError(t, s.Write(func() error {
		assert.Equal(t, int64(1), s.NextTodoID())
		assert.Equal(t, int64(1), s.NextUserID())
		assert.Equal(t, int64(1), s.NextRoleID())
		return nil
	}))
}

func TestClearWaitsForOpenUnitOfWork(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Write(func() error {
		s.Roles[s.NextRoleID()] = RoleRow{ID: 1, Name: "Admin"}
		return nil
	}))

	cleared := make(chan struct{})
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		go func() {
			defer close(cleared)
			assert.NoError(t, s.ClearRoles(context.Background()))
		}()

		select {
		case <-cleared:
			t.Fatal("roles cleared inside an open unit of work")
		case <-time.After(50 * time.Millisecond):
		}
		s.Read(func() { assert.Len(t, s.Roles, 1) })
		return nil
	})
	require.NoError(t, err)

	<-cleared
	s.Read(func() { assert.Empty(t, s.Roles) })
}

func TestClearJoinsEnclosingUnitOfWork(t *testing.T) {
	s := New()
	err := s.WithinTx(context.Background(), func(ctx context.Context) error {
		return s.ClearTodoItems(ctx)
	})
	assert.NoError(t, err)
}
