package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-todo/pkg/database"
	"github.com/tendant/simple-todo/pkg/database/dbtest"
)

func count(t *testing.T, ctx context.Context, db database.DBTX, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&n))
	return n
}

func TestResetter(t *testing.T) {
	pool := dbtest.SetupTestDatabase(t)
	ctx := context.Background()
	resetter := database.NewResetter(pool)

	seed := func() {
		_, err := pool.Exec(ctx, `INSERT INTO roles (name) VALUES ('Admin')`)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `INSERT INTO users (user_name, email, password_hash) VALUES ('alice', 'alice@example.com', 'x')`)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES (1, 1)`)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `INSERT INTO todo_items (title, created, updated, created_by_user_id) VALUES ('Buy milk', now(), now(), 1)`)
		require.NoError(t, err)
	}
	seed()

	require.NoError(t, resetter.ClearTodoItems(ctx))
	assert.Equal(t, 0, count(t, ctx, pool, "todo_items"))
	assert.Equal(t, 1, count(t, ctx, pool, "users"))

	require.NoError(t, resetter.ClearRoles(ctx))
	assert.Equal(t, 0, count(t, ctx, pool, "roles"))
	assert.Equal(t, 0, count(t, ctx, pool, "user_roles"))
	assert.Equal(t, 1, count(t, ctx, pool, "users"))

	require.NoError(t, resetter.ClearUsers(ctx))
	assert.Equal(t, 0, count(t, ctx, pool, "users"))

	// Sequences restart, so ids line up again.
	seed()
	var id int64
	require.NoError(t, pool.QueryRow(ctx, `SELECT id FROM todo_items`).Scan(&id))
	assert.Equal(t, int64(1), id)
}
