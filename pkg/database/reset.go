package database

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Resetter empties whole tables and restarts their id sequences. Tables that
// reference the cleared one are emptied with it.
type Resetter struct {
	pool *pgxpool.Pool
}

func NewResetter(pool *pgxpool.Pool) *Resetter {
	return &Resetter{pool: pool}
}

func (r *Resetter) truncate(ctx context.Context, table string) error {
	if _, err := Conn(ctx, r.pool).Exec(ctx, "TRUNCATE "+table+" RESTART IDENTITY CASCADE"); err != nil {
		return TranslateError(err, nil)
	}
	slog.Info("Table cleared", "table", table)
	return nil
}

func (r *Resetter) ClearTodoItems(ctx context.Context) error {
	return r.truncate(ctx, "todo_items")
}

// ClearUsers also removes role memberships and todo items.
func (r *Resetter) ClearUsers(ctx context.Context) error {
	return r.truncate(ctx, "users")
}

// ClearRoles also removes role memberships.
func (r *Resetter) ClearRoles(ctx context.Context) error {
	return r.truncate(ctx, "roles")
}
