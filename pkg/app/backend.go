package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-todo/pkg/database"
	"github.com/tendant/simple-todo/pkg/memstore"
	"github.com/tendant/simple-todo/pkg/role"
	"github.com/tendant/simple-todo/pkg/todo"
	"github.com/tendant/simple-todo/pkg/user"
)

// Backend is the storage a deployment runs on.
type Backend struct {
	Tx    database.TxManager
	Todos todo.Repository
	Users user.UserRepository
	Roles role.RoleRepository

	TodoResetter todo.Resetter
	UserResetter user.Resetter
	RoleResetter role.Resetter

	// Nil means always healthy.
	HealthCheck func(ctx context.Context) error
}

// MemoryBackend keeps every table in process memory.
func MemoryBackend() Backend {
	store := memstore.New()
	return Backend{
		Tx:           store,
		Todos:        todo.NewInMemoryRepository(store),
		Users:        user.NewInMemoryUserRepository(store),
		Roles:        role.NewInMemoryRoleRepository(store),
		TodoResetter: store,
		UserResetter: store,
		RoleResetter: store,
	}
}

// PostgresBackend stores everything in the database behind pool.
func PostgresBackend(pool *pgxpool.Pool) Backend {
	resetter := database.NewResetter(pool)
	return Backend{
		Tx:           database.NewPgxTxManager(pool),
		Todos:        todo.NewPostgresRepository(pool),
		Users:        user.NewPostgresUserRepository(pool),
		Roles:        role.NewPostgresRoleRepository(pool),
		TodoResetter: resetter,
		UserResetter: resetter,
		RoleResetter: resetter,
		HealthCheck: func(ctx context.Context) error {
			return database.HealthCheck(ctx, pool)
		},
	}
}
