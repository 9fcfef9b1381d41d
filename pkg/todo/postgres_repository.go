package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-todo/pkg/database"
	errs "github.com/tendant/simple-todo/pkg/errors"
)

var itemConstraints = database.Constraints{
	"todo_items_owner_title_key":         errs.ReasonTitleExists,
	"todo_items_created_by_user_id_fkey": errs.ReasonUserNotFound,
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const itemColumns = `id, title, description, is_complete, created, updated, created_by_user_id`

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.IsComplete,
		&item.Created,
		&item.Updated,
		&item.CreatedByUserID,
	)
	return item, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where builds the WHERE clause for f and returns it with its arguments.
func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.OwnerID != nil {
		args = append(args, *f.OwnerID)
		conds = append(conds, fmt.Sprintf("created_by_user_id = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(f.Search)+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if f.IsComplete != nil {
		args = append(args, *f.IsComplete)
		conds = append(conds, fmt.Sprintf("is_complete = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) FindItems(ctx context.Context, f Filter) ([]Item, int, error) {
	conn := database.Conn(ctx, r.pool)
	where, args := f.where()

	var total int
	if err := conn.QueryRow(ctx, `SELECT count(*) FROM todo_items`+where, args...).Scan(&total); err != nil {
		return nil, 0, database.TranslateError(err, itemConstraints)
	}

	args = append(args, f.Page.PageSize, f.Page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM todo_items%s ORDER BY id LIMIT $%d OFFSET $%d`,
		itemColumns, where, len(args)-1, len(args))

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, database.TranslateError(err, itemConstraints)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, database.TranslateError(err, itemConstraints)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, database.TranslateError(err, itemConstraints)
	}
	return items, total, nil
}

func (r *PostgresRepository) GetItem(ctx context.Context, id int64, ownerID *int64) (Item, error) {
	item, err := scanItem(database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+itemColumns+` FROM todo_items WHERE id = $1 AND ($2::BIGINT IS NULL OR created_by_user_id = $2)`,
		id, ownerID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, itemNotFound(id)
	}
	return item, database.TranslateError(err, itemConstraints)
}

func (r *PostgresRepository) TitleExists(ctx context.Context, ownerID int64, title string, excludeID int64) (bool, error) {
	var exists bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM todo_items WHERE created_by_user_id = $1 AND title = $2 AND id <> $3)`,
		ownerID, title, excludeID,
	).Scan(&exists)
	return exists, database.TranslateError(err, itemConstraints)
}

func (r *PostgresRepository) CreateItem(ctx context.Context, item Item) (Item, error) {
	created, err := scanItem(database.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO todo_items (title, description, is_complete, created, updated, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+itemColumns,
		item.Title, item.Description, item.IsComplete, item.Created, item.Updated, item.CreatedByUserID,
	))
	return created, database.TranslateError(err, itemConstraints)
}

func (r *PostgresRepository) UpdateItem(ctx context.Context, item Item) (Item, error) {
	updated, err := scanItem(database.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE todo_items
		SET title = $2, description = $3, is_complete = $4, updated = $5
		WHERE id = $1
		RETURNING `+itemColumns,
		item.ID, item.Title, item.Description, item.IsComplete, item.Updated,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, itemNotFound(item.ID)
	}
	return updated, database.TranslateError(err, itemConstraints)
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, id int64) error {
	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM todo_items WHERE id = $1`, id)
	if err != nil {
		return database.TranslateError(err, itemConstraints)
	}
	if tag.RowsAffected() == 0 {
		return itemNotFound(id)
	}
	return nil
}
