package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-todo/pkg/database"
	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/role"
)

var userConstraints = database.Constraints{
	"users_user_name_lower_key": errs.ReasonUserNameExists,
	"users_email_lower_key":     errs.ReasonEmailExists,
	"user_roles_user_id_fkey":   errs.ReasonUserNotFound,
	"user_roles_role_id_fkey":   errs.ReasonRoleNotFound,
}

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, user_name, email, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.UserName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.UserNameContains != "" {
		args = append(args, "%"+likeEscaper.Replace(f.UserNameContains)+"%")
		conds = append(conds, fmt.Sprintf("user_name ILIKE $%d", len(args)))
	}
	if f.EmailContains != "" {
		args = append(args, "%"+likeEscaper.Replace(f.EmailContains)+"%")
		conds = append(conds, fmt.Sprintf("email ILIKE $%d", len(args)))
	}
	if f.RoleName != "" {
		args = append(args, f.RoleName)
		conds = append(conds, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM user_roles ur JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = users.id AND lower(r.name) = lower($%d))`, len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresUserRepository) FindUsers(ctx context.Context, f Filter) ([]User, int, error) {
	conn := database.Conn(ctx, r.pool)
	where, args := f.where()

	var total int
	if err := conn.QueryRow(ctx, `SELECT count(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, database.TranslateError(err, userConstraints)
	}

	args = append(args, f.Page.PageSize, f.Page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY id LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args))

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, database.TranslateError(err, userConstraints)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, database.TranslateError(err, userConstraints)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, database.TranslateError(err, userConstraints)
	}
	return users, total, nil
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, userNotFound(id)
	}
	return u, database.TranslateError(err, userConstraints)
}

func (r *PostgresUserRepository) GetUserByUserName(ctx context.Context, userName string) (User, error) {
	u, err := scanUser(database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(user_name) = lower($1)`, userName))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, errs.NotFound(errs.ReasonUserNotFound, "user not found").WithDetail("userName", userName)
	}
	return u, database.TranslateError(err, userConstraints)
}

func (r *PostgresUserRepository) UserNameTaken(ctx context.Context, userName string, excludeID int64) (bool, error) {
	var taken bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(user_name) = lower($1) AND id <> $2)`, userName, excludeID,
	).Scan(&taken)
	return taken, database.TranslateError(err, userConstraints)
}

func (r *PostgresUserRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1) AND id <> $2)`, email, excludeID,
	).Scan(&taken)
	return taken, database.TranslateError(err, userConstraints)
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	u, err := scanUser(database.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (user_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING `+userColumns,
		arg.UserName, arg.Email, arg.PasswordHash, arg.CreatedAt,
	))
	return u, database.TranslateError(err, userConstraints)
}

func (r *PostgresUserRepository) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	u, err := scanUser(database.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE users SET user_name = $2, email = $3, updated_at = $4
		WHERE id = $1
		RETURNING `+userColumns,
		arg.ID, arg.UserName, arg.Email, arg.UpdatedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, userNotFound(arg.ID)
	}
	return u, database.TranslateError(err, userConstraints)
}

func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return database.TranslateError(err, userConstraints)
	}
	if tag.RowsAffected() == 0 {
		return userNotFound(id)
	}
	return nil
}

func (r *PostgresUserRepository) RolesForUsers(ctx context.Context, userIDs []int64) (map[int64][]role.Role, error) {
	result := make(map[int64][]role.Role, len(userIDs))
	for _, id := range userIDs {
		result[id] = []role.Role{}
	}
	if len(userIDs) == 0 {
		return result, nil
	}

	rows, err := database.Conn(ctx, r.pool).Query(ctx, `
		SELECT ur.user_id, r.id, r.name, r.description
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = ANY($1)
		ORDER BY ur.user_id, r.id`, userIDs)
	if err != nil {
		return nil, database.TranslateError(err, userConstraints)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID int64
			rr     role.Role
		)
		if err := rows.Scan(&userID, &rr.ID, &rr.Name, &rr.Description); err != nil {
			return nil, database.TranslateError(err, userConstraints)
		}
		result[userID] = append(result[userID], rr)
	}
	return result, database.TranslateError(rows.Err(), userConstraints)
}

func (r *PostgresUserRepository) AddUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	if len(roleIDs) == 0 {
		return nil
	}
	_, err := database.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, unnest($2::BIGINT[])
		ON CONFLICT DO NOTHING`, userID, roleIDs)
	return database.TranslateError(err, userConstraints)
}

func (r *PostgresUserRepository) RemoveUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	if len(roleIDs) == 0 {
		return nil
	}
	_, err := database.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = ANY($2)`, userID, roleIDs)
	return database.TranslateError(err, userConstraints)
}

func (r *PostgresUserRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := database.Conn(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count)
	return count, database.TranslateError(err, userConstraints)
}

func (r *PostgresUserRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, database.TranslateError(err, userConstraints)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	return ids, database.TranslateError(err, userConstraints)
}
