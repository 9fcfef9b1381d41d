package role

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-todo/pkg/database"
	errs "github.com/tendant/simple-todo/pkg/errors"
)

var roleConstraints = database.Constraints{
	"roles_name_lower_key":    errs.ReasonRoleExists,
	"user_roles_role_id_fkey": errs.ReasonRoleInUse,
}

// PostgresRoleRepository implements RoleRepository using PostgreSQL
type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRoleRepository creates a new PostgreSQL role repository
func NewPostgresRoleRepository(pool *pgxpool.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

const roleColumns = `id, name, description`

func scanRoles(rows pgx.Rows) ([]Role, error) {
	defer rows.Close()

	roles := []Role{}
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *PostgresRoleRepository) FindRoles(ctx context.Context) ([]Role, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY id`)
	if err != nil {
		return nil, database.TranslateError(err, roleConstraints)
	}
	roles, err := scanRoles(rows)
	return roles, database.TranslateError(err, roleConstraints)
}

func (r *PostgresRoleRepository) GetRoleByID(ctx context.Context, id int64) (Role, error) {
	var role Role
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE id = $1`, id,
	).Scan(&role.ID, &role.Name, &role.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, roleNotFound(id)
	}
	return role, database.TranslateError(err, roleConstraints)
}

func (r *PostgresRoleRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	var role Role
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE lower(name) = lower($1)`, name,
	).Scan(&role.ID, &role.Name, &role.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, errs.NotFound(errs.ReasonRoleNotFound, "role "+name+" not found").WithDetail("name", name)
	}
	return role, database.TranslateError(err, roleConstraints)
}

func (r *PostgresRoleRepository) GetRolesByNames(ctx context.Context, names []string) ([]Role, error) {
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}
	rows, err := database.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE lower(name) = ANY($1) ORDER BY id`, lowered)
	if err != nil {
		return nil, database.TranslateError(err, roleConstraints)
	}
	roles, err := scanRoles(rows)
	return roles, database.TranslateError(err, roleConstraints)
}

func (r *PostgresRoleRepository) GetRolesByIDs(ctx context.Context, ids []int64) ([]Role, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, database.TranslateError(err, roleConstraints)
	}
	roles, err := scanRoles(rows)
	return roles, database.TranslateError(err, roleConstraints)
}

func (r *PostgresRoleRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var taken bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM roles WHERE lower(name) = lower($1) AND id <> $2)`, name, excludeID,
	).Scan(&taken)
	return taken, database.TranslateError(err, roleConstraints)
}

func (r *PostgresRoleRepository) CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error) {
	var role Role
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO roles (name, description) VALUES ($1, $2) RETURNING `+roleColumns,
		arg.Name, arg.Description,
	).Scan(&role.ID, &role.Name, &role.Description)
	return role, database.TranslateError(err, roleConstraints)
}

func (r *PostgresRoleRepository) UpdateRole(ctx context.Context, arg UpdateRoleParams) (Role, error) {
	var role Role
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE roles SET name = $2, description = $3 WHERE id = $1 RETURNING `+roleColumns,
		arg.ID, arg.Name, arg.Description,
	).Scan(&role.ID, &role.Name, &role.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, roleNotFound(arg.ID)
	}
	return role, database.TranslateError(err, roleConstraints)
}

func (r *PostgresRoleRepository) DeleteRole(ctx context.Context, id int64) error {
	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == database.ForeignKeyViolation {
			return errs.Conflict(errs.ReasonRoleInUse, "role is assigned to users")
		}
		return database.TranslateError(err, roleConstraints)
	}
	if tag.RowsAffected() == 0 {
		return roleNotFound(id)
	}
	return nil
}

func (r *PostgresRoleRepository) CountRoleUsers(ctx context.Context, id int64) (int, error) {
	var count int
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT count(*) FROM user_roles WHERE role_id = $1`, id,
	).Scan(&count)
	return count, database.TranslateError(err, roleConstraints)
}

func (r *PostgresRoleRepository) GetRoleUsers(ctx context.Context, id int64) ([]RoleUser, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, `
		SELECT u.id, u.user_name, u.email
		FROM user_roles ur
		JOIN users u ON u.id = ur.user_id
		WHERE ur.role_id = $1
		ORDER BY u.id`, id)
	if err != nil {
		return nil, database.TranslateError(err, roleConstraints)
	}
	defer rows.Close()

	users := []RoleUser{}
	for rows.Next() {
		var u RoleUser
		if err := rows.Scan(&u.ID, &u.UserName, &u.Email); err != nil {
			return nil, database.TranslateError(err, roleConstraints)
		}
		users = append(users, u)
	}
	return users, database.TranslateError(rows.Err(), roleConstraints)
}
