package role

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tendant/simple-todo/pkg/database"
	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/metrics"
)

// Resetter clears the role table.
type Resetter interface {
	ClearRoles(ctx context.Context) error
}

// RoleService provides methods for role management
type RoleService struct {
	repo     RoleRepository
	tx       database.TxManager
	resetter Resetter
}

func NewRoleService(repo RoleRepository, tx database.TxManager, resetter Resetter) *RoleService {
	return &RoleService{
		repo:     repo,
		tx:       tx,
		resetter: resetter,
	}
}

func observe(operation string, err error) {
	metrics.ObserveOperation("role", operation, err)
}

// FindRoles returns every role ordered by id.
func (s *RoleService) FindRoles(ctx context.Context) (roles []Role, err error) {
	defer func() { observe("list", err) }()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		roles, err = s.repo.FindRoles(ctx)
		return err
	})
	return roles, errs.Ensure(err)
}

// GetRole retrieves a role by id
func (s *RoleService) GetRole(ctx context.Context, id int64) (role Role, err error) {
	defer func() { observe("get", err) }()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		role, err = s.repo.GetRoleByID(ctx, id)
		return err
	})
	return role, errs.Ensure(err)
}

// CreateRole adds a new role
func (s *RoleService) CreateRole(ctx context.Context, in CreateRoleInput) (role Role, err error) {
	defer func() { observe("create", err) }()

	if err = in.Validate(); err != nil {
		return Role{}, err
	}
	params := FromCreate(in)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		taken, err := s.repo.NameTaken(ctx, params.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return errs.Conflict(errs.ReasonRoleExists, "role name already exists").WithDetail("name", params.Name)
		}
		role, err = s.repo.CreateRole(ctx, params)
		return err
	})
	if err != nil {
		return Role{}, errs.Ensure(err)
	}

	slog.Info("Role created", "id", role.ID, "name", role.Name)
	return role, nil
}

// UpdateRole modifies an existing role
func (s *RoleService) UpdateRole(ctx context.Context, id int64, in UpdateRoleInput) (role Role, err error) {
	defer func() { observe("update", err) }()

	if err = in.Validate(); err != nil {
		return Role{}, err
	}
	name := strings.TrimSpace(in.Name)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetRoleByID(ctx, id); err != nil {
			return err
		}
		taken, err := s.repo.NameTaken(ctx, name, id)
		if err != nil {
			return err
		}
		if taken {
			return errs.Conflict(errs.ReasonRoleExists, "role name already exists").WithDetail("name", name)
		}
		role, err = s.repo.UpdateRole(ctx, UpdateRoleParams{
			ID:          id,
			Name:        name,
			Description: strings.TrimSpace(in.Description),
		})
		return err
	})
	if err != nil {
		return Role{}, errs.Ensure(err)
	}
	return role, nil
}

// DeleteRole removes a role. Roles still held by a user are kept and
// reported as RoleInUse.
func (s *RoleService) DeleteRole(ctx context.Context, id int64) (err error) {
	defer func() { observe("delete", err) }()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetRoleByID(ctx, id); err != nil {
			return err
		}
		count, err := s.repo.CountRoleUsers(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return errs.Conflict(errs.ReasonRoleInUse, "role is assigned to users").WithDetail("users", count)
		}
		return s.repo.DeleteRole(ctx, id)
	})
	if err != nil {
		return errs.Ensure(err)
	}

	slog.Info("Role deleted", "id", id)
	return nil
}

// GetRoleUsers lists the users holding a role
func (s *RoleService) GetRoleUsers(ctx context.Context, id int64) (users []RoleUser, err error) {
	defer func() { observe("users", err) }()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetRoleByID(ctx, id); err != nil {
			return err
		}
		users, err = s.repo.GetRoleUsers(ctx, id)
		return err
	})
	return users, errs.Ensure(err)
}

// DeleteAllRoles removes every role and every membership.
func (s *RoleService) DeleteAllRoles(ctx context.Context) (err error) {
	defer func() { observe("delete_all", err) }()

	if err = s.resetter.ClearRoles(ctx); err != nil {
		return errs.Ensure(err)
	}
	slog.Warn("All roles deleted")
	return nil
}
