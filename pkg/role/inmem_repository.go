package role

import (
	"context"
	"sort"
	"strings"

	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/memstore"
)

// InMemoryRoleRepository implements RoleRepository on a memstore.Store
type InMemoryRoleRepository struct {
	store *memstore.Store
}

// NewInMemoryRoleRepository creates a new in-memory role repository
func NewInMemoryRoleRepository(store *memstore.Store) *InMemoryRoleRepository {
	return &InMemoryRoleRepository{store: store}
}

func fromRow(row memstore.RoleRow) Role {
	return Role{ID: row.ID, Name: row.Name, Description: row.Description}
}

func sortRoles(roles []Role) {
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
}

// FindRoles returns all roles ordered by id
func (r *InMemoryRoleRepository) FindRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	r.store.Read(func() {
		roles = make([]Role, 0, len(r.store.Roles))
		for _, row := range r.store.Roles {
			roles = append(roles, fromRow(row))
		}
	})
	sortRoles(roles)
	return roles, nil
}

func (r *InMemoryRoleRepository) GetRoleByID(ctx context.Context, id int64) (Role, error) {
	var (
		row memstore.RoleRow
		ok  bool
	)
	r.store.Read(func() { row, ok = r.store.Roles[id] })
	if !ok {
		return Role{}, roleNotFound(id)
	}
	return fromRow(row), nil
}

func (r *InMemoryRoleRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	roles, _ := r.GetRolesByNames(ctx, []string{name})
	if len(roles) == 0 {
		return Role{}, errs.NotFound(errs.ReasonRoleNotFound, "role "+name+" not found").WithDetail("name", name)
	}
	return roles[0], nil
}

func (r *InMemoryRoleRepository) GetRolesByNames(ctx context.Context, names []string) ([]Role, error) {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[strings.ToLower(n)] = struct{}{}
	}

	roles := []Role{}
	r.store.Read(func() {
		for _, row := range r.store.Roles {
			if _, ok := wanted[strings.ToLower(row.Name)]; ok {
				roles = append(roles, fromRow(row))
			}
		}
	})
	sortRoles(roles)
	return roles, nil
}

func (r *InMemoryRoleRepository) GetRolesByIDs(ctx context.Context, ids []int64) ([]Role, error) {
	roles := []Role{}
	r.store.Read(func() {
		seen := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if row, ok := r.store.Roles[id]; ok {
				roles = append(roles, fromRow(row))
			}
		}
	})
	sortRoles(roles)
	return roles, nil
}

func (r *InMemoryRoleRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	taken := false
	r.store.Read(func() { taken = r.nameTakenLocked(name, excludeID) })
	return taken, nil
}

func (r *InMemoryRoleRepository) nameTakenLocked(name string, excludeID int64) bool {
	for _, row := range r.store.Roles {
		if row.ID != excludeID && strings.EqualFold(row.Name, name) {
			return true
		}
	}
	return false
}

func (r *InMemoryRoleRepository) CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error) {
	var created Role
	err := r.store.Write(func() error {
		if r.nameTakenLocked(arg.Name, 0) {
			return errs.Conflict(errs.ReasonRoleExists, "role name already exists")
		}
		row := memstore.RoleRow{ID: r.store.NextRoleID(), Name: arg.Name, Description: arg.Description}
		r.store.Roles[row.ID] = row
		created = fromRow(row)
		return nil
	})
	return created, err
}

func (r *InMemoryRoleRepository) UpdateRole(ctx context.Context, arg UpdateRoleParams) (Role, error) {
	var updated Role
	err := r.store.Write(func() error {
		if _, ok := r.store.Roles[arg.ID]; !ok {
			return roleNotFound(arg.ID)
		}
		if r.nameTakenLocked(arg.Name, arg.ID) {
			return errs.Conflict(errs.ReasonRoleExists, "role name already exists")
		}
		row := memstore.RoleRow{ID: arg.ID, Name: arg.Name, Description: arg.Description}
		r.store.Roles[arg.ID] = row
		updated = fromRow(row)
		return nil
	})
	return updated, err
}

func (r *InMemoryRoleRepository) DeleteRole(ctx context.Context, id int64) error {
	return r.store.Write(func() error {
		if _, ok := r.store.Roles[id]; !ok {
			return roleNotFound(id)
		}
		for _, roles := range r.store.UserRoles {
			if _, held := roles[id]; held {
				return errs.Conflict(errs.ReasonRoleInUse, "role is assigned to users")
			}
		}
		delete(r.store.Roles, id)
		return nil
	})
}

func (r *InMemoryRoleRepository) CountRoleUsers(ctx context.Context, id int64) (int, error) {
	count := 0
	r.store.Read(func() {
		for _, roles := range r.store.UserRoles {
			if _, held := roles[id]; held {
				count++
			}
		}
	})
	return count, nil
}

func (r *InMemoryRoleRepository) GetRoleUsers(ctx context.Context, id int64) ([]RoleUser, error) {
	users := []RoleUser{}
	r.store.Read(func() {
		for userID, roles := range r.store.UserRoles {
			if _, held := roles[id]; !held {
				continue
			}
			if u, ok := r.store.Users[userID]; ok {
				users = append(users, RoleUser{ID: u.ID, UserName: u.UserName, Email: u.Email})
			}
		}
	})
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
