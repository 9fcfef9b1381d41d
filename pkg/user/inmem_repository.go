package user

import (
	"context"
	"sort"
	"strings"

	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/memstore"
	"github.com/tendant/simple-todo/pkg/role"
)

// InMemoryUserRepository implements UserRepository on a memstore.Store
type InMemoryUserRepository struct {
	store *memstore.Store
}

func NewInMemoryUserRepository(store *memstore.Store) *InMemoryUserRepository {
	return &InMemoryUserRepository{store: store}
}

func fromRow(row memstore.UserRow) User {
	return User(row)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// matchesLocked must be called inside Read.
func (r *InMemoryUserRepository) matchesLocked(f Filter, row memstore.UserRow) bool {
	if f.UserNameContains != "" && !containsFold(row.UserName, f.UserNameContains) {
		return false
	}
	if f.EmailContains != "" && !containsFold(row.Email, f.EmailContains) {
		return false
	}
	if f.RoleName != "" {
		for roleID := range r.store.UserRoles[row.ID] {
			if rr, ok := r.store.Roles[roleID]; ok && strings.EqualFold(rr.Name, f.RoleName) {
				return true
			}
		}
		return false
	}
	return true
}

func (r *InMemoryUserRepository) FindUsers(ctx context.Context, f Filter) ([]User, int, error) {
	matched := []User{}
	r.store.Read(func() {
		for _, row := range r.store.Users {
			if r.matchesLocked(f, row) {
				matched = append(matched, fromRow(row))
			}
		}
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	start, end := f.Page.Window(len(matched))
	return matched[start:end], len(matched), nil
}

func (r *InMemoryUserRepository) GetUserByID(ctx context.Context, id int64) (User, error) {
	var (
		row memstore.UserRow
		ok  bool
	)
	r.store.Read(func() { row, ok = r.store.Users[id] })
	if !ok {
		return User{}, userNotFound(id)
	}
	return fromRow(row), nil
}

func (r *InMemoryUserRepository) GetUserByUserName(ctx context.Context, userName string) (User, error) {
	var (
		found User
		ok    bool
	)
	r.store.Read(func() {
		for _, row := range r.store.Users {
			if strings.EqualFold(row.UserName, userName) {
				found, ok = fromRow(row), true
				return
			}
		}
	})
	if !ok {
		return User{}, errs.NotFound(errs.ReasonUserNotFound, "user not found").WithDetail("userName", userName)
	}
	return found, nil
}

func (r *InMemoryUserRepository) UserNameTaken(ctx context.Context, userName string, excludeID int64) (bool, error) {
	taken := false
	r.store.Read(func() { taken = r.takenLocked(excludeID, func(u memstore.UserRow) string { return u.UserName }, userName) })
	return taken, nil
}

func (r *InMemoryUserRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	taken := false
	r.store.Read(func() { taken = r.takenLocked(excludeID, func(u memstore.UserRow) string { return u.Email }, email) })
	return taken, nil
}

func (r *InMemoryUserRepository) takenLocked(excludeID int64, field func(memstore.UserRow) string, value string) bool {
	for _, row := range r.store.Users {
		if row.ID != excludeID && strings.EqualFold(field(row), value) {
			return true
		}
	}
	return false
}

// checkUniqueLocked mirrors the unique indexes on lower(user_name) and lower(email).
func (r *InMemoryUserRepository) checkUniqueLocked(id int64, userName, email string) error {
	if r.takenLocked(id, func(u memstore.UserRow) string { return u.UserName }, userName) {
		return userNameExists(userName)
	}
	if r.takenLocked(id, func(u memstore.UserRow) string { return u.Email }, email) {
		return emailExists(email)
	}
	return nil
}

func (r *InMemoryUserRepository) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	var created User
	err := r.store.Write(func() error {
		if err := r.checkUniqueLocked(0, arg.UserName, arg.Email); err != nil {
			return err
		}
		row := memstore.UserRow{
			ID:           r.store.NextUserID(),
			UserName:     arg.UserName,
			Email:        arg.Email,
			PasswordHash: arg.PasswordHash,
			CreatedAt:    arg.CreatedAt,
			UpdatedAt:    arg.CreatedAt,
		}
		r.store.Users[row.ID] = row
		created = fromRow(row)
		return nil
	})
	return created, err
}

func (r *InMemoryUserRepository) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	var updated User
	err := r.store.Write(func() error {
		row, ok := r.store.Users[arg.ID]
		if !ok {
			return userNotFound(arg.ID)
		}
		if err := r.checkUniqueLocked(arg.ID, arg.UserName, arg.Email); err != nil {
			return err
		}
		row.UserName = arg.UserName
		row.Email = arg.Email
		row.UpdatedAt = arg.UpdatedAt
		r.store.Users[arg.ID] = row
		updated = fromRow(row)
		return nil
	})
	return updated, err
}

func (r *InMemoryUserRepository) DeleteUser(ctx context.Context, id int64) error {
	return r.store.Write(func() error {
		if _, ok := r.store.Users[id]; !ok {
			return userNotFound(id)
		}
		r.store.DeleteUserCascade(id)
		return nil
	})
}

func (r *InMemoryUserRepository) RolesForUsers(ctx context.Context, userIDs []int64) (map[int64][]role.Role, error) {
	result := make(map[int64][]role.Role, len(userIDs))
	r.store.Read(func() {
		for _, userID := range userIDs {
			roles := []role.Role{}
			for _, roleID := range r.store.RoleIDsOf(userID) {
				if row, ok := r.store.Roles[roleID]; ok {
					roles = append(roles, role.Role{ID: row.ID, Name: row.Name, Description: row.Description})
				}
			}
			sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
			result[userID] = roles
		}
	})
	return result, nil
}

func (r *InMemoryUserRepository) AddUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	return r.store.Write(func() error {
		if _, ok := r.store.Users[userID]; !ok {
			return errs.ReferentialViolation(errs.ReasonUserNotFound, "user does not exist").WithDetail("id", userID)
		}
		for _, roleID := range roleIDs {
			if _, ok := r.store.Roles[roleID]; !ok {
				return errs.ReferentialViolation(errs.ReasonRoleNotFound, "role does not exist").WithDetail("id", roleID)
			}
		}
		held, ok := r.store.UserRoles[userID]
		if !ok {
			held = make(map[int64]struct{}, len(roleIDs))
			r.store.UserRoles[userID] = held
		}
		for _, roleID := range roleIDs {
			held[roleID] = struct{}{}
		}
		return nil
	})
}

func (r *InMemoryUserRepository) RemoveUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	return r.store.Write(func() error {
		held := r.store.UserRoles[userID]
		for _, roleID := range roleIDs {
			delete(held, roleID)
		}
		return nil
	})
}

func (r *InMemoryUserRepository) CountUsers(ctx context.Context) (int, error) {
	count := 0
	r.store.Read(func() { count = len(r.store.Users) })
	return count, nil
}

func (r *InMemoryUserRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	r.store.Read(func() {
		ids = make([]int64, 0, len(r.store.Users))
		for id := range r.store.Users {
			ids = append(ids, id)
		}
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
