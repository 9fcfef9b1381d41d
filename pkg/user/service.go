package user

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tendant/simple-todo/pkg/database"
	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/metrics"
	"github.com/tendant/simple-todo/pkg/paging"
	"github.com/tendant/simple-todo/pkg/role"
)

const DefaultRoleName = "User"

// CredentialProvider turns a password into a stored credential, enforcing the
// password policy. Policy failures are VALIDATION_FAILED errors.
type CredentialProvider interface {
	CreateCredential(ctx context.Context, userName, password string) (string, error)
}

// Resetter clears the user table.
type Resetter interface {
	ClearUsers(ctx context.Context) error
}

// UserService provides methods for user management
type UserService struct {
	repo        UserRepository
	roles       role.RoleRepository
	tx          database.TxManager
	credentials CredentialProvider
	resetter    Resetter
	defaultRole string
	maxPageSize int
	now         func() time.Time
}

type Option func(*UserService)

// WithDefaultRole names the role given to users created without roles.
func WithDefaultRole(name string) Option {
	return func(s *UserService) {
		if name != "" {
			s.defaultRole = name
		}
	}
}

// WithMaxPageSize caps the page size of FindUsers.
func WithMaxPageSize(n int) Option {
	return func(s *UserService) {
		if n > 0 {
			s.maxPageSize = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) {
		s.now = now
	}
}

func NewUserService(repo UserRepository, roles role.RoleRepository, tx database.TxManager, credentials CredentialProvider, resetter Resetter, opts ...Option) *UserService {
	s := &UserService{
		repo:        repo,
		roles:       roles,
		tx:          tx,
		credentials: credentials,
		resetter:    resetter,
		defaultRole: DefaultRoleName,
		maxPageSize: paging.MaxPageSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func observe(operation string, err error) {
	metrics.ObserveOperation("user", operation, err)
}

func (s *UserService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// FindUsers lists users with their role names. Roles of the whole page are
// loaded with one lookup.
func (s *UserService) FindUsers(ctx context.Context, in ListInput) (page paging.Page[UserWithRoles], err error) {
	defer func() { observe("list", err) }()

	req, err := paging.Normalize(paging.Request{Page: in.Page, PageSize: in.PageSize}, s.maxPageSize)
	if err != nil {
		return paging.Page[UserWithRoles]{}, err
	}
	f := Filter{
		UserNameContains: strings.TrimSpace(in.UserNameContains),
		EmailContains:    strings.TrimSpace(in.EmailContains),
		RoleName:         strings.TrimSpace(in.RoleName),
		Page:             req,
	}

	var (
		users []UserWithRoles
		total int
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		found, n, err := s.repo.FindUsers(ctx, f)
		if err != nil {
			return err
		}
		ids := make([]int64, len(found))
		for i, u := range found {
			ids[i] = u.ID
		}
		byUser, err := s.repo.RolesForUsers(ctx, ids)
		if err != nil {
			return err
		}
		users = make([]UserWithRoles, len(found))
		for i, u := range found {
			users[i] = UserWithRoles{User: u, Roles: byUser[u.ID]}
		}
		total = n
		return nil
	})
	if err != nil {
		return paging.Page[UserWithRoles]{}, errs.Ensure(err)
	}
	return paging.New(users, total, req), nil
}

// GetUser retrieves a user with its roles
func (s *UserService) GetUser(ctx context.Context, id int64) (user UserWithRoles, err error) {
	defer func() { observe("get", err) }()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err = s.loadUser(ctx, id)
		return err
	})
	return user, errs.Ensure(err)
}

func (s *UserService) loadUser(ctx context.Context, id int64) (UserWithRoles, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return UserWithRoles{}, err
	}
	byUser, err := s.repo.RolesForUsers(ctx, []int64{id})
	if err != nil {
		return UserWithRoles{}, err
	}
	return UserWithRoles{User: u, Roles: byUser[id]}, nil
}

// CreateUser adds a user holding the requested roles, or the default role
// when none is requested.
func (s *UserService) CreateUser(ctx context.Context, in CreateInput) (user UserWithRoles, err error) {
	defer func() { observe("create", err) }()

	if err = in.Validate(); err != nil {
		return UserWithRoles{}, err
	}
	userName := strings.TrimSpace(in.UserName)
	email := strings.TrimSpace(in.Email)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkUnique(ctx, userName, email, 0); err != nil {
			return err
		}

		hash, err := s.credentials.CreateCredential(ctx, userName, in.Password)
		if err != nil {
			return err
		}

		roles, err := s.initialRoles(ctx, in.RoleIds)
		if err != nil {
			return err
		}

		created, err := s.repo.CreateUser(ctx, FromCreate(in, hash, s.timestamp()))
		if err != nil {
			return err
		}
		if err := s.repo.AddUserRoles(ctx, created.ID, roleIDs(roles)); err != nil {
			return err
		}
		user = UserWithRoles{User: created, Roles: roles}
		return nil
	})
	if err != nil {
		return UserWithRoles{}, errs.Ensure(err)
	}

	slog.Info("User created", "id", user.ID, "user_name", user.UserName, "roles", role.Names(user.Roles))
	return user, nil
}

// UpdateUser changes user name and email when given and reconciles the role
// memberships with RoleIds. Nothing is written unless every check passes.
func (s *UserService) UpdateUser(ctx context.Context, id int64, in UpdateInput) (user UserWithRoles, err error) {
	defer func() { observe("update", err) }()

	if err = in.Validate(); err != nil {
		return UserWithRoles{}, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.loadUser(ctx, id)
		if err != nil {
			return err
		}

		if len(nonBlank(in.RoleIds)) == 0 {
			return errs.InvalidState(errs.ReasonNoRolesProvided, "a user must hold at least one role")
		}
		desired, err := s.resolveRoles(ctx, in.RoleIds)
		if err != nil {
			return err
		}

		userName, email := current.UserName, current.Email
		if v := strings.TrimSpace(in.UserName); v != "" {
			userName = v
		}
		if v := strings.TrimSpace(in.Email); v != "" {
			email = v
		}
		if err := s.checkUnique(ctx, userName, email, id); err != nil {
			return err
		}

		diff := Reconcile(role.Names(current.Roles), role.Names(desired))
		updated := current.User
		if userName != current.UserName || email != current.Email || !diff.Empty() {
			updated, err = s.repo.UpdateUser(ctx, UpdateUserParams{
				ID:        id,
				UserName:  userName,
				Email:     email,
				UpdatedAt: s.timestamp(),
			})
			if err != nil {
				return err
			}
		}

		if err := s.repo.RemoveUserRoles(ctx, id, roleIDs(pick(current.Roles, diff.ToRemove))); err != nil {
			return err
		}
		if err := s.repo.AddUserRoles(ctx, id, roleIDs(pick(desired, diff.ToAdd))); err != nil {
			return err
		}

		if !diff.Empty() {
			slog.Info("User roles reconciled", "id", id, "added", diff.ToAdd, "removed", diff.ToRemove)
		}
		user = UserWithRoles{User: updated, Roles: desired}
		return nil
	})
	if err != nil {
		return UserWithRoles{}, errs.Ensure(err)
	}
	return user, nil
}

// DeleteUser removes a user with its memberships and todo items.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (err error) {
	defer func() { observe("delete", err) }()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.DeleteUser(ctx, id)
	})
	if err != nil {
		return errs.Ensure(err)
	}

	slog.Info("User deleted", "id", id)
	return nil
}

// DeleteAllUsers removes every user, membership and todo item.
func (s *UserService) DeleteAllUsers(ctx context.Context) (err error) {
	defer func() { observe("delete_all", err) }()

	if err = s.resetter.ClearUsers(ctx); err != nil {
		return errs.Ensure(err)
	}
	slog.Warn("All users deleted")
	return nil
}

// ListUserIDs returns the ids of every user in ascending order.
func (s *UserService) ListUserIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.repo.ListUserIDs(ctx)
	return ids, errs.Ensure(err)
}

// CountUsers returns the number of stored users.
func (s *UserService) CountUsers(ctx context.Context) (int, error) {
	n, err := s.repo.CountUsers(ctx)
	return n, errs.Ensure(err)
}

func (s *UserService) checkUnique(ctx context.Context, userName, email string, excludeID int64) error {
	taken, err := s.repo.UserNameTaken(ctx, userName, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return userNameExists(userName)
	}
	taken, err = s.repo.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return emailExists(email)
	}
	return nil
}

// resolveRoles looks up role references given as names (ignoring case) or
// numeric ids. Every reference must resolve; the result is ordered by id.
func (s *UserService) resolveRoles(ctx context.Context, refs []string) ([]role.Role, error) {
	refs = nonBlank(refs)

	var ids []int64
	for _, ref := range refs {
		if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	byName, err := s.roles.GetRolesByNames(ctx, refs)
	if err != nil {
		return nil, err
	}
	var byID []role.Role
	if len(ids) > 0 {
		if byID, err = s.roles.GetRolesByIDs(ctx, ids); err != nil {
			return nil, err
		}
	}

	resolved := make(map[int64]role.Role, len(refs))
	var missing []string
	for _, ref := range refs {
		r, ok := matchRef(ref, byName, byID)
		if !ok {
			missing = append(missing, ref)
			continue
		}
		resolved[r.ID] = r
	}
	if len(missing) > 0 {
		return nil, errs.ReferentialViolation(errs.ReasonRoleNotFound, "roles not found: "+strings.Join(missing, ", ")).
			WithDetail("roles", missing)
	}

	roles := make([]role.Role, 0, len(resolved))
	for _, r := range resolved {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles, nil
}

func matchRef(ref string, byName, byID []role.Role) (role.Role, bool) {
	for _, r := range byName {
		if strings.EqualFold(r.Name, ref) {
			return r, true
		}
	}
	for _, r := range byID {
		if strconv.FormatInt(r.ID, 10) == ref {
			return r, true
		}
	}
	return role.Role{}, false
}

// initialRoles resolves refs, falling back to the default role when refs is empty.
func (s *UserService) initialRoles(ctx context.Context, refs []string) ([]role.Role, error) {
	if len(nonBlank(refs)) > 0 {
		return s.resolveRoles(ctx, refs)
	}
	r, err := s.ensureDefaultRole(ctx)
	if err != nil {
		return nil, err
	}
	return []role.Role{r}, nil
}

func (s *UserService) ensureDefaultRole(ctx context.Context) (role.Role, error) {
	r, err := s.roles.GetRoleByName(ctx, s.defaultRole)
	if err == nil {
		return r, nil
	}
	if !errs.IsCode(err, errs.ErrCodeNotFound) {
		return role.Role{}, err
	}
	slog.Info("Creating default role", "name", s.defaultRole)
	return s.roles.CreateRole(ctx, role.CreateRoleParams{Name: s.defaultRole, Description: "Default role for new users"})
}

func nonBlank(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref = strings.TrimSpace(ref); ref != "" {
			out = append(out, ref)
		}
	}
	return out
}

// pick returns the roles whose names appear in names, ignoring case.
func pick(roles []role.Role, names []string) []role.Role {
	want := foldSet(names)
	var out []role.Role
	for _, r := range roles {
		if _, ok := want[strings.ToLower(r.Name)]; ok {
			out = append(out, r)
		}
	}
	return out
}

func roleIDs(roles []role.Role) []int64 {
	ids := make([]int64, len(roles))
	for i, r := range roles {
		ids[i] = r.ID
	}
	return ids
}
