package user

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/memstore"
	"github.com/tendant/simple-todo/pkg/paging"
	"github.com/tendant/simple-todo/pkg/role"
)

// MockCredentialProvider is a mock implementation of CredentialProvider
type MockCredentialProvider struct {
	mock.Mock
}

func (m *MockCredentialProvider) CreateCredential(ctx context.Context, userName, password string) (string, error) {
	args := m.Called(ctx, userName, password)
	return args.String(0), args.Error(1)
}

type fixture struct {
	store *memstore.Store
	roles *role.InMemoryRoleRepository
	creds *MockCredentialProvider
	svc   *UserService
}

func newFixture(t *testing.T, roleNames ...string) *fixture {
	t.Helper()
	store := memstore.New()
	roles := role.NewInMemoryRoleRepository(store)
	for _, name := range roleNames {
		_, err := roles.CreateRole(context.Background(), role.CreateRoleParams{Name: name})
		require.NoError(t, err)
	}

	creds := new(MockCredentialProvider)
	creds.On("CreateCredential", mock.Anything, mock.Anything, mock.Anything).Return("hashed", nil).Maybe()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewUserService(NewInMemoryUserRepository(store), roles, store, creds, store,
		WithClock(func() time.Time { return now }),
	)
	return &fixture{store: store, roles: roles, creds: creds, svc: svc}
}

func (f *fixture) create(t *testing.T, name string, roles ...string) UserWithRoles {
	t.Helper()
	u, err := f.svc.CreateUser(context.Background(), CreateInput{
		UserName: name,
		Email:    name + "@example.com",
		Password: "secret1",
		RoleIds:  roles,
	})
	require.NoError(t, err)
	return u
}

func TestCreateUserAdminGhostScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	roleSvc := role.NewRoleService(f.roles, f.store, f.store)
	_, err := roleSvc.CreateRole(ctx, role.CreateRoleInput{Name: "Admin"})
	require.NoError(t, err)

	admin, err := f.svc.CreateUser(ctx, CreateInput{UserName: "alice", Email: "alice@example.com", Password: "secret1", RoleIds: []string{"Admin"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin"}, role.Names(admin.Roles))
	assert.Equal(t, "hashed", admin.PasswordHash)

	_, err = f.svc.CreateUser(ctx, CreateInput{UserName: "bob", Email: "bob@example.com", Password: "secret1", RoleIds: []string{"Ghost"}})
	require.True(t, errs.IsReason(err, errs.ReasonRoleNotFound))
	assert.Equal(t, []string{"Ghost"}, errs.GetDetails(err)["roles"])

	count, err := f.svc.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateUserDefaultRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u := f.create(t, "alice")
	assert.Equal(t, []string{DefaultRoleName}, role.Names(u.Roles))

	// The default role is created once and reused.
	f.create(t, "bob")
	all, err := f.roles.FindRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateUserRoleRefs(t *testing.T) {
	f := newFixture(t, "Admin", "Editor")

	u := f.create(t, "alice", "2", "admin", "Editor")
	assert.Equal(t, []string{"Admin", "Editor"}, role.Names(u.Roles))

	_, err := f.svc.CreateUser(context.Background(), CreateInput{
		UserName: "bob", Email: "bob@example.com", Password: "secret1", RoleIds: []string{"99", "Admin", "Ghost"},
	})
	require.True(t, errs.IsCode(err, errs.ErrCodeReferentialViolation))
	assert.Equal(t, []string{"99", "Ghost"}, errs.GetDetails(err)["roles"])
}

func TestCreateUserUniqueness(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "User")
	f.create(t, "alice")

	_, err := f.svc.CreateUser(ctx, CreateInput{UserName: "ALICE", Email: "other@example.com", Password: "secret1"})
	assert.True(t, errs.IsReason(err, errs.ReasonUserNameExists))

	_, err = f.svc.CreateUser(ctx, CreateInput{UserName: "carol", Email: "Alice@Example.com", Password: "secret1"})
	assert.True(t, errs.IsReason(err, errs.ReasonEmailExists))
}

func TestCreateUserValidation(t *testing.T) {
	f := newFixture(t, "User")

	_, err := f.svc.CreateUser(context.Background(), CreateInput{UserName: " ", Email: "not-an-email"})
	require.True(t, errs.IsCode(err, errs.ErrCodeValidationFailed))
	details := errs.GetDetails(err)
	assert.Contains(t, details, "userName")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	f.creds.AssertNotCalled(t, "CreateCredential", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateUserCredentialRejected(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	roles := role.NewInMemoryRoleRepository(store)
	creds := new(MockCredentialProvider)
	policyErr := errs.ValidationFailed(map[string]interface{}{"reasons": []string{"password is too short"}})
	creds.On("CreateCredential", mock.Anything, "alice", "x").Return("", policyErr).Once()

	svc := NewUserService(NewInMemoryUserRepository(store), roles, store, creds, store)
	_, err := svc.CreateUser(ctx, CreateInput{UserName: "alice", Email: "alice@example.com", Password: "x"})
	assert.Same(t, policyErr, err)
	creds.AssertExpectations(t)

	count, err := svc.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	stored, err := roles.FindRoles(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored, "default role must not be created for a rejected password")
}

// clearingCredentials starts a role reset while a create is in flight.
type clearingCredentials struct {
	store   *memstore.Store
	cleared chan struct{}
	early   bool
}

func (c *clearingCredentials) CreateCredential(ctx context.Context, userName, password string) (string, error) {
	go func() {
		defer close(c.cleared)
		_ = c.store.ClearRoles(context.Background())
	}()
	select {
	case <-c.cleared:
		c.early = true
	case <-time.After(50 * time.Millisecond):
	}
	return "hashed", nil
}

func TestCreateUserSerializedWithRoleReset(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	roles := role.NewInMemoryRoleRepository(store)
	_, err := roles.CreateRole(ctx, role.CreateRoleParams{Name: "Admin"})
	require.NoError(t, err)

	creds := &clearingCredentials{store: store, cleared: make(chan struct{})}
	svc := NewUserService(NewInMemoryUserRepository(store), roles, store, creds, store)

	created, err := svc.CreateUser(ctx, CreateInput{UserName: "alice", Email: "alice@example.com", Password: "secret1", RoleIds: []string{"Admin"}})
	require.NoError(t, err)
	assert.False(t, creds.early, "role reset ran inside the create")
	assert.Equal(t, []string{"Admin"}, role.Names(created.Roles))

	<-creds.cleared
	got, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Roles)
}

func TestUpdateUserRoles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "User", "Admin", "Editor")
	alice := f.create(t, "alice", "User", "Editor")

	t.Run("empty role set is rejected", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, alice.ID, UpdateInput{UserName: "alice2", RoleIds: []string{" "}})
		require.True(t, errs.IsCode(err, errs.ErrCodeInvalidState))
		assert.True(t, errs.IsReason(err, errs.ReasonNoRolesProvided))

		got, err := f.svc.GetUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.UserName)
		assert.Equal(t, []string{"User", "Editor"}, role.Names(got.Roles))
	})

	t.Run("unknown role leaves roles unchanged", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, alice.ID, UpdateInput{RoleIds: []string{"Admin", "Ghost"}})
		require.True(t, errs.IsReason(err, errs.ReasonRoleNotFound))

		got, err := f.svc.GetUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"User", "Editor"}, role.Names(got.Roles))
	})

	t.Run("reconciles memberships", func(t *testing.T) {
		updated, err := f.svc.UpdateUser(ctx, alice.ID, UpdateInput{RoleIds: []string{"admin", "USER"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"User", "Admin"}, role.Names(updated.Roles))
		assert.Equal(t, "alice", updated.UserName)
		assert.Equal(t, "alice@example.com", updated.Email)

		got, err := f.svc.GetUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"User", "Admin"}, role.Names(got.Roles))
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, 999, UpdateInput{RoleIds: []string{"User"}})
		assert.True(t, errs.IsReason(err, errs.ReasonUserNotFound))
	})
}

func TestUpdateUserIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "User")
	alice := f.create(t, "alice")
	f.create(t, "bob")

	_, err := f.svc.UpdateUser(ctx, alice.ID, UpdateInput{UserName: "BOB", RoleIds: []string{"User"}})
	assert.True(t, errs.IsReason(err, errs.ReasonUserNameExists))

	_, err = f.svc.UpdateUser(ctx, alice.ID, UpdateInput{Email: "bob@example.com", RoleIds: []string{"User"}})
	assert.True(t, errs.IsReason(err, errs.ReasonEmailExists))

	// Changing only the case of its own name is allowed.
	updated, err := f.svc.UpdateUser(ctx, alice.ID, UpdateInput{UserName: "Alice", Email: "alice@new.example.com", RoleIds: []string{"User"}})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.UserName)
	assert.Equal(t, "alice@new.example.com", updated.Email)
}

func TestFindUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "User", "Admin")
	f.create(t, "alice", "Admin", "User")
	f.create(t, "bob")
	f.create(t, "carol", "admin")

	t.Run("role names per user", func(t *testing.T) {
		page, err := f.svc.FindUsers(ctx, ListInput{Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Equal(t, 3, page.TotalCount)
		assert.Equal(t, []string{"User", "Admin"}, role.Names(page.Items[0].Roles))
		assert.Equal(t, []string{"User"}, role.Names(page.Items[1].Roles))
		assert.Equal(t, []string{"Admin"}, role.Names(page.Items[2].Roles))
	})

	t.Run("role filter ignores case", func(t *testing.T) {
		page, err := f.svc.FindUsers(ctx, ListInput{RoleName: "ADMIN", Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, page.TotalCount)
	})

	t.Run("unknown role gives empty page", func(t *testing.T) {
		page, err := f.svc.FindUsers(ctx, ListInput{RoleName: "Ghost", Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Zero(t, page.TotalCount)
		assert.Empty(t, page.Items)
	})

	t.Run("name and email filters", func(t *testing.T) {
		page, err := f.svc.FindUsers(ctx, ListInput{UserNameContains: "AR", EmailContains: "example", Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Equal(t, 1, page.TotalCount)
		assert.Equal(t, "carol", page.Items[0].UserName)
	})

	t.Run("paging", func(t *testing.T) {
		page, err := f.svc.FindUsers(ctx, ListInput{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, page.TotalCount)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "carol", page.Items[0].UserName)

		_, err = f.svc.FindUsers(ctx, ListInput{Page: 0, PageSize: 2})
		assert.True(t, errs.IsCode(err, errs.ErrCodeValidationFailed))
	})

	t.Run("page far past the end is empty", func(t *testing.T) {
		var page paging.Page[UserWithRoles]
		var err error
		require.NotPanics(t, func() {
			page, err = f.svc.FindUsers(ctx, ListInput{Page: math.MaxInt/50 + 2, PageSize: 50})
		})
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.Equal(t, 3, page.TotalCount)
	})
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "User")
	alice := f.create(t, "alice")
	require.NoError(t, f.store.Write(func() error {
		f.store.Todos[1] = memstore.TodoRow{ID: 1, Title: "Buy milk", CreatedByUserID: alice.ID}
		return nil
	}))

	require.NoError(t, f.svc.DeleteUser(ctx, alice.ID))
	assert.True(t, errs.IsReason(f.svc.DeleteUser(ctx, alice.ID), errs.ReasonUserNotFound))

	f.store.Read(func() {
		assert.Empty(t, f.store.Todos)
		assert.Empty(t, f.store.UserRoles)
	})
}

func TestDeleteAllUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "User")

	require.NoError(t, f.svc.DeleteAllUsers(ctx))
	f.create(t, "alice")
	require.NoError(t, f.svc.DeleteAllUsers(ctx))
	require.NoError(t, f.svc.DeleteAllUsers(ctx))

	ids, err := f.svc.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
