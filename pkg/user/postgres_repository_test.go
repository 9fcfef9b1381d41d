package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-todo/pkg/database"
	"github.com/tendant/simple-todo/pkg/database/dbtest"
	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/role"
)

func TestPostgresUserRepository(t *testing.T) {
	pool := dbtest.SetupTestDatabase(t)
	ctx := context.Background()

	roles := role.NewPostgresRoleRepository(pool)
	repo := NewPostgresUserRepository(pool)
	creds := new(MockCredentialProvider)
	creds.On("CreateCredential", mock.Anything, mock.Anything, mock.Anything).Return("hashed", nil)
	svc := NewUserService(repo, roles, database.NewPgxTxManager(pool), creds, nil)

	admin, err := roles.CreateRole(ctx, role.CreateRoleParams{Name: "Admin"})
	require.NoError(t, err)

	alice, err := svc.CreateUser(ctx, CreateInput{UserName: "alice", Email: "alice@example.com", Password: "secret1", RoleIds: []string{"Admin"}})
	require.NoError(t, err)
	bob, err := svc.CreateUser(ctx, CreateInput{UserName: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultRoleName}, role.Names(bob.Roles))

	t.Run("unique indexes ignore case", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, CreateUserParams{UserName: "ALICE", Email: "x@example.com", PasswordHash: "x"})
		assert.True(t, errs.IsReason(err, errs.ReasonUserNameExists))
		_, err = repo.CreateUser(ctx, CreateUserParams{UserName: "carol", Email: "BOB@example.com", PasswordHash: "x"})
		assert.True(t, errs.IsReason(err, errs.ReasonEmailExists))
	})

	t.Run("roles for users in one query", func(t *testing.T) {
		byUser, err := repo.RolesForUsers(ctx, []int64{alice.ID, bob.ID, 999})
		require.NoError(t, err)
		assert.Equal(t, []string{"Admin"}, role.Names(byUser[alice.ID]))
		assert.Equal(t, []string{DefaultRoleName}, role.Names(byUser[bob.ID]))
		assert.Empty(t, byUser[999])
	})

	t.Run("role filter", func(t *testing.T) {
		page, err := svc.FindUsers(ctx, ListInput{RoleName: "admin", Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Equal(t, 1, page.TotalCount)
		assert.Equal(t, "alice", page.Items[0].UserName)
	})

	t.Run("failed update keeps roles", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, alice.ID, UpdateInput{RoleIds: []string{"Ghost"}})
		require.True(t, errs.IsReason(err, errs.ReasonRoleNotFound))

		got, err := svc.GetUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Admin"}, role.Names(got.Roles))
	})

	t.Run("unknown role id is a referential violation", func(t *testing.T) {
		err := repo.AddUserRoles(ctx, alice.ID, []int64{admin.ID + 1000})
		assert.True(t, errs.IsCode(err, errs.ErrCodeReferentialViolation))
		assert.True(t, errs.IsReason(err, errs.ReasonRoleNotFound))
	})

	t.Run("delete cascades", func(t *testing.T) {
		require.NoError(t, svc.DeleteUser(ctx, bob.ID))
		ids, err := repo.ListUserIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{alice.ID}, ids)
	})
}
