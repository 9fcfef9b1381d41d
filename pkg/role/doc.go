// Package role manages the roles that can be granted to users.
//
// Role names are unique ignoring case. A role that is still held by a user
// cannot be deleted.
//
// # Basic Usage
//
//	repo := role.NewPostgresRoleRepository(pool)
//	service := role.NewRoleService(repo, database.NewPgxTxManager(pool), resetter)
//
//	created, err := service.CreateRole(ctx, role.CreateRoleInput{Name: "Editor"})
//	if errors.IsReason(err, errors.ReasonRoleExists) {
//		// name already taken
//	}
//
//	users, err := service.GetRoleUsers(ctx, created.ID)
package role
