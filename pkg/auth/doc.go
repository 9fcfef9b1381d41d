// Package auth signs users in and registers new accounts.
//
// Both operations return a bearer token whose claims are read back by
// client.AuthUserMiddleware: "sub" carries the user id and "extra_claims"
// the user name, email and role names.
package auth
