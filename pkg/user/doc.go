// Package user manages user accounts and their role memberships.
//
// Every user holds at least one role. CreateUser assigns the configured
// default role when the caller names none, and UpdateUser reconciles the
// stored memberships against the requested set with Reconcile.
package user
