// Package login owns password credentials: hashing, the password policy and
// verification at sign-in.
//
// Example:
//
//	provider := login.NewCredentialProvider(login.NewBcryptHasher(bcrypt.DefaultCost), login.DefaultPasswordPolicy())
//	hash, err := provider.CreateCredential(ctx, "alice", "secret1")
//	ok, err := provider.VerifyPassword(hash, "secret1")
package login
