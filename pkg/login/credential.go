package login

import (
	"context"
	"strings"
	"sync"

	errs "github.com/tendant/simple-todo/pkg/errors"
)

// CredentialProvider creates and checks password credentials.
type CredentialProvider struct {
	hasher PasswordHasher
	policy PasswordPolicy

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentialProvider(hasher PasswordHasher, policy PasswordPolicy) *CredentialProvider {
	return &CredentialProvider{
		hasher: hasher,
		policy: policy,
	}
}

// CreateCredential checks the password against the policy and returns its
// hash. Policy failures are VALIDATION_FAILED errors listing every reason.
func (p *CredentialProvider) CreateCredential(ctx context.Context, userName, password string) (string, error) {
	var reasons []string
	if strings.TrimSpace(userName) == "" {
		reasons = append(reasons, "user name is required")
	}
	reasons = append(reasons, p.policy.Check(password)...)
	if len(reasons) > 0 {
		return "", errs.ValidationFailed(map[string]interface{}{"reasons": reasons})
	}

	hash, err := p.hasher.Hash(password)
	if err != nil {
		return "", errs.InternalWrap(err, "failed to hash password")
	}
	return hash, nil
}

// VerifyPassword reports whether password matches hash.
func (p *CredentialProvider) VerifyPassword(hash, password string) (bool, error) {
	if hash == "" || password == "" {
		return false, nil
	}
	ok, err := p.hasher.Verify(password, hash)
	if err != nil {
		return false, errs.InternalWrap(err, "failed to verify password")
	}
	return ok, nil
}

// DummyHash returns a hash made with the configured hasher that no user
// password matches. Sign-in verifies against it for unknown users.
func (p *CredentialProvider) DummyHash() string {
	p.dummyOnce.Do(func() {
		hash, err := p.hasher.Hash("simple-todo:no-such-user")
		if err != nil {
			return
		}
		p.dummyHash = hash
	})
	return p.dummyHash
}
