package auth

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/tendant/simple-todo/pkg/database"
	errs "github.com/tendant/simple-todo/pkg/errors"
	"github.com/tendant/simple-todo/pkg/metrics"
	"github.com/tendant/simple-todo/pkg/role"
	"github.com/tendant/simple-todo/pkg/tokengenerator"
	"github.com/tendant/simple-todo/pkg/user"
)

// UserFinder loads accounts for sign-in.
type UserFinder interface {
	GetUserByUserName(ctx context.Context, userName string) (user.User, error)
	RolesForUsers(ctx context.Context, userIDs []int64) (map[int64][]role.Role, error)
}

// UserCreator creates accounts with the default role.
type UserCreator interface {
	CreateUser(ctx context.Context, in user.CreateInput) (user.UserWithRoles, error)
}

// PasswordVerifier checks a password against its stored hash. DummyHash is
// verified instead when the user does not exist.
type PasswordVerifier interface {
	VerifyPassword(hash, password string) (bool, error)
	DummyHash() string
}

// Session is the outcome of a successful login or registration.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      user.UserWithRoles
}

type Service struct {
	users    UserFinder
	creator  UserCreator
	verifier PasswordVerifier
	tokens   tokengenerator.TokenGenerator
	tx       database.TxManager
	expiry   time.Duration
}

func NewService(users UserFinder, creator UserCreator, verifier PasswordVerifier, tokens tokengenerator.TokenGenerator, tx database.TxManager, expiry time.Duration) *Service {
	return &Service{
		users:    users,
		creator:  creator,
		verifier: verifier,
		tokens:   tokens,
		tx:       tx,
		expiry:   expiry,
	}
}

func observe(operation string, err error) {
	metrics.ObserveOperation("auth", operation, err)
}

func invalidCredentials() *errs.Error {
	return errs.Unauthorized(errs.ReasonInvalidCredentials, "invalid user name or password")
}

// Login checks the password of userName and issues a token. Unknown users and
// wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (session Session, err error) {
	defer func() { observe("login", err) }()

	if err = in.Validate(); err != nil {
		return Session{}, err
	}

	var (
		account user.UserWithRoles
		known   bool
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.GetUserByUserName(ctx, in.UserName)
		if err != nil {
			if errs.IsCode(err, errs.ErrCodeNotFound) {
				return nil
			}
			return err
		}
		byUser, err := s.users.RolesForUsers(ctx, []int64{u.ID})
		if err != nil {
			return err
		}
		account = user.UserWithRoles{User: u, Roles: byUser[u.ID]}
		known = true
		return nil
	})
	if err != nil {
		return Session{}, errs.Ensure(err)
	}

	hash := account.PasswordHash
	if !known {
		hash = s.verifier.DummyHash()
	}
	ok, err := s.verifier.VerifyPassword(hash, in.Password)
	if err != nil {
		return Session{}, err
	}
	if !known || !ok {
		slog.Warn("Login failed", "user_name", in.UserName)
		return Session{}, invalidCredentials()
	}

	return s.issue(account)
}

// Register creates an account holding the default role and signs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (session Session, err error) {
	defer func() { observe("register", err) }()

	if err = in.Validate(); err != nil {
		return Session{}, err
	}

	account, err := s.creator.CreateUser(ctx, user.CreateInput{
		UserName: in.UserName,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		return Session{}, err
	}
	return s.issue(account)
}

func (s *Service) issue(account user.UserWithRoles) (Session, error) {
	token, expiresAt, err := s.tokens.GenerateToken(strconv.FormatInt(account.ID, 10), s.expiry, map[string]interface{}{
		"user_name": account.UserName,
		"email":     account.Email,
		"roles":     role.Names(account.Roles),
	})
	if err != nil {
		return Session{}, errs.InternalWrap(err, "failed to issue token")
	}

	slog.Info("Token issued", "user_id", account.ID, "expires_at", expiresAt)
	return Session{Token: token, ExpiresAt: expiresAt, User: account}, nil
}
