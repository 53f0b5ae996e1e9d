package service

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"

	"taskapi/internal/domain"
	"taskapi/internal/logger"
	"taskapi/internal/repository"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore is the credential store used by AuthService.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

// AuthService implements registration and login.
type AuthService struct {
	users  UserStore
	hasher PasswordHasher
	tokens *TokenService

	// dummyHash is compared against when the email is unknown, so that a
	// failed lookup costs the same as a wrong password.
	dummyHash string
}

func NewAuthService(users UserStore, hasher PasswordHasher, tokens *TokenService) (*AuthService, error) {
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, oops.Code("AUTH_INIT_FAILED").Wrap(err)
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, dummyHash: dummy}, nil
}

// Register creates a user and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return "", oops.Code("USER_EMAIL_TAKEN").Wrap(repository.ErrEmailTaken)
	case !errors.Is(err, repository.ErrUserNotFound):
		return "", err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	u := &domain.User{Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", err
	}

	logger.WithContext(ctx).Info("user registered", "user_id", u.ID)
	return token, nil
}

// Login verifies the credentials and returns a fresh session token. Unknown
// emails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		s.hasher.Verify(password, s.dummyHash)
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		logger.WithContext(ctx).Debug("login rejected", "user_id", u.ID)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", err
	}
	return token, nil
}
