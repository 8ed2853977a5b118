package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/types"
)

// DBClient is the subset of db.Store the user service needs.
type DBClient interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*db.User, error)
	GetUserByUsername(ctx context.Context, username string) (*db.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// UserService provides business logic for user authentication operations
type UserService struct {
	db             DBClient
	passwordConfig *config.PasswordConfig

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db DBClient, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// Register creates a new user. A taken username returns *ErrUsernameTaken.
func (s *UserService) Register(ctx context.Context, username, password string) (*types.User, error) {
	username = normalizeUsername(username)

	exists, err := s.db.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	}
	if exists {
		return nil, &ErrUsernameTaken{Username: username}
	}

	passwordHash, err := s.passwordConfig.HashPassword(password)
	if err != nil {
		if errors.Is(err, config.ErrPasswordTooLong) {
			return nil, &ErrValidation{Field: "password", Message: "too long"}
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	dbUser, err := s.db.CreateUser(ctx, username, passwordHash)
	if err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, db.ErrUsernameTaken) {
			return nil, &ErrUsernameTaken{Username: username}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user := dbUser.Public()
	return &user, nil
}

// Login authenticates a user and returns user data. Unknown users and wrong
// passwords both return *ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, username, password string) (*types.User, error) {
	dbUser, err := s.db.GetUserByUsername(ctx, normalizeUsername(username))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	if dbUser == nil {
		// Spend the same bcrypt time as a real check so unknown names are not observable.
		s.passwordConfig.VerifyPassword(password, s.dummy())
		return nil, &ErrInvalidCredentials{}
	}

	if !s.passwordConfig.VerifyPassword(password, dbUser.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	user := dbUser.Public()
	return &user, nil
}

// TryRegister registers a user and reports false when the username is taken.
func (s *UserService) TryRegister(ctx context.Context, username, password string) (bool, error) {
	_, err := s.Register(ctx, username, password)
	var taken *ErrUsernameTaken
	if errors.As(err, &taken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate reports whether the username and password match a stored user.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	_, err := s.Login(ctx, username, password)
	var invalid *ErrInvalidCredentials
	if errors.As(err, &invalid) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.passwordConfig.HashPassword("not-a-real-password")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
