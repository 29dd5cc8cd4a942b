package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// ErrEmptyPassword is returned when signing up without a password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// Session carries the authenticated identity for the duration of a command.
type Session struct {
	AuthenticatedAt time.Time
	UserID          string
}

// Service is the credential store: it hashes passwords on the way in and
// verifies them on the way out.
type Service struct {
	users  service.UserStore
	hasher Hasher
	now    func() time.Time
}

// NewService creates a credential service over the given user store.
func NewService(users service.UserStore, hasher Hasher) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		now:    time.Now,
	}
}

// CreateUser registers username with a hash of password. It returns
// common.ErrDuplicateEntry when the username is taken.
func (s *Service) CreateUser(ctx context.Context, username, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	return s.users.CreateUser(ctx, username, hash)
}

// Authenticate returns the user when username and password match, and nil
// otherwise. An unknown user and a wrong password are indistinguishable.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, nil
	}

	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !s.hasher.Verify(user.PasswordHash, password) {
		slog.Debug("authentication failed", "username", username)
		return nil, nil
	}

	return user, nil
}

// Login authenticates and wraps the result in a Session. Mismatches yield
// common.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrInvalidCredentials
	}

	return &Session{
		UserID:          user.Username,
		AuthenticatedAt: s.now(),
	}, nil
}
