package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"scholarship-test-service/internal/domain"
)

// UserStore persists accounts. Username and email are unique, compared case-insensitively.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
}

// SessionStore maps opaque tokens to user ids.
type SessionStore interface {
	Create(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}

type ServiceConfig struct {
	SessionTTL time.Duration
	BcryptCost int
}

// Service is the identity and session provider used by the HTTP layer.
type Service struct {
	users      UserStore
	sessions   SessionStore
	sessionTTL time.Duration
	bcryptCost int
}

func NewService(users UserStore, sessions SessionStore, cfg ServiceConfig) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		sessionTTL: cfg.SessionTTL,
		bcryptCost: cfg.BcryptCost,
	}
}

// RegisterInput carries a new account's fields.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return domain.User{}, fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	}
	if !strings.Contains(in.Email, "@") {
		return domain.User{}, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}

	if _, err := s.users.GetUserByUsername(ctx, in.Username); err == nil {
		return domain.User{}, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("lookup username: %w", err)
	}
	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		return domain.User{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.users.CreateUser(ctx, domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		IsAdmin:      in.IsAdmin,
	})
}

// Login verifies credentials and returns the user.
func (s *Service) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// CreateSession issues a new token for userID.
func (s *Service) CreateSession(ctx context.Context, userID int64) (string, time.Time, error) {
	token := uuid.NewString()
	if err := s.sessions.Create(ctx, token, userID, s.sessionTTL); err != nil {
		return "", time.Time{}, fmt.Errorf("create session: %w", err)
	}
	return token, time.Now().Add(s.sessionTTL), nil
}

// SessionUser resolves a token to its user, or ErrUnauthenticated.
func (s *Service) SessionUser(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, domain.ErrUnauthenticated
	}
	userID, err := s.sessions.Lookup(ctx, token)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.User{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup session: %w", err)
	}
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return user, err
}

// Logout drops a session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// EnsureAdmin creates the bootstrap admin account if it does not exist yet.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) (domain.User, error) {
	if existing, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return existing, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}
	return s.Register(ctx, RegisterInput{Username: username, Email: email, Password: password, IsAdmin: true})
}
