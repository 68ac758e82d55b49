package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"smartinventory/internal/model"
	"smartinventory/internal/repository"
	"smartinventory/internal/session"
)

const minPasswordLen = 6

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// AuthService handles accounts and bearer sessions.
type AuthService interface {
	// Register creates an account and logs it in.
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	// Logout drops the session; unknown tokens are ignored.
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a bearer token to its user. Expired sessions are deleted.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users      repository.UserRepository
	sessions   session.Store
	ttl        time.Duration
	bcryptCost int
	log        *zap.Logger
	now        func() time.Time
}

// NewAuthService constructs an AuthService. A zero bcryptCost uses bcrypt.DefaultCost.
func NewAuthService(users repository.UserRepository, sessions session.Store, ttl time.Duration, bcryptCost int, log *zap.Logger) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		users:      users,
		sessions:   sessions,
		ttl:        ttl,
		bcryptCost: bcryptCost,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func validUsername(u string) bool {
	return u != "" && !strings.ContainsAny(u, " @")
}

func validEmail(e string) bool {
	return e != "" && strings.Contains(e, "@") && strings.Contains(e, ".")
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)

	if !validUsername(username) || !validEmail(email) || len(password) < minPasswordLen {
		return nil, ErrRegisterFailed
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	})
	if err != nil {
		// the lookups above race with concurrent registrations; the unique index decides
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			if dup.Field == "email" {
				return nil, ErrEmailInUse
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user_registered", zap.String("user_id", user.ID))
	return s.openSession(ctx, user)
}

func (s *authService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, ErrLoginFailed
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}
	return s.openSession(ctx, user)
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	sess, err := s.sessions.Get(ctx, token)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.log.Warn("session_cleanup_failed", zap.Error(err))
		}
		return nil, ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, sess.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *authService) openSession(ctx context.Context, user *model.User) (*AuthResult, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	sess := &model.Session{Token: token, UserID: user.ID, ExpiresAt: s.now().Add(s.ttl)}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: sess.ExpiresAt, User: *user}, nil
}

// newToken returns 32 random bytes, base64url encoded.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
