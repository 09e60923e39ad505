package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/expense-tracker-be/internal/auth"
	"github.com/isdelr/expense-tracker-be/internal/models"
	"github.com/isdelr/expense-tracker-be/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// SignupInput is the registration payload.
type SignupInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginResult is what a successful login hands back to the transport layer.
type LoginResult struct {
	User      models.User
	Token     string
	ExpiresAt time.Time
}

// AuthServiceProvider defines the interface for authentication services.
type AuthServiceProvider interface {
	Signup(ctx context.Context, input SignupInput) (models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	ResolveIdentity(ctx context.Context, token string) (*models.User, error)
}

// AuthService provides registration, login and session checks.
type AuthService struct {
	users   repository.UserRepository
	tokens  *auth.TokenManager
	revoker auth.Revoker
}

// NewAuthService creates a new AuthService. A nil revoker keeps sessions
// stateless. tokens may be nil for callers that only register users.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, revoker auth.Revoker) *AuthService {
	if revoker == nil {
		revoker = auth.NopRevoker{}
	}
	return &AuthService{users: users, tokens: tokens, revoker: revoker}
}

// NormalizeEmail is the canonical form used to store and look up emails.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup validates the input, hashes the password and stores a new user.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (models.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = NormalizeEmail(input.Email)

	if err := check(signupRules(input), signupMessage); err != nil {
		return models.User{}, err
	}

	_, err := s.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return models.User{}, &ConflictError{Message: msgUserExists}
	case !errors.Is(err, repository.ErrNotFound):
		return models.User{}, &StorageError{Op: "find user", Err: err}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		// Lost a race with a concurrent signup for the same address.
		if errors.Is(err, repository.ErrDuplicate) {
			return models.User{}, &ConflictError{Message: msgUserExists}
		}
		return models.User{}, &StorageError{Op: "create user", Err: err}
	}

	log.Info().Str("user_id", user.ID).Msg("User registered")
	return user.Sanitized(), nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if s.tokens == nil {
		return nil, errors.New("token issuing is not configured")
	}

	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		log.Debug().Msg("Login rejected: unknown email")
		return nil, &AuthError{Message: msgInvalidCredentials}
	}
	if err != nil {
		return nil, &StorageError{Op: "find user", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Debug().Str("user_id", user.ID).Msg("Login rejected: wrong password")
		return nil, &AuthError{Message: msgInvalidCredentials}
	}

	token, expiresAt, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user.Sanitized(), Token: token, ExpiresAt: expiresAt}, nil
}

// Logout ends the session carried by token. The caller clears the cookie;
// with a revocation backend the token is also rejected from now on.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return &AuthError{Message: msgNotLoggedIn}
	}
	if s.tokens == nil {
		return nil
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		// Nothing to revoke: the token is unusable anyway.
		return nil
	}
	if err := s.revoker.Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
		return &StorageError{Op: "revoke token", Err: err}
	}
	return nil
}

// ResolveIdentity maps a session token to its user, without password hash.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, &AuthError{Message: msgNoToken}
	}
	if s.tokens == nil {
		return nil, &AuthError{Message: msgBadToken}
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, &AuthError{Message: msgBadToken}
	}

	revoked, err := s.revoker.IsRevoked(ctx, token)
	if err != nil {
		return nil, &StorageError{Op: "check token revocation", Err: err}
	}
	if revoked {
		return nil, &AuthError{Message: msgBadToken}
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &AuthError{Message: msgUserGone}
	}
	if err != nil {
		return nil, &StorageError{Op: "find user", Err: err}
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}
