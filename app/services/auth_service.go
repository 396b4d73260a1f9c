package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/app/auth"
	"inkwell/app/models"
	"inkwell/app/repositories"
)

// ErrInvalidCredentials is returned when a login does not match an account.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService manages author accounts and their sessions
type AuthService struct {
	userRepo repositories.UserRepository
	issuer   *auth.Issuer
	revoker  auth.Revoker
	now      func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.UserRepository, issuer *auth.Issuer, revoker auth.Revoker) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		issuer:   issuer,
		revoker:  revoker,
		now:      time.Now,
	}
}

// Session is a signed token together with its decoded claims.
type Session struct {
	Token  string
	Claims *auth.Claims
	User   *models.User
}

// Register creates an author account
func (s *AuthService) Register(in UserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, fieldError("username", "is already taken")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login checks credentials and issues a session token
func (s *AuthService) Login(in Credentials) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(in.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.issuer.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Session{Token: token, Claims: claims, User: user}, nil
}

// Verify parses a token and rejects logged out ones
func (s *AuthService) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, auth.ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the token until it would have expired
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// SessionTTL is how long issued tokens stay valid.
func (s *AuthService) SessionTTL() time.Duration {
	return s.issuer.TTL()
}
