package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/safecity/incident-api/internal/core/domain"
	"github.com/safecity/incident-api/internal/core/ports"
	"github.com/safecity/incident-api/internal/pkg/password"
	"github.com/safecity/incident-api/internal/pkg/token"
)

// AuthService implements registration, login, and identity resolution.
type AuthService struct {
	users  ports.UserRepository
	issuer *token.Issuer
	logger zerolog.Logger
}

func NewAuthService(users ports.UserRepository, issuer *token.Issuer, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, issuer: issuer, logger: logger}
}

// Register validates the credentials, checks uniqueness (username
// case-sensitively, email case-insensitively), and persists a new user with
// role "user". The email is stored lower-cased.
func (s *AuthService) Register(ctx context.Context, username, email, pass string) (*ports.AuthResult, error) {
	username = strings.TrimSpace(username)

	if err := domain.ValidateNickname(username); err != nil {
		s.logger.Warn().Str("username", username).Err(err).Msg("registration rejected")
		return nil, err
	}
	if err := domain.ValidateEmail(email); err != nil {
		s.logger.Warn().Str("username", username).Err(err).Msg("registration rejected")
		return nil, err
	}
	if err := domain.ValidatePassword(pass); err != nil {
		s.logger.Warn().Str("username", username).Err(err).Msg("registration rejected")
		return nil, err
	}

	normalizedEmail := strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		s.logger.Warn().Str("username", username).Msg("registration rejected, username taken")
		return nil, domain.NewValidationError(domain.CodeUsernameExists, "Username already taken")
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, normalizedEmail); err == nil {
		s.logger.Warn().Str("username", username).Msg("registration rejected, email taken")
		return nil, domain.NewValidationError(domain.CodeEmailExists, "Email already registered")
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := password.Hash(pass)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        normalizedEmail,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsBanned:     false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to create user")
		return nil, err
	}

	tok, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return &ports.AuthResult{User: user, Token: tok}, nil
}

// Login authenticates the user and issues a token. Unknown usernames and
// wrong passwords fail identically so the response carries no enumeration
// signal; a banned account fails distinctly even on correct credentials.
func (s *AuthService) Login(ctx context.Context, username, pass string) (*ports.AuthResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Warn().Str("username", username).Msg("login failed, unknown user")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsBanned {
		s.logger.Warn().Str("user_id", user.ID).Msg("login failed, account banned")
		return nil, domain.ErrUserBanned
	}

	if !password.Verify(pass, user.PasswordHash) {
		s.logger.Warn().Str("user_id", user.ID).Msg("login failed, wrong password")
		return nil, domain.ErrInvalidCredentials
	}

	tok, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.AuthResult{User: user, Token: tok}, nil
}

// ResolveCurrentUser re-fetches the live user record for a verified token
// subject so role and ban changes since issuance are reflected.
func (s *AuthService) ResolveCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}
