package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetshop/inventory-api/internal/core/domain"
	"github.com/sweetshop/inventory-api/internal/core/ports"
	"github.com/sweetshop/inventory-api/internal/core/validation"
)

// AuthService implements registration, login and token authentication.
type AuthService struct {
	repo   ports.AuthRepository
	tokens ports.TokenManager
	hasher ports.PasswordHasher
	guard  ports.LoginGuard
	log    zerolog.Logger
}

func NewAuthService(
	repo ports.AuthRepository,
	tokens ports.TokenManager,
	hasher ports.PasswordHasher,
	guard ports.LoginGuard,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, hasher: hasher, guard: guard, log: log}
}

// Register creates an account. The caller may ask for the admin role.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, *domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validation.Struct(&in); err != nil {
		return "", nil, err
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}

	if _, err := s.repo.FindByUsername(ctx, in.Username); err == nil {
		return "", nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return "", nil, domain.ErrUserExists
		}
		return "", nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return "", nil, fmt.Errorf("register: issue token: %w", err)
	}

	if role == domain.RoleAdmin {
		s.log.Warn().Str("username", created.Username).Msg("account self-registered with admin role")
	}
	s.log.Info().Str("user_id", created.ID).Str("role", role).Msg("account registered")

	return token, created, nil
}

// Login checks credentials. Unknown users and wrong passwords produce the same
// error so callers cannot probe for usernames.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, domain.NewValidationError(missingFields(username, password)...)
	}

	subject := loginSubject(ctx, username)
	blocked, err := s.guard.Blocked(ctx, subject)
	if err != nil {
		s.log.Warn().Err(err).Str("subject", subject).Msg("login guard check failed, continuing")
	} else if blocked {
		return "", nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, subject)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		s.recordFailure(ctx, subject)
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := s.guard.Reset(ctx, subject); err != nil {
		s.log.Warn().Err(err).Str("subject", subject).Msg("failed to reset login guard")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("login: issue token: %w", err)
	}
	return token, user, nil
}

// Authenticate verifies the token and loads the account it names, so role
// changes and removed accounts take effect without revoking tokens.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrAccountGone
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return user, nil
}

func (s *AuthService) recordFailure(ctx context.Context, subject string) {
	if err := s.guard.RecordFailure(ctx, subject); err != nil {
		s.log.Warn().Err(err).Str("subject", subject).Msg("failed to record login failure")
	}
}

// loginSubject scopes failure counting to the username and, when known, the
// client address.
func loginSubject(ctx context.Context, username string) string {
	if ip := ports.ClientIP(ctx); ip != "" {
		return username + "@" + ip
	}
	return username
}

func missingFields(username, password string) []domain.FieldError {
	var fields []domain.FieldError
	if username == "" {
		fields = append(fields, domain.FieldError{Field: "username", Message: "username is required"})
	}
	if password == "" {
		fields = append(fields, domain.FieldError{Field: "password", Message: "password is required"})
	}
	return fields
}
