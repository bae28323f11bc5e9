package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/auth"
	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/repository"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// AuthService handles registration and login.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	logger *zap.Logger
}

// AuthDependencies bundles requirements for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *auth.TokenManager
	Logger   *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{users: deps.UserRepo, tokens: deps.Tokens, logger: deps.Logger}
}

// AuthResult carries the issued token alongside the account.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates an account with the default role and logs it in.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("invalid_email", "a valid email is required")
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("weak_password", "password must be at least 8 characters")
	}
	if displayName == "" {
		displayName = email[:strings.Index(email, "@")]
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email_taken", "an account with this email already exists")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("account registered", zap.String("user_id", user.ID))
	return s.issue(user)
}

// Login verifies credentials. Banned accounts authenticate but are
// rejected before a token is issued.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if user.IsBanned(time.Now()) {
		return nil, apperrors.NewAccountBanned(user.BannedUntil)
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
