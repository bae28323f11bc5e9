package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/repository"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// UserService exposes profile and wallet operations for the signed-in user.
type UserService struct {
	users        repository.UserRepository
	transactions repository.TransactionRepository
	logger       *zap.Logger
}

// UserDependencies bundles requirements for the user service.
type UserDependencies struct {
	UserRepo        repository.UserRepository
	TransactionRepo repository.TransactionRepository
	Logger          *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:        deps.UserRepo,
		transactions: deps.TransactionRepo,
		logger:       deps.Logger,
	}
}

// GetProfile loads the account by id.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateProfile changes the display name and avatar.
func (s *UserService) UpdateProfile(ctx context.Context, userID, displayName, avatarURL string) (*domain.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apperrors.NewValidationError("missing_display_name", "display name is required")
	}
	if len(displayName) > 64 {
		return nil, apperrors.NewValidationError("display_name_too_long", "display name must be 64 characters or fewer")
	}
	if err := s.users.UpdateProfile(ctx, userID, displayName, avatarURL); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.GetProfile(ctx, userID)
}

// Wallet groups the balance with recent movements.
type Wallet struct {
	Balance      int64
	Transactions []domain.Transaction
}

// GetWallet returns the current balance and transaction history.
func (s *UserService) GetWallet(ctx context.Context, userID string, limit, offset int) (*Wallet, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	history, err := s.transactions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Wallet{Balance: user.Balance, Transactions: history}, nil
}
