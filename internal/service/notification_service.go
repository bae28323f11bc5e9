package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/repository"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// NotificationService reads and acknowledges a user's append-only
// notification log. Writing entries is the notification worker's job.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	logger        *zap.Logger
}

// NotificationDependencies bundles requirements for the notification service.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	Logger           *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		logger:        deps.Logger,
	}
}

// Inbox carries recent entries alongside the unread count.
type Inbox struct {
	Notifications []domain.Notification
	UnreadCount   int64
	Cursor        int64
}

// List returns the newest entries plus how many sit past the read cursor.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) (*Inbox, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	entries, err := s.notifications.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	unread, err := s.notifications.UnreadCount(ctx, userID, user.NotifCursor)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Inbox{Notifications: entries, UnreadCount: unread, Cursor: user.NotifCursor}, nil
}

// MarkAllRead moves the cursor to the newest entry. The cursor only
// moves forward, so racing acknowledgements are harmless.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	latest, err := s.notifications.LatestID(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if err := s.users.AdvanceNotifCursor(ctx, userID, latest); err != nil {
		return 0, apperrors.MapError(err)
	}
	return latest, nil
}

// MarkReadUpTo acknowledges everything up to the given entry id.
func (s *NotificationService) MarkReadUpTo(ctx context.Context, userID string, cursor int64) error {
	if cursor < 0 {
		return apperrors.NewValidationError("invalid_cursor", "cursor must be non-negative")
	}
	if err := s.users.AdvanceNotifCursor(ctx, userID, cursor); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
