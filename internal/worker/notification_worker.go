package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/events"
	"github.com/brainrot-market/market-service/internal/repository"
)

// NotificationWorker turns domain events into notification log entries.
// Appends are best-effort; a failed write is logged and never surfaces
// to the operation that emitted the event.
type NotificationWorker struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationWorker builds the worker.
func NewNotificationWorker(notifications repository.NotificationRepository, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{notifications: notifications, logger: logger}
}

// Register subscribes the worker to every event type it translates.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventRoleChanged, w.onRoleChanged)
	dispatcher.Subscribe(events.EventUserBanned, w.onUserBanned)
	dispatcher.Subscribe(events.EventUserUnbanned, w.onUserUnbanned)
	dispatcher.Subscribe(events.EventUserWarned, w.onUserWarned)
	dispatcher.Subscribe(events.EventCreditGranted, w.onCreditGranted)
	dispatcher.Subscribe(events.EventTicketReplied, w.onTicketReplied)
	dispatcher.Subscribe(events.EventTicketClosed, w.onTicketClosed)
	dispatcher.Subscribe(events.EventThreadMessage, w.onThreadMessage)
	dispatcher.Subscribe(events.EventProductSold, w.onProductSold)
}

func (w *NotificationWorker) onRoleChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RoleChangedPayload)
	if !ok {
		return nil
	}
	return w.append(ctx, &domain.Notification{
		UserID: event.UserID,
		Kind:   domain.NotificationRole,
		Text:   fmt.Sprintf("Your role is now %s.", payload.NewRole),
	})
}

func (w *NotificationWorker) onUserBanned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserBannedPayload)
	if !ok {
		return nil
	}
	text := "Your account has been banned."
	if !payload.Permanent && payload.Until != nil {
		text = fmt.Sprintf("Your account is banned until %s.",
			payload.Until.UTC().Format(time.RFC1123))
	}
	return w.append(ctx, &domain.Notification{
		UserID: event.UserID,
		Kind:   domain.NotificationBan,
		Text:   text,
	})
}

func (w *NotificationWorker) onUserUnbanned(ctx context.Context, event events.Event) error {
	return w.append(ctx, &domain.Notification{
		UserID: event.UserID,
		Kind:   domain.NotificationBan,
		Text:   "Your account ban has been lifted.",
	})
}

func (w *NotificationWorker) onUserWarned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserWarnedPayload)
	if !ok {
		return nil
	}
	return w.append(ctx, &domain.Notification{
		UserID: event.UserID,
		Kind:   domain.NotificationWarn,
		Text:   fmt.Sprintf("You received a warning: %s", payload.Reason),
	})
}

func (w *NotificationWorker) onCreditGranted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CreditGrantedPayload)
	if !ok {
		return nil
	}
	text := fmt.Sprintf("%d RotCoins were added to your wallet.", payload.Credits)
	if payload.Credits < 0 {
		text = fmt.Sprintf("%d RotCoins were removed from your wallet.", -payload.Credits)
	}
	return w.append(ctx, &domain.Notification{
		UserID: event.UserID,
		Kind:   domain.NotificationCredit,
		Text:   text,
	})
}

func (w *NotificationWorker) onTicketReplied(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketRepliedPayload)
	if !ok {
		return nil
	}
	return w.append(ctx, &domain.Notification{
		UserID: event.UserID,
		Kind:   domain.NotificationTicket,
		Text:   fmt.Sprintf("Support replied to your ticket: %s", payload.BodyPreview),
	})
}

func (w *NotificationWorker) onTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return nil
	}
	text := "Your ticket has been closed."
	if payload.Reason != "" {
		text = fmt.Sprintf("Your ticket has been closed: %s", payload.Reason)
	}
	return w.append(ctx, &domain.Notification{
		UserID: event.UserID,
		Kind:   domain.NotificationTicket,
		Text:   text,
	})
}

func (w *NotificationWorker) onThreadMessage(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ThreadMessagePayload)
	if !ok {
		return nil
	}
	return w.append(ctx, &domain.Notification{
		UserID:   event.UserID,
		Kind:     domain.NotificationThread,
		Text:     fmt.Sprintf("%s: %s", event.Actor.Name, payload.BodyPreview),
		ThreadID: &payload.ThreadID,
	})
}

func (w *NotificationWorker) onProductSold(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ProductSoldPayload)
	if !ok {
		return nil
	}
	return w.append(ctx, &domain.Notification{
		UserID: event.UserID,
		Kind:   domain.NotificationSale,
		Text:   fmt.Sprintf("Your listing %q sold for %d RotCoins.", payload.Title, payload.Price),
	})
}

func (w *NotificationWorker) append(ctx context.Context, n *domain.Notification) error {
	if err := w.notifications.Append(ctx, n); err != nil {
		w.logger.Error("notification append failed",
			zap.String("user_id", n.UserID),
			zap.String("kind", string(n.Kind)),
			zap.Error(err))
		return err
	}
	return nil
}
