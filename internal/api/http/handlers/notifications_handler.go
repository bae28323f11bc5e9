package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brainrot-market/market-service/internal/api/dto"
	"github.com/brainrot-market/market-service/internal/auth"
	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/service"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// NotificationsHandler exposes the inbox endpoints.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// Inbox GET /api/notifications.
func (h *NotificationsHandler) Inbox(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	inbox, err := h.service.List(c.UserContext(), principal.User.ID, parseInt(c.Query("limit"), 50))
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(inbox.Notifications))
	for i := range inbox.Notifications {
		items = append(items, notificationResponse(&inbox.Notifications[i]))
	}
	return c.JSON(fiber.Map{"data": dto.InboxResponse{
		Notifications: items,
		UnreadCount:   inbox.UnreadCount,
		Cursor:        inbox.Cursor,
	}})
}

// MarkRead POST /api/notifications/read. With a cursor in the body only
// entries up to it are acknowledged; without one, everything is.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.MarkReadRequest
	_ = c.BodyParser(&req)

	if req.Cursor != nil {
		if err := h.service.MarkReadUpTo(c.UserContext(), principal.User.ID, *req.Cursor); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.MarkReadResponse{Cursor: *req.Cursor}})
	}

	cursor, err := h.service.MarkAllRead(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MarkReadResponse{Cursor: cursor}})
}

func notificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		Kind:      string(n.Kind),
		Text:      n.Text,
		ThreadID:  n.ThreadID,
		CreatedAt: n.CreatedAt,
	}
}
