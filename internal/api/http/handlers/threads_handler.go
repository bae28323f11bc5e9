package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brainrot-market/market-service/internal/api/dto"
	"github.com/brainrot-market/market-service/internal/auth"
	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/service"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// ThreadsHandler manages message thread endpoints.
type ThreadsHandler struct {
	service *service.ThreadService
}

// NewThreadsHandler constructs handler.
func NewThreadsHandler(threadService *service.ThreadService) *ThreadsHandler {
	return &ThreadsHandler{service: threadService}
}

// CreateThread POST /api/threads.
func (h *ThreadsHandler) CreateThread(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateThreadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}

	var thread *domain.Thread
	var err error
	if req.Broadcast {
		if !principal.Role.IsStaff() {
			return apperrors.NewForbidden("only staff may start broadcast threads")
		}
		thread, err = h.service.StartBroadcast(c.UserContext(), principal.User, req.Message)
	} else {
		thread, err = h.service.Start(c.UserContext(), principal.User, req.ParticipantIDs, req.Message)
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": threadSummary(thread)})
}

// ListThreads GET /api/threads.
func (h *ThreadsHandler) ListThreads(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	limit, offset := parsePage(c)
	threads, err := h.service.List(c.UserContext(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ThreadSummary, 0, len(threads))
	for i := range threads {
		items = append(items, threadSummary(&threads[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetThread GET /api/threads/:id.
func (h *ThreadsHandler) GetThread(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	thread, messages, err := h.service.Get(c.UserContext(), principal.User, c.Params("id"), parseInt(c.Query("limit"), 50))
	if err != nil {
		return err
	}
	msgs := make([]dto.ThreadMessageResponse, 0, len(messages))
	for i := range messages {
		msgs = append(msgs, threadMessageResponse(&messages[i]))
	}
	return c.JSON(fiber.Map{"data": dto.ThreadDetailResponse{
		ThreadSummary:  threadSummary(thread),
		ParticipantIDs: thread.ParticipantIDs,
		Messages:       msgs,
	}})
}

// SendMessage POST /api/threads/:id/messages.
func (h *ThreadsHandler) SendMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ThreadMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	msg, err := h.service.Send(c.UserContext(), principal.User, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": threadMessageResponse(msg)})
}

func threadSummary(thread *domain.Thread) dto.ThreadSummary {
	return dto.ThreadSummary{
		ID:                thread.ID,
		CreatedBy:         thread.CreatedBy,
		Broadcast:         thread.Broadcast,
		LastMessageText:   thread.LastMessageText,
		LastMessageSender: thread.LastMessageSender,
		LastMessageAt:     thread.LastMessageAt,
		CreatedAt:         thread.CreatedAt,
	}
}

func threadMessageResponse(msg *domain.ThreadMessage) dto.ThreadMessageResponse {
	return dto.ThreadMessageResponse{
		ID:         msg.ID,
		ThreadID:   msg.ThreadID,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
	}
}
