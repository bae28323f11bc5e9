package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/brainrot-market/market-service/internal/api/dto"
	"github.com/brainrot-market/market-service/internal/auth"
	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/service"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// TicketsHandler manages support ticket endpoints for owners and staff.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	ticket, err := h.service.Open(c.UserContext(), principal.User, req.Title, req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	limit, offset := parsePage(c)
	tickets, err := h.service.ListMine(c.UserContext(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, messages, err := h.service.Get(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, messages)})
}

// Reply POST /api/tickets/:id/messages.
func (h *TicketsHandler) Reply(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TicketMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	msg, err := h.service.Reply(c.UserContext(), principal.User, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketMessageResponse(msg)})
}

// CloseTicket POST /api/tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CloseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid_payload", "malformed request body")
	}
	if err := h.service.Close(c.UserContext(), principal.User, c.Params("id"), req.Reason); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Queue GET /api/admin/tickets. Staff queue, defaults to open+pending.
func (h *TicketsHandler) Queue(c *fiber.Ctx) error {
	var statuses []domain.TicketStatus
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			statuses = append(statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	limit, offset := parsePage(c)
	tickets, err := h.service.ListQueue(c.UserContext(), statuses, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// DeleteTicket DELETE /api/admin/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

func ticketSummaries(tickets []domain.Ticket) []dto.TicketSummary {
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return items
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:        ticket.ID,
		OwnerID:   ticket.OwnerID,
		Title:     ticket.Title,
		Status:    string(ticket.Status),
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, messages []domain.TicketMessage) dto.TicketDetailResponse {
	msgs := make([]dto.TicketMessageResponse, 0, len(messages))
	for i := range messages {
		msgs = append(msgs, ticketMessageResponse(&messages[i]))
	}
	return dto.TicketDetailResponse{
		ID:          ticket.ID,
		OwnerID:     ticket.OwnerID,
		Title:       ticket.Title,
		Body:        ticket.Body,
		Status:      string(ticket.Status),
		CloseReason: ticket.CloseReason,
		ClosedAt:    ticket.ClosedAt,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		Messages:    msgs,
	}
}

func ticketMessageResponse(msg *domain.TicketMessage) dto.TicketMessageResponse {
	return dto.TicketMessageResponse{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		SenderRole: string(msg.SenderRole),
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
	}
}
