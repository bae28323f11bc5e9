package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/events"
	"github.com/brainrot-market/market-service/internal/repository"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

const messagePreviewLen = 80

// TicketService drives the support ticket flow. Owners see only their
// own tickets; staff see the shared queue and may reply, close or
// delete.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{tickets: deps.TicketRepo, dispatcher: deps.Dispatcher, logger: deps.Logger}
}

// Open creates a ticket in the open state with the body as its first message.
func (s *TicketService) Open(ctx context.Context, owner *domain.User, title, body string) (*domain.Ticket, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" {
		return nil, apperrors.NewValidationError("missing_title", "ticket title is required")
	}
	if body == "" {
		return nil, apperrors.NewValidationError("missing_body", "ticket body is required")
	}

	ticket := &domain.Ticket{
		OwnerID: owner.ID,
		Title:   title,
		Body:    body,
		Status:  domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tickets.AddMessage(ctx, &domain.TicketMessage{
		TicketID:   ticket.ID,
		SenderID:   owner.ID,
		SenderName: displayNameOf(owner),
		SenderRole: owner.Role,
		Body:       body,
	}); err != nil {
		s.logger.Warn("ticket: initial message write failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
	return ticket, nil
}

// Get returns the ticket with its messages, enforcing ownership for
// non-staff callers.
func (s *TicketService) Get(ctx context.Context, viewer *domain.User, id string) (*domain.Ticket, []domain.TicketMessage, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if ticket.OwnerID != viewer.ID && !viewer.Role.IsStaff() {
		return nil, nil, apperrors.NewForbidden("not your ticket")
	}
	messages, err := s.tickets.ListMessages(ctx, id)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, messages, nil
}

// ListMine returns the caller's tickets.
func (s *TicketService) ListMine(ctx context.Context, ownerID string, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListQueue returns the staff queue, defaulting to open and pending.
func (s *TicketService) ListQueue(ctx context.Context, statuses []domain.TicketStatus, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByStatuses(ctx, statuses, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Reply appends a message. A staff reply moves an open ticket to
// pending and notifies the owner; an owner reply reopens a pending one.
func (s *TicketService) Reply(ctx context.Context, sender *domain.User, ticketID, body string) (*domain.TicketMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("missing_body", "message body is required")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewConflict("ticket_closed", "cannot reply to a closed ticket")
	}
	staff := sender.Role.IsStaff()
	if ticket.OwnerID != sender.ID && !staff {
		return nil, apperrors.NewForbidden("not your ticket")
	}

	msg := &domain.TicketMessage{
		TicketID:   ticket.ID,
		SenderID:   sender.ID,
		SenderName: displayNameOf(sender),
		SenderRole: sender.Role,
		Body:       body,
	}
	if err := s.tickets.AddMessage(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	next := ticket.Status
	if staff && ticket.Status == domain.TicketStatusOpen {
		next = domain.TicketStatusPending
	} else if !staff && ticket.Status == domain.TicketStatusPending {
		next = domain.TicketStatusOpen
	}
	if next != ticket.Status {
		if err := s.tickets.SetStatus(ctx, ticket.ID, next); err != nil {
			s.logger.Warn("ticket: status transition failed",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}

	if staff && ticket.OwnerID != sender.ID {
		s.publish(ctx, events.Event{
			Type:   events.EventTicketReplied,
			UserID: ticket.OwnerID,
			Actor:  actorOf(sender),
			Payload: events.TicketRepliedPayload{
				TicketID:    ticket.ID,
				BodyPreview: preview(body),
			},
		})
	}
	return msg, nil
}

// Close resolves the ticket and notifies the owner.
func (s *TicketService) Close(ctx context.Context, actor *domain.User, ticketID, reason string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if ticket.OwnerID != actor.ID && !actor.Role.IsStaff() {
		return apperrors.NewForbidden("not your ticket")
	}
	if ticket.Status == domain.TicketStatusClosed {
		return apperrors.NewConflict("ticket_closed", "ticket is already closed")
	}
	if err := s.tickets.Close(ctx, ticketID, reason); err != nil {
		return apperrors.MapError(err)
	}
	if ticket.OwnerID != actor.ID {
		s.publish(ctx, events.Event{
			Type:   events.EventTicketClosed,
			UserID: ticket.OwnerID,
			Actor:  actorOf(actor),
			Payload: events.TicketClosedPayload{
				TicketID: ticket.ID,
				Reason:   reason,
			},
		})
	}
	return nil
}

// Delete removes a ticket entirely. Staff only; enforced at the router.
func (s *TicketService) Delete(ctx context.Context, ticketID string) error {
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func displayNameOf(user *domain.User) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Email
}

func preview(body string) string {
	if len(body) <= messagePreviewLen {
		return body
	}
	return body[:messagePreviewLen] + "…"
}
