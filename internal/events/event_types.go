package events

import (
	"time"

	"github.com/brainrot-market/market-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRoleChanged   EventType = "role_changed"
	EventUserBanned    EventType = "user_banned"
	EventUserUnbanned  EventType = "user_unbanned"
	EventUserWarned    EventType = "user_warned"
	EventCreditGranted EventType = "credit_granted"
	EventTicketReplied EventType = "ticket_replied"
	EventTicketClosed  EventType = "ticket_closed"
	EventThreadMessage EventType = "thread_message"
	EventProductSold   EventType = "product_sold"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Name   string      `json:"name,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services. UserID is the
// user the event is about (the notification target), not the actor.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RoleChangedPayload payload.
type RoleChangedPayload struct {
	NewRole domain.Role `json:"new_role"`
}

// UserBannedPayload payload.
type UserBannedPayload struct {
	Permanent bool       `json:"permanent"`
	Until     *time.Time `json:"until,omitempty"`
}

// UserWarnedPayload payload.
type UserWarnedPayload struct {
	Reason string `json:"reason"`
}

// CreditGrantedPayload payload.
type CreditGrantedPayload struct {
	Credits int64 `json:"credits"`
}

// TicketRepliedPayload payload.
type TicketRepliedPayload struct {
	TicketID    string `json:"ticket_id"`
	BodyPreview string `json:"body_preview"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason,omitempty"`
}

// ThreadMessagePayload payload.
type ThreadMessagePayload struct {
	ThreadID    string `json:"thread_id"`
	BodyPreview string `json:"body_preview"`
}

// ProductSoldPayload payload.
type ProductSoldPayload struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
}
