package domain

import "time"

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusOpen    TicketStatus = "open"
	TicketStatusPending TicketStatus = "pending"
	TicketStatusClosed  TicketStatus = "closed"
)

// Ticket is a support conversation owned by a user. Staff replies move it
// to pending; closing records the reason and timestamp.
type Ticket struct {
	ID          string
	OwnerID     string
	Title       string
	Body        string
	Status      TicketStatus
	CloseReason *string
	ClosedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketMessage is one chat entry in a ticket. Sender name and role are
// denormalized so the conversation stays readable after role changes.
type TicketMessage struct {
	ID         string
	TicketID   string
	SenderID   string
	SenderName string
	SenderRole Role
	Body       string
	CreatedAt  time.Time
}
