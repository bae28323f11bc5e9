package dto

import "time"

// CreateTicketRequest payload for opening a ticket.
type CreateTicketRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// TicketMessageRequest payload for replies.
type TicketMessageRequest struct {
	Body string `json:"body"`
}

// CloseTicketRequest payload for closing.
type CloseTicketRequest struct {
	Reason string `json:"reason"`
}

// TicketSummary is the list shape.
type TicketSummary struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TicketMessageResponse is one conversation entry.
type TicketMessageResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole string    `json:"sender_role"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// TicketDetailResponse is the full ticket shape.
type TicketDetailResponse struct {
	ID          string                  `json:"id"`
	OwnerID     string                  `json:"owner_id"`
	Title       string                  `json:"title"`
	Body        string                  `json:"body"`
	Status      string                  `json:"status"`
	CloseReason *string                 `json:"close_reason,omitempty"`
	ClosedAt    *time.Time              `json:"closed_at,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
	Messages    []TicketMessageResponse `json:"messages"`
}
