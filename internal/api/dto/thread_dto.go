package dto

import "time"

// CreateThreadRequest payload for starting a thread.
type CreateThreadRequest struct {
	ParticipantIDs []string `json:"participant_ids"`
	Broadcast      bool     `json:"broadcast"`
	Message        string   `json:"message"`
}

// ThreadMessageRequest payload for sending into a thread.
type ThreadMessageRequest struct {
	Body string `json:"body"`
}

// ThreadSummary is the list shape with the denormalized last message.
type ThreadSummary struct {
	ID                string     `json:"id"`
	CreatedBy         string     `json:"created_by"`
	Broadcast         bool       `json:"broadcast"`
	LastMessageText   *string    `json:"last_message_text,omitempty"`
	LastMessageSender *string    `json:"last_message_sender,omitempty"`
	LastMessageAt     *time.Time `json:"last_message_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ThreadMessageResponse is one thread entry.
type ThreadMessageResponse struct {
	ID         string    `json:"id"`
	ThreadID   string    `json:"thread_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// ThreadDetailResponse is the full thread shape.
type ThreadDetailResponse struct {
	ThreadSummary
	ParticipantIDs []string                `json:"participant_ids"`
	Messages       []ThreadMessageResponse `json:"messages"`
}
