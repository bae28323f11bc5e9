package domain

import "time"

// Thread is a direct or broadcast message channel. The last message is
// denormalized onto the thread so listings avoid a per-thread query.
type Thread struct {
	ID                string
	CreatedBy         string
	Broadcast         bool
	ParticipantIDs    []string
	LastMessageText   *string
	LastMessageSender *string
	LastMessageAt     *time.Time
	CreatedAt         time.Time
}

// ThreadMessage is one entry in a thread.
type ThreadMessage struct {
	ID         string
	ThreadID   string
	SenderID   string
	SenderName string
	Body       string
	CreatedAt  time.Time
}
