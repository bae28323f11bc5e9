package dto

import "time"

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	ThreadID  *string   `json:"thread_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// InboxResponse groups entries with the unread count and cursor.
type InboxResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
	Cursor        int64                  `json:"cursor"`
}

// MarkReadRequest optionally bounds the acknowledgement.
type MarkReadRequest struct {
	Cursor *int64 `json:"cursor"`
}

// MarkReadResponse returns the resulting cursor.
type MarkReadResponse struct {
	Cursor int64 `json:"cursor"`
}
