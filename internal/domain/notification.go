package domain

import "time"

// NotificationKind labels a notification entry.
type NotificationKind string

const (
	NotificationRole    NotificationKind = "role"
	NotificationWarn    NotificationKind = "warn"
	NotificationBan     NotificationKind = "ban"
	NotificationCredit  NotificationKind = "credit"
	NotificationTicket  NotificationKind = "ticket"
	NotificationThread  NotificationKind = "thread"
	NotificationSale    NotificationKind = "sale"
	NotificationGeneric NotificationKind = "generic"
)

// Notification is one row in a user's append-only notification log.
// IDs are monotonically increasing per table; a row is unread when its
// id is greater than the user's NotifCursor.
type Notification struct {
	ID        int64
	UserID    string
	Kind      NotificationKind
	Text      string
	ThreadID  *string
	CreatedAt time.Time
}
