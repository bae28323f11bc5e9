package domain

import "time"

// TransactionType labels the origin of a balance movement.
type TransactionType string

const (
	TransactionAdminGrant     TransactionType = "admin_grant"
	TransactionStripePurchase TransactionType = "stripe_purchase"
	TransactionPayPalPurchase TransactionType = "paypal_purchase"
	TransactionSale           TransactionType = "sale"
	TransactionPurchase       TransactionType = "purchase"
)

// Transaction records a RotCoins balance movement. Every credit adjustment
// should be paired with one of these; the pairing is best-effort and a
// failed transaction write never rolls back the balance update.
type Transaction struct {
	ID        string
	UserID    string
	Type      TransactionType
	Credits   int64
	Note      string
	ActorID   *string
	ActorName *string
	// Reference carries an external correlation id (e.g. a checkout session
	// id); it is unique when present, which makes provider credits idempotent.
	Reference *string
	Status    string
	CreatedAt time.Time
}
