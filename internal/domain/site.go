package domain

import "time"

// Announcement is a site-wide message posted by staff.
type Announcement struct {
	ID        string
	Text      string
	AuthorID  string
	CreatedAt time.Time
}

// Promotion holds the current discount applied to all RotCoins packs,
// as a percentage.
type Promotion struct {
	AllPercent int
	UpdatedAt  time.Time
}

// MaintenanceState is the global maintenance toggle with an optional
// scope (global, marketplace, shop, tickets) and a user-facing message.
type MaintenanceState struct {
	Enabled   bool
	Scope     string
	Message   string
	UpdatedAt time.Time
}
