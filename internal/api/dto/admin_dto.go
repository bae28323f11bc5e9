package dto

import "time"

// SetRoleRequest payload for role changes.
type SetRoleRequest struct {
	Role string `json:"role"`
}

// BanRequest payload for temporary bans.
type BanRequest struct {
	Days  int `json:"days"`
	Hours int `json:"hours"`
}

// WarnRequest payload for warnings.
type WarnRequest struct {
	Reason string `json:"reason"`
}

// CreditRequest payload for balance grants.
type CreditRequest struct {
	Credits int64 `json:"credits"`
}

// CreditResponse returns the resulting balance.
type CreditResponse struct {
	Balance int64 `json:"balance"`
}

// WarnResponse returns the new warning count.
type WarnResponse struct {
	Warnings int `json:"warnings"`
}

// AnnouncementRequest payload for announcements.
type AnnouncementRequest struct {
	Text string `json:"text"`
}

// AnnouncementResponse is one announcement entry.
type AnnouncementResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PromotionRequest payload for the pack discount.
type PromotionRequest struct {
	AllPercent int `json:"all_percent"`
}

// PromotionResponse is the current pack discount.
type PromotionResponse struct {
	AllPercent int       `json:"all_percent"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MaintenanceRequest payload for the maintenance toggle.
type MaintenanceRequest struct {
	Enabled bool   `json:"enabled"`
	Scope   string `json:"scope"`
	Message string `json:"message"`
}

// MaintenanceResponse is the current maintenance state.
type MaintenanceResponse struct {
	Enabled bool   `json:"enabled"`
	Scope   string `json:"scope"`
	Message string `json:"message,omitempty"`
}
