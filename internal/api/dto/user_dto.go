package dto

import "time"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	Role        string     `json:"role"`
	Balance     int64      `json:"balance"`
	Warnings    int        `json:"warnings"`
	Banned      bool       `json:"banned"`
	BannedUntil *time.Time `json:"banned_until,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UpdateProfileRequest payload for profile edits.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// TransactionResponse is one wallet movement.
type TransactionResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Credits   int64     `json:"credits"`
	Note      string    `json:"note,omitempty"`
	ActorName *string   `json:"actor_name,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// WalletResponse bundles the balance with recent movements.
type WalletResponse struct {
	Balance      int64                 `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}
