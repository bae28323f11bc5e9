package domain

import "time"

// Role is the privilege tier of an account. A single role set covers both
// regular buyers/sellers and staff; authorization checks consult this set.
type Role string

const (
	RoleUser      Role = "user"
	RoleVerified  Role = "verified"
	RoleHelper    Role = "helper"
	RoleModerator Role = "moderator"
	RoleFounder   Role = "founder"
)

// ValidRole reports whether the given role is part of the fixed role set.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleVerified, RoleHelper, RoleModerator, RoleFounder:
		return true
	}
	return false
}

// IsStaff reports whether the role grants access to the admin surface.
func (r Role) IsStaff() bool {
	return r == RoleHelper || r == RoleModerator || r == RoleFounder
}

// User is the account aggregate: identity, wallet balance in RotCoins,
// role and ban state. Notifications live in their own append-only log
// keyed by user id; NotifCursor marks the last acknowledged entry.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	AvatarURL    string
	PasswordHash string
	Role         Role
	Balance      int64
	Warnings     int
	Banned       bool
	BannedAt     *time.Time
	BannedUntil  *time.Time
	NotifCursor  int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsBanned reports whether the account is currently banned, either
// permanently or until a future timestamp.
func (u *User) IsBanned(now time.Time) bool {
	if u.Banned {
		return true
	}
	return u.BannedUntil != nil && now.Before(*u.BannedUntil)
}
