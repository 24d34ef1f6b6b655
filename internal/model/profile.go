package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorisation level of a profile.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the local record of an auth provider user.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"fullName,omitempty" db:"full_name"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// IsAdmin reports whether the profile may use the admin surface.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Principal is the authenticated caller extracted from a bearer token.
type Principal struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
}

// MeResponse is the current user together with their profile.
type MeResponse struct {
	User    Principal `json:"user"`
	Profile *Profile  `json:"profile"`
}

// WebhookEvent is the idempotency record of a processed gateway event.
type WebhookEvent struct {
	ID          string    `json:"id" db:"id"`
	Type        string    `json:"type" db:"type"`
	ProcessedAt time.Time `json:"processedAt" db:"processed_at"`
}
