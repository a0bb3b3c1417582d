package auth

import (
	"time"

	"github.com/nerrad567/fleetauth-core/internal/privilege"
)

// Identity is what an access token asserts about its bearer.
type Identity struct {
	Email      string         `json:"email"`
	Company    string         `json:"company,omitempty"`
	Privileges privilege.Set  `json:"privileges"`
	Role       privilege.Role `json:"dashboard_role"`
	SessionID  string         `json:"session_id,omitempty"`
}

// RefreshToken represents a stored refresh token for session management.
type RefreshToken struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FamilyID   string    `json:"family_id"`
	TokenHash  string    `json:"-"` // never serialised
	DeviceInfo string    `json:"device_info,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
	Revoked    bool      `json:"revoked"`
	CreatedAt  time.Time `json:"created_at"`
}

// Expired reports whether the token is past its expiry at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
