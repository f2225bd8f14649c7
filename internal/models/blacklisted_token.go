package models

import (
	"time"

	"github.com/google/uuid"
)

// ReasonLogout is the blacklist reason written on user-initiated logout.
const ReasonLogout = "LOGOUT"

// BlacklistedToken is an access token invalidated before its signed expiry.
// ExpiresAt mirrors the token's own exp claim, so rows are purgeable the
// moment the token would have died anyway. AccountID is nil when the token's
// subject no longer resolves to an account.
type BlacklistedToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Token     string     `gorm:"uniqueIndex;not null;size:512" json:"-"`
	AccountID *uuid.UUID `gorm:"type:uuid;index" json:"account_id,omitempty"`
	Reason    string     `gorm:"size:255" json:"reason"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}
