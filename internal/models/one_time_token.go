package models

import (
	"time"

	"github.com/google/uuid"
)

// One-time token purposes.
const (
	PurposeEmailVerification = "EMAIL_VERIFICATION"
	PurposeResetPassword     = "RESET_PASSWORD"
)

// OneTimeToken backs email verification and password reset. A row may be
// consumed exactly once; used rows are retained until expiry for audit.
type OneTimeToken struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AccountID   uuid.UUID `gorm:"type:uuid;not null;index" json:"account_id"`
	Token       string    `gorm:"uniqueIndex;not null;size:100" json:"-"`
	Purpose     string    `gorm:"not null;size:50;index" json:"purpose"`
	TargetEmail *string   `gorm:"size:100" json:"target_email,omitempty"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
	Used        bool      `gorm:"not null;default:false" json:"used"`
	CreatedAt   time.Time `json:"created_at"`
	Account     Account   `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
}
