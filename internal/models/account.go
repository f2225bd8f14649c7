package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Auth provider tags for Account.Provider.
const (
	ProviderLocal  = "LOCAL"
	ProviderGoogle = "GOOGLE"
	ProviderSSO    = "SSO"
)

// RoleMember is assigned to every new account.
const RoleMember = "MEMBER"
const RoleAdmin = "ADMIN"

// Account holds the credentials and flags for one user. Password is nil for
// federated accounts.
type Account struct {
	ID         uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email      string                      `gorm:"uniqueIndex;not null;size:100" json:"email"`
	Password   *string                     `gorm:"size:255" json:"-"`
	Provider   string                      `gorm:"size:20;not null;default:'LOCAL'" json:"provider"`
	IsVerified bool                        `gorm:"not null;default:false" json:"is_verified"`
	IsActive   bool                        `gorm:"not null;default:true" json:"is_active"`
	Roles      datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"roles"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
	Profile    *Profile                    `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (a *Account) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}
