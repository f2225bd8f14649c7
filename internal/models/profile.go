package models

import (
	"time"

	"github.com/google/uuid"
)

// Presence values for Profile.Status.
const (
	StatusOnline  = "ONLINE"
	StatusOffline = "OFFLINE"
)

// Profile is the public side of an account, owned 1:1 by it.
type Profile struct {
	AccountID    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"-"`
	Username     string     `gorm:"uniqueIndex;not null;size:50" json:"username"`
	DisplayName  string     `gorm:"not null;size:100" json:"display_name"`
	AvatarURL    string     `gorm:"size:255" json:"avatar_url,omitempty"`
	Bio          string     `gorm:"type:text" json:"bio,omitempty"`
	Status       string     `gorm:"size:20;default:'OFFLINE'" json:"status"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
