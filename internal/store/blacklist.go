package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/internal-chat/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlacklistRegistry records access tokens invalidated before their natural
// expiry. Entries live exactly as long as the token's own exp claim.
type BlacklistRegistry struct {
	db *gorm.DB
}

func NewBlacklistRegistry(db *gorm.DB) *BlacklistRegistry {
	return &BlacklistRegistry{db: db}
}

// Add inserts a blacklist entry. accountID may be nil when the token's
// subject no longer resolves. Re-blacklisting the same token is a no-op,
// including when two requests race into the unique index on token.
func (r *BlacklistRegistry) Add(tokenString string, accountID *uuid.UUID, reason string, expiresAt time.Time) error {
	entry := models.BlacklistedToken{
		Token:     tokenString,
		AccountID: accountID,
		Reason:    reason,
		ExpiresAt: expiresAt,
	}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// Contains reports whether the token has been explicitly invalidated.
func (r *BlacklistRegistry) Contains(tokenString string) (bool, error) {
	var count int64
	err := r.db.Model(&models.BlacklistedToken{}).
		Where("token = ?", tokenString).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return count > 0, nil
}

// Count reports live blacklist entries.
func (r *BlacklistRegistry) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.BlacklistedToken{}).Count(&count).Error
	return count, err
}

// PurgeExpired deletes entries whose mirrored token expiry has passed. A
// still-valid token's entry is never eligible, so the sweep is safe to run
// at any time.
func (r *BlacklistRegistry) PurgeExpired(now time.Time) (int64, error) {
	res := r.db.Where("expires_at < ?", now).Delete(&models.BlacklistedToken{})
	return res.RowsAffected, res.Error
}
