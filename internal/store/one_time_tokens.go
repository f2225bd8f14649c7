package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/internal-chat/backend/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrTokenNotFound signals no live entry for (token, purpose).
	ErrTokenNotFound = errors.New("one-time token not found")
	// ErrTokenUsed signals a second consume attempt.
	ErrTokenUsed = errors.New("one-time token already used")
	// ErrTokenExpired signals the token outlived its TTL.
	ErrTokenExpired = errors.New("one-time token expired")
)

// OneTimeTokenStore holds single-use tokens for email verification and
// password reset.
type OneTimeTokenStore struct {
	db *gorm.DB
}

func NewOneTimeTokenStore(db *gorm.DB) *OneTimeTokenStore {
	return &OneTimeTokenStore{db: db}
}

// Issue creates an unused token of the given purpose. The token value is a
// random UUID string.
func (s *OneTimeTokenStore) Issue(accountID uuid.UUID, purpose string, ttl time.Duration, targetEmail *string) (*models.OneTimeToken, error) {
	entry := &models.OneTimeToken{
		AccountID:   accountID,
		Token:       uuid.NewString(),
		Purpose:     purpose,
		TargetEmail: targetEmail,
		ExpiresAt:   time.Now().Add(ttl),
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to issue one-time token: %w", err)
	}
	return entry, nil
}

// Consume resolves (token, purpose), enforces used/expiry, and atomically
// flips used = true. The used = false guard on the update means two
// concurrent consumers cannot both succeed; the loser reports ErrTokenUsed.
// Returns the owning account with its profile preloaded.
func (s *OneTimeTokenStore) Consume(tokenString, purpose string) (*models.Account, error) {
	var entry models.OneTimeToken
	err := s.db.Preload("Account.Profile").
		Where("token = ? AND purpose = ?", tokenString, purpose).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to look up one-time token: %w", err)
	}

	if entry.Used {
		return nil, ErrTokenUsed
	}
	if !entry.ExpiresAt.After(time.Now()) {
		return nil, ErrTokenExpired
	}

	res := s.db.Model(&models.OneTimeToken{}).
		Where("id = ? AND used = false", entry.ID).
		Update("used", true)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to consume one-time token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrTokenUsed
	}

	return &entry.Account, nil
}

// PurgeExpired deletes tokens past expiry. Used tokens are retained until
// then for audit; unused, unexpired tokens are never touched.
func (s *OneTimeTokenStore) PurgeExpired(now time.Time) (int64, error) {
	res := s.db.Where("expires_at < ?", now).Delete(&models.OneTimeToken{})
	return res.RowsAffected, res.Error
}
