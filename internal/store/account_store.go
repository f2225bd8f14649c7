package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/internal-chat/backend/internal/models"
	"gorm.io/gorm"
)

// ErrAccountNotFound signals no account for the given key.
var ErrAccountNotFound = errors.New("account not found")

// AccountStore is the credential and profile store.
type AccountStore struct {
	db *gorm.DB
}

func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) FindByEmail(email string) (*models.Account, error) {
	var account models.Account
	err := s.db.Preload("Profile").Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account by email: %w", err)
	}
	return &account, nil
}

func (s *AccountStore) FindByID(id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := s.db.Preload("Profile").First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return &account, nil
}

func (s *AccountStore) EmailExists(email string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Account{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (s *AccountStore) UsernameExists(username string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Profile{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// Create persists the account and its profile in one transaction: no account
// exists without a profile.
func (s *AccountStore) Create(account *models.Account, profile *models.Profile) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		profile.AccountID = account.ID
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		account.Profile = profile
		return nil
	})
}

func (s *AccountStore) MarkVerified(accountID uuid.UUID) error {
	err := s.db.Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("is_verified", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark account verified: %w", err)
	}
	return nil
}

func (s *AccountStore) UpdatePassword(accountID uuid.UUID, passwordHash string) error {
	err := s.db.Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("password", passwordHash).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SetPresence flips the profile's status and stamps last_active_at.
func (s *AccountStore) SetPresence(accountID uuid.UUID, status string) error {
	now := time.Now()
	err := s.db.Model(&models.Profile{}).
		Where("account_id = ?", accountID).
		Updates(map[string]interface{}{
			"status":         status,
			"last_active_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update presence: %w", err)
	}
	return nil
}

// UpdateProfileFields writes only the given profile columns.
func (s *AccountStore) UpdateProfileFields(accountID uuid.UUID, fields map[string]interface{}) error {
	err := s.db.Model(&models.Profile{}).
		Where("account_id = ?", accountID).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// CountAccounts reports total registered accounts.
func (s *AccountStore) CountAccounts() (int64, error) {
	var count int64
	err := s.db.Model(&models.Account{}).Count(&count).Error
	return count, err
}
