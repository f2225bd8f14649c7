package store

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/internal-chat/backend/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrSessionNotFound signals an unknown session id.
	ErrSessionNotFound = errors.New("refresh session not found")
	// ErrSessionRevoked signals a rotate attempt on an already-revoked session.
	ErrSessionRevoked = errors.New("refresh session already revoked")
)

// SessionLedger is the durable record of refresh sessions. Session ids are
// opaque 32-byte random strings; revocation is a one-way flag.
type SessionLedger struct {
	db     *gorm.DB
	expiry time.Duration
}

func NewSessionLedger(db *gorm.DB, expiry time.Duration) *SessionLedger {
	return &SessionLedger{db: db, expiry: expiry}
}

// Create inserts a fresh active session for the account. The unique index on
// session_id backs collision detection; generation retries once on duplicate.
func (l *SessionLedger) Create(accountID uuid.UUID) (*models.RefreshSession, error) {
	return l.createTx(l.db, accountID)
}

func (l *SessionLedger) createTx(tx *gorm.DB, accountID uuid.UUID) (*models.RefreshSession, error) {
	for attempt := 0; attempt < 2; attempt++ {
		sessionID, err := generateOpaqueID()
		if err != nil {
			return nil, err
		}
		session := &models.RefreshSession{
			AccountID: accountID,
			SessionID: sessionID,
			ExpiresAt: time.Now().Add(l.expiry),
		}
		err = tx.Create(session).Error
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create refresh session: %w", err)
		}
	}
	return nil, errors.New("session id collision persisted after retry")
}

// Find looks up a session by its opaque id.
func (l *SessionLedger) Find(sessionID string) (*models.RefreshSession, error) {
	var session models.RefreshSession
	if err := l.db.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to look up refresh session: %w", err)
	}
	return &session, nil
}

// Revoke marks the session revoked. Revoking an already-revoked session is a
// no-op.
func (l *SessionLedger) Revoke(sessionID string) error {
	err := l.db.Model(&models.RefreshSession{}).
		Where("session_id = ?", sessionID).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("failed to revoke refresh session: %w", err)
	}
	return nil
}

// RevokeAllActive revokes every non-revoked session for the account in one
// statement, so a concurrent create for the same account either lands before
// the update (and is revoked) or after it (and stays the sole active session).
func (l *SessionLedger) RevokeAllActive(accountID uuid.UUID) error {
	err := l.db.Model(&models.RefreshSession{}).
		Where("account_id = ? AND revoked = false", accountID).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("failed to revoke active sessions: %w", err)
	}
	return nil
}

// Rotate revokes exactly the given session and creates its successor in one
// transaction. The revoked = false guard makes refresh tokens single-use: a
// replayed rotation loses the conditional update and gets ErrSessionRevoked.
func (l *SessionLedger) Rotate(sessionID string, accountID uuid.UUID) (*models.RefreshSession, error) {
	var successor *models.RefreshSession
	err := l.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshSession{}).
			Where("session_id = ? AND revoked = false", sessionID).
			Update("revoked", true)
		if res.Error != nil {
			return fmt.Errorf("failed to revoke predecessor session: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrSessionRevoked
		}
		var err error
		successor, err = l.createTx(tx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return successor, nil
}

// CountActive reports non-revoked, unexpired sessions.
func (l *SessionLedger) CountActive() (int64, error) {
	var count int64
	err := l.db.Model(&models.RefreshSession{}).
		Where("revoked = false AND expires_at > ?", time.Now()).
		Count(&count).Error
	return count, err
}

// PurgeExpired deletes sessions whose expiry is strictly before now.
func (l *SessionLedger) PurgeExpired(now time.Time) (int64, error) {
	res := l.db.Where("expires_at < ?", now).Delete(&models.RefreshSession{})
	return res.RowsAffected, res.Error
}

func generateOpaqueID() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
