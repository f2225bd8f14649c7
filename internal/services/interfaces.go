package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/internal-chat/backend/internal/models"
)

// AccountStore is the credential store the orchestrator reads and flips
// flags on. Lookup misses are store.ErrAccountNotFound.
type AccountStore interface {
	FindByEmail(email string) (*models.Account, error)
	FindByID(id uuid.UUID) (*models.Account, error)
	EmailExists(email string) (bool, error)
	UsernameExists(username string) (bool, error)
	Create(account *models.Account, profile *models.Profile) error
	MarkVerified(accountID uuid.UUID) error
	UpdatePassword(accountID uuid.UUID, passwordHash string) error
	SetPresence(accountID uuid.UUID, status string) error
	UpdateProfileFields(accountID uuid.UUID, fields map[string]interface{}) error
}

// SessionLedger is the durable refresh-session store. Find misses are
// store.ErrSessionNotFound; a lost rotation race is store.ErrSessionRevoked.
type SessionLedger interface {
	Create(accountID uuid.UUID) (*models.RefreshSession, error)
	Find(sessionID string) (*models.RefreshSession, error)
	Revoke(sessionID string) error
	RevokeAllActive(accountID uuid.UUID) error
	Rotate(sessionID string, accountID uuid.UUID) (*models.RefreshSession, error)
}

// Blacklist records forcibly invalidated access tokens.
type Blacklist interface {
	Add(token string, accountID *uuid.UUID, reason string, expiresAt time.Time) error
}

// OneTimeTokens issues and consumes single-use tokens. Consume failures are
// store.ErrTokenNotFound / ErrTokenUsed / ErrTokenExpired.
type OneTimeTokens interface {
	Issue(accountID uuid.UUID, purpose string, ttl time.Duration, targetEmail *string) (*models.OneTimeToken, error)
	Consume(token, purpose string) (*models.Account, error)
}

// Mailer delivers auth-related mail. Implementations log delivery failures
// instead of surfacing them; mail must never fail an auth operation.
type Mailer interface {
	SendVerificationEmail(to, token string)
	SendPasswordResetEmail(to, token string)
}
