package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/internal-chat/backend/internal/models"
	"github.com/internal-chat/backend/internal/store"
)

// In-memory doubles for the store interfaces. Single-goroutine tests, no
// locking needed.

type memAccounts struct {
	accounts map[uuid.UUID]*models.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: make(map[uuid.UUID]*models.Account)}
}

func (m *memAccounts) FindByEmail(email string) (*models.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (m *memAccounts) FindByID(id uuid.UUID) (*models.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, store.ErrAccountNotFound
}

func (m *memAccounts) EmailExists(email string) (bool, error) {
	_, err := m.FindByEmail(email)
	return err == nil, nil
}

func (m *memAccounts) UsernameExists(username string) (bool, error) {
	for _, a := range m.accounts {
		if a.Profile != nil && a.Profile.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAccounts) Create(account *models.Account, profile *models.Profile) error {
	account.ID = uuid.New()
	account.CreatedAt = time.Now()
	profile.AccountID = account.ID
	account.Profile = profile
	m.accounts[account.ID] = account
	return nil
}

func (m *memAccounts) MarkVerified(accountID uuid.UUID) error {
	if a, ok := m.accounts[accountID]; ok {
		a.IsVerified = true
	}
	return nil
}

func (m *memAccounts) UpdatePassword(accountID uuid.UUID, passwordHash string) error {
	if a, ok := m.accounts[accountID]; ok {
		a.Password = &passwordHash
	}
	return nil
}

func (m *memAccounts) SetPresence(accountID uuid.UUID, status string) error {
	if a, ok := m.accounts[accountID]; ok && a.Profile != nil {
		now := time.Now()
		a.Profile.Status = status
		a.Profile.LastActiveAt = &now
	}
	return nil
}

func (m *memAccounts) UpdateProfileFields(accountID uuid.UUID, fields map[string]interface{}) error {
	a, ok := m.accounts[accountID]
	if !ok || a.Profile == nil {
		return nil
	}
	if v, ok := fields["avatar_url"].(string); ok {
		a.Profile.AvatarURL = v
	}
	if v, ok := fields["display_name"].(string); ok {
		a.Profile.DisplayName = v
	}
	return nil
}

type memSessions struct {
	sessions map[string]*models.RefreshSession
	expiry   time.Duration
	seq      int
}

func newMemSessions(expiry time.Duration) *memSessions {
	return &memSessions{sessions: make(map[string]*models.RefreshSession), expiry: expiry}
}

func (m *memSessions) Create(accountID uuid.UUID) (*models.RefreshSession, error) {
	m.seq++
	session := &models.RefreshSession{
		ID:        uuid.New(),
		AccountID: accountID,
		SessionID: fmt.Sprintf("session-%d", m.seq),
		ExpiresAt: time.Now().Add(m.expiry),
		CreatedAt: time.Now(),
	}
	m.sessions[session.SessionID] = session
	return session, nil
}

func (m *memSessions) Find(sessionID string) (*models.RefreshSession, error) {
	if s, ok := m.sessions[sessionID]; ok {
		return s, nil
	}
	return nil, store.ErrSessionNotFound
}

func (m *memSessions) Revoke(sessionID string) error {
	if s, ok := m.sessions[sessionID]; ok {
		s.Revoked = true
	}
	return nil
}

func (m *memSessions) RevokeAllActive(accountID uuid.UUID) error {
	for _, s := range m.sessions {
		if s.AccountID == accountID && !s.Revoked {
			s.Revoked = true
		}
	}
	return nil
}

func (m *memSessions) Rotate(sessionID string, accountID uuid.UUID) (*models.RefreshSession, error) {
	s, ok := m.sessions[sessionID]
	if !ok || s.Revoked {
		return nil, store.ErrSessionRevoked
	}
	s.Revoked = true
	return m.Create(accountID)
}

func (m *memSessions) active(accountID uuid.UUID) []*models.RefreshSession {
	var out []*models.RefreshSession
	for _, s := range m.sessions {
		if s.AccountID == accountID && !s.Revoked {
			out = append(out, s)
		}
	}
	return out
}

type blacklistEntry struct {
	accountID *uuid.UUID
	reason    string
	expiresAt time.Time
}

type memBlacklist struct {
	entries map[string]blacklistEntry
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{entries: make(map[string]blacklistEntry)}
}

func (m *memBlacklist) Add(token string, accountID *uuid.UUID, reason string, expiresAt time.Time) error {
	if _, ok := m.entries[token]; !ok {
		m.entries[token] = blacklistEntry{accountID: accountID, reason: reason, expiresAt: expiresAt}
	}
	return nil
}

func (m *memBlacklist) Contains(token string) (bool, error) {
	_, ok := m.entries[token]
	return ok, nil
}

type memOneTimeTokens struct {
	accounts *memAccounts
	tokens   map[string]*models.OneTimeToken
}

func newMemOneTimeTokens(accounts *memAccounts) *memOneTimeTokens {
	return &memOneTimeTokens{accounts: accounts, tokens: make(map[string]*models.OneTimeToken)}
}

func (m *memOneTimeTokens) Issue(accountID uuid.UUID, purpose string, ttl time.Duration, targetEmail *string) (*models.OneTimeToken, error) {
	entry := &models.OneTimeToken{
		ID:          uuid.New(),
		AccountID:   accountID,
		Token:       uuid.NewString(),
		Purpose:     purpose,
		TargetEmail: targetEmail,
		ExpiresAt:   time.Now().Add(ttl),
		CreatedAt:   time.Now(),
	}
	m.tokens[entry.Token] = entry
	return entry, nil
}

func (m *memOneTimeTokens) Consume(token, purpose string) (*models.Account, error) {
	entry, ok := m.tokens[token]
	if !ok || entry.Purpose != purpose {
		return nil, store.ErrTokenNotFound
	}
	if entry.Used {
		return nil, store.ErrTokenUsed
	}
	if !entry.ExpiresAt.After(time.Now()) {
		return nil, store.ErrTokenExpired
	}
	entry.Used = true
	return m.accounts.FindByID(entry.AccountID)
}

func (m *memOneTimeTokens) issued(accountID uuid.UUID, purpose string) []*models.OneTimeToken {
	var out []*models.OneTimeToken
	for _, t := range m.tokens {
		if t.AccountID == accountID && t.Purpose == purpose {
			out = append(out, t)
		}
	}
	return out
}

type memMailer struct {
	verificationTo []string
	resetTo        []string
}

func (m *memMailer) SendVerificationEmail(to, token string) {
	m.verificationTo = append(m.verificationTo, to)
}

func (m *memMailer) SendPasswordResetEmail(to, token string) {
	m.resetTo = append(m.resetTo, to)
}

// fakeGoogleProvider returns a canned identity or error.
type fakeGoogleProvider struct {
	identity    *GoogleUserInfo
	exchangeErr error
	verifyErr   error
}

func (f *fakeGoogleProvider) AuthorizationURL(state string) string {
	return "https://accounts.google.com/o/oauth2/v2/auth?state=" + state
}

func (f *fakeGoogleProvider) ExchangeCode(_ context.Context, code, redirectURI string) (string, error) {
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	return "provider-access-token", nil
}

func (f *fakeGoogleProvider) FetchUserInfo(_ context.Context, accessToken string) (*GoogleUserInfo, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.identity, nil
}

func (f *fakeGoogleProvider) VerifyIDToken(_ context.Context, idToken string) (*GoogleUserInfo, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.identity, nil
}
