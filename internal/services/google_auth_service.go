package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/internal-chat/backend/internal/dto"
	"github.com/internal-chat/backend/internal/models"
	"github.com/internal-chat/backend/internal/store"
)

// googleProvider is the outbound half of federation: code exchange, profile
// fetch and ID token verification. GoogleOAuth2Client is the real one.
type googleProvider interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code, redirectURI string) (string, error)
	FetchUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error)
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error)
}

// sessionIssuer is the orchestrator step federation delegates to once the
// local account is resolved.
type sessionIssuer interface {
	IssueSession(account *models.Account) (*dto.AuthResponse, error)
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// GoogleAuthService exchanges a Google authorization artifact for a verified
// external identity and creates or merges the matching local account. Unlike
// password login, federated login is additive: it never revokes prior
// sessions for the account.
type GoogleAuthService struct {
	accounts AccountStore
	issuer   sessionIssuer
	provider googleProvider
}

func NewGoogleAuthService(accounts AccountStore, issuer sessionIssuer, provider googleProvider) *GoogleAuthService {
	return &GoogleAuthService{accounts: accounts, issuer: issuer, provider: provider}
}

// AuthorizationURL builds the Google consent URL for the given state.
func (s *GoogleAuthService) AuthorizationURL(state string) string {
	return s.provider.AuthorizationURL(state)
}

// AuthenticateWithCode runs the authorization-code flow. Provider failures
// surface as ErrGoogleAuthFailed before any local write happens, so a failed
// exchange never leaves a half-created account.
func (s *GoogleAuthService) AuthenticateWithCode(ctx context.Context, code, redirectURI string) (*dto.AuthResponse, error) {
	providerToken, err := s.provider.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		slog.Error("google code exchange failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGoogleAuthFailed, err)
	}

	identity, err := s.provider.FetchUserInfo(ctx, providerToken)
	if err != nil {
		slog.Error("google userinfo fetch failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGoogleAuthFailed, err)
	}

	return s.processGoogleUser(identity)
}

// AuthenticateWithIDToken runs the direct ID-token flow.
func (s *GoogleAuthService) AuthenticateWithIDToken(ctx context.Context, idToken string) (*dto.AuthResponse, error) {
	identity, err := s.provider.VerifyIDToken(ctx, idToken)
	if err != nil {
		slog.Error("google id token verification failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGoogleAuthFailed, err)
	}

	return s.processGoogleUser(identity)
}

// processGoogleUser creates a new GOOGLE account for an unknown email, syncs
// mutable profile fields for a known GOOGLE account, and rejects emails owned
// by another provider. It then delegates to the orchestrator's session
// issuance.
func (s *GoogleAuthService) processGoogleUser(identity *GoogleUserInfo) (*dto.AuthResponse, error) {
	account, err := s.accounts.FindByEmail(identity.Email)
	if err != nil && !errors.Is(err, store.ErrAccountNotFound) {
		return nil, err
	}

	if account == nil {
		account, err = s.createGoogleAccount(identity)
		if err != nil {
			return nil, err
		}
		slog.Info("new google account created", "email", identity.Email)
	} else {
		if account.Provider != models.ProviderGoogle {
			return nil, ErrProviderConflict
		}
		if err := s.syncProfile(account, identity); err != nil {
			return nil, err
		}
		slog.Info("existing google account logged in", "email", identity.Email)
	}

	if err := s.accounts.SetPresence(account.ID, models.StatusOnline); err != nil {
		slog.Error("failed to set presence online", "account_id", account.ID, "error", err)
	} else if account.Profile != nil {
		account.Profile.Status = models.StatusOnline
	}

	return s.issuer.IssueSession(account)
}

func (s *GoogleAuthService) createGoogleAccount(identity *GoogleUserInfo) (*models.Account, error) {
	username, err := s.GenerateUniqueUsername(identity.Email, identity.GivenName)
	if err != nil {
		return nil, err
	}

	displayName := identity.Name
	if displayName == "" {
		displayName = identity.Email
	}

	account := &models.Account{
		Email:      identity.Email,
		Password:   nil,
		Provider:   models.ProviderGoogle,
		IsVerified: true,
		IsActive:   true,
		Roles:      []string{models.RoleMember},
	}
	profile := &models.Profile{
		Username:    username,
		DisplayName: displayName,
		AvatarURL:   identity.Picture,
		Status:      models.StatusOffline,
	}
	if err := s.accounts.Create(account, profile); err != nil {
		return nil, err
	}
	return account, nil
}

// syncProfile refreshes avatar and display name when Google reports new
// values. It diffs field by field and writes only what changed.
func (s *GoogleAuthService) syncProfile(account *models.Account, identity *GoogleUserInfo) error {
	profile := account.Profile
	if profile == nil {
		return nil
	}

	fields := map[string]interface{}{}
	if identity.Picture != "" && identity.Picture != profile.AvatarURL {
		fields["avatar_url"] = identity.Picture
		profile.AvatarURL = identity.Picture
	}
	if identity.Name != "" && identity.Name != profile.DisplayName {
		fields["display_name"] = identity.Name
		profile.DisplayName = identity.Name
	}
	if len(fields) == 0 {
		return nil
	}

	if err := s.accounts.UpdateProfileFields(account.ID, fields); err != nil {
		return err
	}
	slog.Info("synced google profile", "email", account.Email)
	return nil
}

// GenerateUniqueUsername normalizes the given name (or the email local part)
// to lowercase alphanumerics, pads short results with a "user" prefix, and
// appends an incrementing numeric suffix until the username is unused.
func (s *GoogleAuthService) GenerateUniqueUsername(email, givenName string) (string, error) {
	base := givenName
	if base == "" {
		base = strings.Split(email, "@")[0]
	}
	base = nonAlphanumeric.ReplaceAllString(strings.ToLower(base), "")
	if len(base) < 3 {
		base = "user" + base
	}

	username := base
	for counter := 1; ; counter++ {
		taken, err := s.accounts.UsernameExists(username)
		if err != nil {
			return "", err
		}
		if !taken {
			return username, nil
		}
		username = fmt.Sprintf("%s%d", base, counter)
	}
}
