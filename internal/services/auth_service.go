package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/internal-chat/backend/internal/dto"
	"github.com/internal-chat/backend/internal/models"
	"github.com/internal-chat/backend/internal/store"
	"github.com/internal-chat/backend/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// AuthService coordinates registration, credential login, token rotation,
// logout and the one-time-token flows. It owns every cross-entity invariant:
// session-exclusive login, single-use refresh, revoke-all on password reset.
type AuthService struct {
	accounts  AccountStore
	sessions  SessionLedger
	blacklist Blacklist
	tokens    OneTimeTokens
	codec     *token.Codec
	mailer    Mailer

	verifyEmailTTL   time.Duration
	resetPasswordTTL time.Duration
}

func NewAuthService(
	accounts AccountStore,
	sessions SessionLedger,
	blacklist Blacklist,
	tokens OneTimeTokens,
	codec *token.Codec,
	mailer Mailer,
	verifyEmailTTL, resetPasswordTTL time.Duration,
) *AuthService {
	return &AuthService{
		accounts:         accounts,
		sessions:         sessions,
		blacklist:        blacklist,
		tokens:           tokens,
		codec:            codec,
		mailer:           mailer,
		verifyEmailTTL:   verifyEmailTTL,
		resetPasswordTTL: resetPasswordTTL,
	}
}

// Register creates an unverified LOCAL account with a MEMBER role, issues an
// email-verification token and triggers delivery. No session tokens are
// returned; unverified accounts cannot authenticate.
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.UserInfo, error) {
	taken, err := s.accounts.EmailExists(req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	taken, err = s.accounts.UsernameExists(req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	account := &models.Account{
		Email:    req.Email,
		Password: &hashStr,
		Provider: models.ProviderLocal,
		IsActive: true,
		Roles:    []string{models.RoleMember},
	}
	profile := &models.Profile{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Status:      models.StatusOffline,
	}
	if err := s.accounts.Create(account, profile); err != nil {
		return nil, err
	}

	verification, err := s.tokens.Issue(account.ID, models.PurposeEmailVerification, s.verifyEmailTTL, nil)
	if err != nil {
		return nil, err
	}
	s.mailer.SendVerificationEmail(account.Email, verification.Token)

	slog.Info("user registered", "email", account.Email)
	return dto.NewUserInfo(account), nil
}

// Login authenticates credentials, revokes every other active refresh chain
// for the account, then mints a fresh session and token pair. Password login
// is session-exclusive.
func (s *AuthService) Login(email, password string) (*dto.AuthResponse, error) {
	account, err := s.accounts.FindByEmail(email)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if account.Password == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*account.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !account.IsVerified {
		return nil, ErrEmailNotVerified
	}

	if err := s.sessions.RevokeAllActive(account.ID); err != nil {
		return nil, err
	}
	slog.Info("revoked active sessions before login", "account_id", account.ID)

	if err := s.accounts.SetPresence(account.ID, models.StatusOnline); err != nil {
		slog.Error("failed to set presence online", "account_id", account.ID, "error", err)
	} else if account.Profile != nil {
		account.Profile.Status = models.StatusOnline
	}

	resp, err := s.IssueSession(account)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", "email", email)
	return resp, nil
}

// Refresh rotates a refresh token: the presented session is revoked and
// exactly one successor is created. Replaying an already-rotated token fails
// with store.ErrSessionRevoked.
func (s *AuthService) Refresh(refreshToken string) (*dto.AuthResponse, error) {
	if !s.codec.Validate(refreshToken) {
		return nil, ErrInvalidToken
	}
	claims, err := s.codec.Claims(refreshToken)
	if err != nil || claims.Type != token.TypeRefresh || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	session, err := s.sessions.Find(claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Revoked {
		return nil, store.ErrSessionRevoked
	}
	if !session.ExpiresAt.After(time.Now()) {
		return nil, ErrSessionExpired
	}

	account, err := s.accounts.FindByID(session.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrAccountInactive
	}

	successor, err := s.sessions.Rotate(session.SessionID, account.ID)
	if err != nil {
		return nil, err
	}

	resp, err := s.mintPair(account, successor.SessionID)
	if err != nil {
		return nil, err
	}

	slog.Info("token refreshed", "email", account.Email)
	return resp, nil
}

// Logout blacklists the access token if one is presented and revokes the
// refresh session if one resolves. Both inputs are optional; invalid or
// absent tokens are ignored, so logout is an idempotent no-op at worst.
func (s *AuthService) Logout(accessToken, refreshToken string) error {
	if accessToken != "" && s.codec.Validate(accessToken) {
		claims, err := s.codec.Claims(accessToken)
		if err == nil && claims.Type == token.TypeAccess {
			account, err := s.accounts.FindByEmail(claims.Subject)
			if err != nil && !errors.Is(err, store.ErrAccountNotFound) {
				return err
			}

			if account != nil {
				if err := s.blacklist.Add(accessToken, &account.ID, models.ReasonLogout, claims.ExpiresAt); err != nil {
					return err
				}
				if err := s.accounts.SetPresence(account.ID, models.StatusOffline); err != nil {
					slog.Error("failed to set presence offline", "account_id", account.ID, "error", err)
				}
			} else {
				if err := s.blacklist.Add(accessToken, nil, models.ReasonLogout, claims.ExpiresAt); err != nil {
					return err
				}
			}
		}
	}

	if refreshToken != "" && s.codec.Validate(refreshToken) {
		claims, err := s.codec.Claims(refreshToken)
		if err == nil && claims.Type == token.TypeRefresh && claims.SessionID != "" {
			if err := s.sessions.Revoke(claims.SessionID); err != nil {
				return err
			}
		}
	}

	slog.Info("user logged out")
	return nil
}

// VerifyEmail consumes an email-verification token and flips the account's
// verified flag. Store failures propagate unchanged.
func (s *AuthService) VerifyEmail(tokenString string) error {
	account, err := s.tokens.Consume(tokenString, models.PurposeEmailVerification)
	if err != nil {
		return err
	}
	if err := s.accounts.MarkVerified(account.ID); err != nil {
		return err
	}
	slog.Info("email verified", "email", account.Email)
	return nil
}

// ForgotPassword issues a reset token and triggers delivery when the email
// resolves. An unknown email is swallowed: the caller-facing contract always
// reports success so the endpoint cannot be used to probe for accounts.
func (s *AuthService) ForgotPassword(email string) error {
	account, err := s.accounts.FindByEmail(email)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			slog.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	reset, err := s.tokens.Issue(account.ID, models.PurposeResetPassword, s.resetPasswordTTL, nil)
	if err != nil {
		return err
	}
	s.mailer.SendPasswordResetEmail(account.Email, reset.Token)

	slog.Info("password reset email sent", "email", email)
	return nil
}

// ResetPassword consumes a reset token, replaces the password hash and
// revokes every outstanding session for the account.
func (s *AuthService) ResetPassword(tokenString, newPassword string) error {
	account, err := s.tokens.Consume(tokenString, models.PurposeResetPassword)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(account.ID, string(hash)); err != nil {
		return err
	}

	if err := s.sessions.RevokeAllActive(account.ID); err != nil {
		return err
	}

	slog.Info("password reset completed", "email", account.Email)
	return nil
}

// IssueSession creates a ledger session and mints an access/refresh pair for
// it. It does not revoke anything; callers own that policy.
func (s *AuthService) IssueSession(account *models.Account) (*dto.AuthResponse, error) {
	session, err := s.sessions.Create(account.ID)
	if err != nil {
		return nil, err
	}
	return s.mintPair(account, session.SessionID)
}

func (s *AuthService) mintPair(account *models.Account, sessionID string) (*dto.AuthResponse, error) {
	accessToken, err := s.codec.MintAccess(account.Email, account.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to mint access token: %w", err)
	}
	refreshToken, err := s.codec.MintRefresh(account.Email, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to mint refresh token: %w", err)
	}
	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		User:         dto.NewUserInfo(account),
	}, nil
}
