package services

import (
	"errors"
	"testing"
	"time"

	"github.com/internal-chat/backend/internal/dto"
	"github.com/internal-chat/backend/internal/models"
	"github.com/internal-chat/backend/internal/store"
	"github.com/internal-chat/backend/internal/token"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	svc       *AuthService
	accounts  *memAccounts
	sessions  *memSessions
	blacklist *memBlacklist
	tokens    *memOneTimeTokens
	mailer    *memMailer
	codec     *token.Codec
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	accounts := newMemAccounts()
	sessions := newMemSessions(7 * 24 * time.Hour)
	blacklist := newMemBlacklist()
	tokens := newMemOneTimeTokens(accounts)
	mailer := &memMailer{}
	codec := token.NewCodec("test-secret-key-0123456789abcdef", 15*time.Minute, 7*24*time.Hour)

	return &authFixture{
		svc: NewAuthService(accounts, sessions, blacklist, tokens, codec, mailer,
			24*time.Hour, time.Hour),
		accounts:  accounts,
		sessions:  sessions,
		blacklist: blacklist,
		tokens:    tokens,
		mailer:    mailer,
		codec:     codec,
	}
}

// registerVerified registers and verifies an account so it can log in.
func (f *authFixture) registerVerified(t *testing.T, email, password, username string) *models.Account {
	t.Helper()
	info, err := f.svc.Register(&dto.RegisterRequest{
		Email: email, Password: password, Username: username, DisplayName: username,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	issued := f.tokens.issued(info.AccountID, models.PurposeEmailVerification)
	if len(issued) != 1 {
		t.Fatalf("expected 1 verification token, got %d", len(issued))
	}
	if err := f.svc.VerifyEmail(issued[0].Token); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	account, err := f.accounts.FindByID(info.AccountID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	return account
}

func TestRegisterVerifyLoginScenario(t *testing.T) {
	f := newAuthFixture(t)

	info, err := f.svc.Register(&dto.RegisterRequest{
		Email: "a@x.com", Password: "password1", Username: "alice", DisplayName: "Alice",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if info.IsVerified {
		t.Error("new account is verified")
	}
	if len(info.Roles) != 1 || info.Roles[0] != models.RoleMember {
		t.Errorf("roles = %v", info.Roles)
	}
	if len(f.mailer.verificationTo) != 1 || f.mailer.verificationTo[0] != "a@x.com" {
		t.Errorf("verification mail sent to %v", f.mailer.verificationTo)
	}

	// Unverified accounts cannot log in.
	if _, err := f.svc.Login("a@x.com", "password1"); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("login before verification: %v", err)
	}

	issued := f.tokens.issued(info.AccountID, models.PurposeEmailVerification)
	if len(issued) != 1 || issued[0].Used {
		t.Fatalf("expected one unused verification token")
	}
	if err := f.svc.VerifyEmail(issued[0].Token); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if !issued[0].Used {
		t.Error("verification token not marked used")
	}

	resp, err := f.svc.Login("a@x.com", "password1")
	if err != nil {
		t.Fatalf("Login after verification: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("login returned empty tokens")
	}
	if active := f.sessions.active(info.AccountID); len(active) != 1 {
		t.Errorf("active sessions after login = %d, want 1", len(active))
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "a@x.com", "password1", "alice")

	_, err := f.svc.Register(&dto.RegisterRequest{
		Email: "a@x.com", Password: "password1", Username: "other", DisplayName: "Other",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email: %v", err)
	}

	_, err = f.svc.Register(&dto.RegisterRequest{
		Email: "b@x.com", Password: "password1", Username: "alice", DisplayName: "Alice 2",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username: %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "a@x.com", "password1", "alice")

	if _, err := f.svc.Login("a@x.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := f.svc.Login("nobody@x.com", "password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: %v", err)
	}
}

func TestLoginIsSessionExclusive(t *testing.T) {
	f := newAuthFixture(t)
	account := f.registerVerified(t, "a@x.com", "password1", "alice")

	if _, err := f.svc.Login("a@x.com", "password1"); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, err := f.svc.Login("a@x.com", "password1"); err != nil {
		t.Fatalf("second login: %v", err)
	}

	if active := f.sessions.active(account.ID); len(active) != 1 {
		t.Errorf("active sessions after second login = %d, want exactly 1", len(active))
	}
	if account.Profile.Status != models.StatusOnline {
		t.Errorf("presence = %q after login", account.Profile.Status)
	}
}

func TestRefreshRotatesAndReplayFails(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "a@x.com", "password1", "alice")

	login, err := f.svc.Login("a@x.com", "password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	first, err := f.svc.Refresh(login.RefreshToken)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if first.RefreshToken == login.RefreshToken {
		t.Error("refresh returned the same refresh token")
	}

	if _, err := f.svc.Refresh(first.RefreshToken); err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	// Replaying the first (already rotated) refresh token must fail.
	if _, err := f.svc.Refresh(login.RefreshToken); !errors.Is(err, store.ErrSessionRevoked) {
		t.Errorf("replayed refresh token: %v, want ErrSessionRevoked", err)
	}
}

func TestRefreshFailureModes(t *testing.T) {
	f := newAuthFixture(t)
	account := f.registerVerified(t, "a@x.com", "password1", "alice")

	if _, err := f.svc.Refresh("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: %v", err)
	}

	// Access token presented as refresh token.
	access, _ := f.codec.MintAccess("a@x.com", nil)
	if _, err := f.svc.Refresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token as refresh: %v", err)
	}

	// Valid signature, unknown session.
	unknown, _ := f.codec.MintRefresh("a@x.com", "no-such-session")
	if _, err := f.svc.Refresh(unknown); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("unknown session: %v", err)
	}

	// Expired session row.
	session, _ := f.sessions.Create(account.ID)
	session.ExpiresAt = time.Now().Add(-time.Minute)
	expired, _ := f.codec.MintRefresh("a@x.com", session.SessionID)
	if _, err := f.svc.Refresh(expired); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expired session: %v", err)
	}

	// Deactivated account.
	session2, _ := f.sessions.Create(account.ID)
	account.IsActive = false
	inactive, _ := f.codec.MintRefresh("a@x.com", session2.SessionID)
	if _, err := f.svc.Refresh(inactive); !errors.Is(err, ErrAccountInactive) {
		t.Errorf("inactive account: %v", err)
	}
}

func TestLogoutWithAccessTokenOnly(t *testing.T) {
	f := newAuthFixture(t)
	account := f.registerVerified(t, "a@x.com", "password1", "alice")
	login, err := f.svc.Login("a@x.com", "password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := f.svc.Logout(login.AccessToken, ""); err != nil {
		t.Fatalf("logout: %v", err)
	}

	revoked, _ := f.blacklist.Contains(login.AccessToken)
	if !revoked {
		t.Error("access token not blacklisted")
	}
	entry := f.blacklist.entries[login.AccessToken]
	if entry.reason != models.ReasonLogout {
		t.Errorf("blacklist reason = %q", entry.reason)
	}
	if entry.accountID == nil || *entry.accountID != account.ID {
		t.Error("blacklist entry not attributed to the account")
	}
	// Access-only logout revokes no session.
	if active := f.sessions.active(account.ID); len(active) != 1 {
		t.Errorf("active sessions = %d, logout without refresh token must not revoke", len(active))
	}
	if account.Profile.Status != models.StatusOffline {
		t.Errorf("presence = %q after logout", account.Profile.Status)
	}
}

func TestLogoutWithRefreshTokenRevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	account := f.registerVerified(t, "a@x.com", "password1", "alice")
	login, _ := f.svc.Login("a@x.com", "password1")

	if err := f.svc.Logout("", login.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if active := f.sessions.active(account.ID); len(active) != 0 {
		t.Errorf("active sessions after logout = %d", len(active))
	}
}

func TestLogoutSameAccessTokenTwice(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "a@x.com", "password1", "alice")
	login, _ := f.svc.Login("a@x.com", "password1")

	if err := f.svc.Logout(login.AccessToken, ""); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if err := f.svc.Logout(login.AccessToken, ""); err != nil {
		t.Errorf("repeat logout of the same token: %v", err)
	}
	if len(f.blacklist.entries) != 1 {
		t.Errorf("blacklist entries = %d, want 1", len(f.blacklist.entries))
	}
}

func TestLogoutIsIdempotentNoOp(t *testing.T) {
	f := newAuthFixture(t)

	if err := f.svc.Logout("", ""); err != nil {
		t.Errorf("logout with nothing: %v", err)
	}
	if err := f.svc.Logout("garbage", "also-garbage"); err != nil {
		t.Errorf("logout with invalid tokens: %v", err)
	}
}

func TestVerifyEmailTokenSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	info, err := f.svc.Register(&dto.RegisterRequest{
		Email: "a@x.com", Password: "password1", Username: "alice", DisplayName: "Alice",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	issued := f.tokens.issued(info.AccountID, models.PurposeEmailVerification)

	if err := f.svc.VerifyEmail(issued[0].Token); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if err := f.svc.VerifyEmail(issued[0].Token); !errors.Is(err, store.ErrTokenUsed) {
		t.Errorf("second verify: %v, want ErrTokenUsed", err)
	}
	if err := f.svc.VerifyEmail("no-such-token"); !errors.Is(err, store.ErrTokenNotFound) {
		t.Errorf("unknown token: %v", err)
	}
}

func TestForgotPasswordHidesUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "a@x.com", "password1", "alice")

	if err := f.svc.ForgotPassword("nobody@x.com"); err != nil {
		t.Errorf("unknown email must report success: %v", err)
	}
	if len(f.mailer.resetTo) != 0 {
		t.Error("reset mail sent for unknown email")
	}

	if err := f.svc.ForgotPassword("a@x.com"); err != nil {
		t.Fatalf("known email: %v", err)
	}
	if len(f.mailer.resetTo) != 1 || f.mailer.resetTo[0] != "a@x.com" {
		t.Errorf("reset mail recipients = %v", f.mailer.resetTo)
	}
}

func TestResetPasswordRevokesAllSessions(t *testing.T) {
	f := newAuthFixture(t)
	account := f.registerVerified(t, "a@x.com", "password1", "alice")
	login, _ := f.svc.Login("a@x.com", "password1")

	if err := f.svc.ForgotPassword("a@x.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	issued := f.tokens.issued(account.ID, models.PurposeResetPassword)
	if len(issued) != 1 {
		t.Fatalf("expected 1 reset token, got %d", len(issued))
	}

	if err := f.svc.ResetPassword(issued[0].Token, "new-password-1"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	if active := f.sessions.active(account.ID); len(active) != 0 {
		t.Errorf("active sessions after password reset = %d, want 0", len(active))
	}
	if bcrypt.CompareHashAndPassword([]byte(*account.Password), []byte("new-password-1")) != nil {
		t.Error("password hash not updated")
	}

	// The old refresh chain is dead.
	if _, err := f.svc.Refresh(login.RefreshToken); !errors.Is(err, store.ErrSessionRevoked) {
		t.Errorf("old refresh token after reset: %v", err)
	}

	// Token is single-use even for reset.
	if err := f.svc.ResetPassword(issued[0].Token, "another-password"); !errors.Is(err, store.ErrTokenUsed) {
		t.Errorf("reused reset token: %v", err)
	}

	// New credentials work.
	if _, err := f.svc.Login("a@x.com", "new-password-1"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}
