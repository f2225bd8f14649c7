package token

import (
	"testing"
	"time"
)

func newTestCodec() *Codec {
	return NewCodec("test-secret-key-0123456789abcdef", 15*time.Minute, 7*24*time.Hour)
}

func TestMintAccessRoundTrip(t *testing.T) {
	codec := newTestCodec()

	signed, err := codec.MintAccess("alice@chat.internal", []string{"MEMBER", "ADMIN"})
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}
	if !codec.Validate(signed) {
		t.Fatal("freshly minted access token did not validate")
	}

	claims, err := codec.Claims(signed)
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if claims.Subject != "alice@chat.internal" {
		t.Errorf("subject = %q", claims.Subject)
	}
	if claims.Type != TypeAccess {
		t.Errorf("type = %q, want %q", claims.Type, TypeAccess)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "MEMBER" || claims.Roles[1] != "ADMIN" {
		t.Errorf("roles = %v", claims.Roles)
	}
	if claims.SessionID != "" {
		t.Errorf("access token carries sessionId %q", claims.SessionID)
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Error("expiry not in the future")
	}
}

func TestMintRefreshCarriesSessionID(t *testing.T) {
	codec := newTestCodec()

	signed, err := codec.MintRefresh("alice@chat.internal", "sess-123")
	if err != nil {
		t.Fatalf("MintRefresh: %v", err)
	}

	claims, err := codec.Claims(signed)
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if claims.Type != TypeRefresh {
		t.Errorf("type = %q, want %q", claims.Type, TypeRefresh)
	}
	if claims.SessionID != "sess-123" {
		t.Errorf("sessionId = %q", claims.SessionID)
	}
}

func TestValidateRejectsBadInput(t *testing.T) {
	codec := newTestCodec()
	good, _ := codec.MintAccess("alice@chat.internal", nil)

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"truncated", good[:len(good)-10]},
		{"tampered signature", good[:len(good)-4] + "AAAA"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if codec.Validate(tc.token) {
				t.Errorf("Validate(%q) = true", tc.token)
			}
			if _, err := codec.Claims(tc.token); err == nil {
				t.Error("Claims accepted invalid token")
			}
		})
	}
}

func TestValidateRejectsForeignKey(t *testing.T) {
	codec := newTestCodec()
	other := NewCodec("a-completely-different-secret-key", 15*time.Minute, time.Hour)

	signed, _ := other.MintAccess("alice@chat.internal", nil)
	if codec.Validate(signed) {
		t.Error("token signed with a different key validated")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	codec := NewCodec("test-secret-key-0123456789abcdef", -time.Minute, -time.Minute)

	signed, err := codec.MintAccess("alice@chat.internal", nil)
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}
	if codec.Validate(signed) {
		t.Error("expired token validated")
	}
}
