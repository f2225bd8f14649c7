package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/internal-chat/backend/internal/config"
)

func TestGoogleCallbackEscapesRedirectParams(t *testing.T) {
	app := fiber.New()
	cfg := &config.Config{FrontendOAuthRedirect: "https://chat.example.com/oauth/callback"}
	app.Get("/auth/google/callback", NewGoogleAuthHandler(nil, cfg).Callback)

	// Codes from Google routinely contain '/' and '+'; both must survive the
	// round trip through the frontend redirect.
	code := "4/0Ab+c&d=e"
	state := "st&te"
	target := "/auth/google/callback?code=" + url.QueryEscape(code) + "&state=" + url.QueryEscape(state)
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}

	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("redirect location: %v", err)
	}
	if got := loc.Query().Get("code"); got != code {
		t.Errorf("code round-tripped as %q, want %q", got, code)
	}
	if got := loc.Query().Get("state"); got != state {
		t.Errorf("state round-tripped as %q, want %q", got, state)
	}
}

func TestGoogleCallbackRequiresCode(t *testing.T) {
	app := fiber.New()
	cfg := &config.Config{FrontendOAuthRedirect: "https://chat.example.com/oauth/callback"}
	app.Get("/auth/google/callback", NewGoogleAuthHandler(nil, cfg).Callback)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/auth/google/callback", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthUsesResponseEnvelope(t *testing.T) {
	app := fiber.New()
	h := &HealthHandler{ping: func() error { return nil }}
	app.Get("/health", h.Check)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Status string `json:"status"`
			DB     string `json:"db"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	if !body.Success {
		t.Error("success = false")
	}
	if body.Data.Status != "ok" || body.Data.DB != "ok" {
		t.Errorf("data = %+v", body.Data)
	}
}
