package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/session"

	"brandwatch/internal/config"
)

// stubStore answers Ping; any other call panics into the recover middleware.
type stubStore struct {
	Store
	pingErr error
}

func (s stubStore) Ping(context.Context) error { return s.pingErr }

func testConfig() *config.Config {
	return &config.Config{
		Env:             "development",
		BaseURL:         "http://localhost:8000",
		SessionSecret:   "test-secret-that-is-long-enough-for-production",
		RateLimitMax:    100,
		RateLimitWindow: time.Minute,
	}
}

func newTestServer(t *testing.T, cfg *config.Config, pingErr error) *Server {
	t.Helper()
	s := New(cfg, nil)
	if err := s.RegisterRoutes(context.Background(), Deps{Store: stubStore{pingErr: pingErr}}); err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}
	return s
}

type errorEnvelope struct {
	Error   bool              `json:"error"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

func send(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp, raw
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		method     string
		target     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"liveness", nil, "GET", "/healthz", "", 200, ""},
		{"readiness", nil, "GET", "/readyz", "", 200, ""},
		{"readiness without database", errors.New("connection refused"), "GET", "/readyz", "", 503, ""},
		{"unknown route", nil, "GET", "/api/widgets", "", 404, "NOT_FOUND"},
		{"bad brand body", nil, "POST", "/api/brands", "{", 400, "BAD_REQUEST"},
		{"bad ranking id", nil, "GET", "/api/rankings/abc", "", 400, "BAD_REQUEST"},
		{"no me route without OIDC", nil, "GET", "/api/me", "", 404, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testConfig(), tt.pingErr)
			resp, raw := send(t, s.App, tt.method, tt.target, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.wantStatus, raw)
			}
			if tt.wantCode == "" {
				return
			}
			var env errorEnvelope
			if err := json.Unmarshal(raw, &env); err != nil {
				t.Fatalf("decode %s: %v", raw, err)
			}
			if !env.Error || env.Code != tt.wantCode {
				t.Errorf("envelope = %+v, want code %s", env, tt.wantCode)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitMax = 2
	s := newTestServer(t, cfg, nil)

	for i := range 2 {
		if resp, _ := send(t, s.App, "GET", "/healthz", ""); resp.StatusCode != 200 {
			t.Fatalf("request %d: status = %d", i+1, resp.StatusCode)
		}
	}

	resp, raw := send(t, s.App, "GET", "/healthz", "")
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	if env.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("code = %q", env.Code)
	}

	if resp, _ := send(t, s.App, "GET", "/metrics", ""); resp.StatusCode != 200 {
		t.Errorf("metrics status = %d, want 200 past the limit", resp.StatusCode)
	}
}

// TestEncryptCookieSessionRoundTrip verifies that the encryptcookie +
// session middleware stack does not panic when a client replays encrypted
// session cookies across multiple requests.  This was broken in Fiber
// v3.0.0-rc.3 (index-out-of-range in encryptcookie decryption).
func TestEncryptCookieSessionRoundTrip(t *testing.T) {
	secret := "test-secret-that-is-long-enough-for-production"
	encryptionKey := deriveEncryptionKey(secret)

	app := fiber.New()

	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: encryptionKey,
	}))

	sessionMiddleware, _ := session.NewWithStore(session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	app.Use(sessionMiddleware)

	// Handler that writes a session value on POST and reads it on GET.
	app.Post("/session-set", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		if sess == nil {
			return c.Status(500).SendString("no session")
		}
		sess.Set("user_sub", "sub-alice")
		return c.SendString("ok")
	})
	app.Get("/session-get", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		if sess == nil {
			return c.Status(500).SendString("no session")
		}
		val, _ := sess.Get("user_sub").(string)
		return c.SendString(val)
	})

	// --- Request 1: establish a session ---
	req, _ := http.NewRequest("POST", "/session-set", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request 1 failed: %v", err)
	}
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("request 1: expected 200, got %d: %s", resp.StatusCode, body)
	}

	// Collect Set-Cookie headers from the response.
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("request 1: no cookies returned")
	}

	// --- Request 2: replay cookies (triggers encryptcookie decryption) ---
	req2, _ := http.NewRequest("GET", "/session-get", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}

	resp2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("request 2 failed (possible encryptcookie panic): %v", err)
	}
	body, _ := io.ReadAll(resp2.Body)
	if resp2.StatusCode != 200 {
		t.Fatalf("request 2: expected 200, got %d: %s", resp2.StatusCode, body)
	}
	if string(body) != "sub-alice" {
		t.Errorf("request 2: expected session value 'sub-alice', got %q", body)
	}

	// --- Request 3: one more round-trip to confirm stability ---
	cookies2 := resp2.Cookies()
	req3, _ := http.NewRequest("GET", "/session-get", nil)
	// Use cookies from resp2 if present, otherwise fall back to original.
	replayCookies := cookies2
	if len(replayCookies) == 0 {
		replayCookies = cookies
	}
	for _, c := range replayCookies {
		req3.AddCookie(c)
	}

	resp3, err := app.Test(req3)
	if err != nil {
		t.Fatalf("request 3 failed: %v", err)
	}
	body3, _ := io.ReadAll(resp3.Body)
	if resp3.StatusCode != 200 {
		t.Fatalf("request 3: expected 200, got %d: %s", resp3.StatusCode, body3)
	}
	if string(body3) != "sub-alice" {
		t.Errorf("request 3: expected session value 'sub-alice', got %q", body3)
	}
}
