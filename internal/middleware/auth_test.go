package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/lamchahon-maker/web-dashboard/internal/config"
	"github.com/lamchahon-maker/web-dashboard/internal/logging"
)

// generateAPIKey generates a valid API key of specified length
func generateAPIKey(length int) string {
	key := make([]byte, length)
	for i := range key {
		key[i] = 'a' + byte(i%26)
	}
	return string(key)
}

func newAuthApp(cfg config.AuthConfig) *fiber.App {
	app := fiber.New()
	app.Use(APIKeyAuth(logging.NewNop(), cfg))
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected bool
	}{
		{"exactly 32 chars", generateAPIKey(32), true},
		{"64 chars", generateAPIKey(64), true},
		{"31 chars", generateAPIKey(31), false},
		{"empty", "", false},
		{"whitespace only", "                                  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateAPIKey(tt.key); got != tt.expected {
				t.Errorf("ValidateAPIKey(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"abcdefghijklmnop", "abcd****"},
		{"abcde", "abcd****"},
		{"abcd", "****"},
		{"", "****"},
	}

	for _, tt := range tests {
		if got := maskAPIKey(tt.key); got != tt.expected {
			t.Errorf("maskAPIKey(%q) = %q, want %q", tt.key, got, tt.expected)
		}
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	app := newAuthApp(config.AuthConfig{Enabled: false})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	validKey := generateAPIKey(32)
	app := newAuthApp(config.AuthConfig{Enabled: true, APIKeys: []string{generateAPIKey(40), validKey}})

	tests := []struct {
		name       string
		headerName string
		headerVal  string
	}{
		{"X-API-Key header", "X-API-Key", validKey},
		{"Authorization Bearer header", "Authorization", "Bearer " + validKey},
		{"Authorization plain header", "Authorization", validKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set(tt.headerName, tt.headerVal)

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to test request: %v", err)
			}
			if resp.StatusCode != fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("Expected status 200, got %d, body: %s", resp.StatusCode, string(body))
			}
		})
	}
}

func TestAPIKeyAuth_InvalidKey(t *testing.T) {
	app := newAuthApp(config.AuthConfig{Enabled: true, APIKeys: []string{generateAPIKey(32)}})

	tests := []struct {
		name      string
		headerVal string
	}{
		{"missing API key", ""},
		{"wrong API key", generateAPIKey(32) + "wrong"},
		{"prefix of a valid key", generateAPIKey(31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.headerVal != "" {
				req.Header.Set(APIKeyHeader, tt.headerVal)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to test request: %v", err)
			}
			if resp.StatusCode != fiber.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", resp.StatusCode)
			}
		})
	}
}

func TestAPIKeyAuth_WeakKeysIgnored(t *testing.T) {
	weakKeys := []string{"a", "short", generateAPIKey(31)}
	app := newAuthApp(config.AuthConfig{Enabled: true, APIKeys: weakKeys})

	for _, weakKey := range weakKeys {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(APIKeyHeader, weakKey)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to test request: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("Weak key %q should be rejected, got status %d", maskAPIKey(weakKey), resp.StatusCode)
		}
	}
}
