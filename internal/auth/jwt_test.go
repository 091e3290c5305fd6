package auth

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/config"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken() returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	userID, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() returned error: %v", err)
	}
	if userID != 42 {
		t.Errorf("ValidateToken() = %d, want 42", userID)
	}
}

func TestInitAppliesDotenvSecret(t *testing.T) {
	// A secret that only lives in a .env file is invisible to package
	// init; it has to flow through config.Load and Init.
	t.Chdir(t.TempDir())
	if err := os.WriteFile(".env", []byte("JWT_SECRET=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("writing .env: %v", err)
	}
	defer os.Unsetenv("JWT_SECRET")

	cfg := config.Load()
	if cfg.JWTSecret != "from-dotenv" {
		t.Fatalf("cfg.JWTSecret = %q, want %q", cfg.JWTSecret, "from-dotenv")
	}

	Init(cfg.JWTSecret)
	defer Init("CHANGE_ME_IN_PRODUCTION")

	token, err := GenerateToken(9)
	if err != nil {
		t.Fatalf("GenerateToken() returned error: %v", err)
	}
	userID, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() returned error: %v", err)
	}
	if userID != 9 {
		t.Errorf("ValidateToken() = %d, want 9", userID)
	}

	// A token signed under the development fallback key must no longer
	// be accepted once the configured secret is in effect.
	fallback := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": int64(9),
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})
	signed, err := fallback.SignedString([]byte("CHANGE_ME_IN_PRODUCTION"))
	if err != nil {
		t.Fatalf("signing fallback token: %v", err)
	}
	if _, err := ValidateToken(signed); err == nil {
		t.Error("expected an error for a token signed with the fallback key")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("expected an error for a malformed token")
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	token, err := GenerateToken(7)
	if err != nil {
		t.Fatalf("GenerateToken() returned error: %v", err)
	}

	// Swap in a bogus signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + ".Zm9yZ2VkLXNpZ25hdHVyZQ"

	if _, err := ValidateToken(tampered); err == nil {
		t.Error("expected an error for a tampered token")
	}
}
