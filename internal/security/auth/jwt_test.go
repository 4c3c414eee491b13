package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("secret", "jobboard")

	token, err := tm.GenerateToken("user-1", "Ada", "recruiter", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Name != "Ada" || claims.Role != "recruiter" {
		t.Errorf("claims mismatch: %+v", claims)
	}
	if claims.Issuer != "jobboard" {
		t.Errorf("expected jobboard issuer, got %s", claims.Issuer)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", "").GenerateToken("user-1", "Ada", "candidate", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := NewTokenManager("secret-b", "").ValidateToken(token); err == nil {
		t.Fatalf("expected validation failure with wrong secret")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", "")
	token, err := tm.GenerateToken("user-1", "Ada", "candidate", -time.Minute)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := tm.ValidateToken(token); err == nil {
		t.Fatalf("expected validation failure for expired token")
	}
}

func TestGenerateRequiresUserID(t *testing.T) {
	if _, err := NewTokenManager("secret", "").GenerateToken("", "Ada", "candidate", time.Hour); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc123")
	if err != nil || token != "abc123" {
		t.Fatalf("expected abc123, got %q (%v)", token, err)
	}

	for _, header := range []string{"", "abc123", "Basic abc123", "Bearer"} {
		if _, err := ExtractToken(header); err == nil {
			t.Errorf("expected error for header %q", header)
		}
	}
}
