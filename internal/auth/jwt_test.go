package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	token, err := manager.Generate("user@example.com", "ROLE_USER")
	if err != nil {
		t.Fatalf("Generate token: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate token: %v", err)
	}

	if claims.Subject != "user@example.com" {
		t.Errorf("Expected subject user@example.com, got %s", claims.Subject)
	}
	if claims.Role != "ROLE_USER" {
		t.Errorf("Expected role ROLE_USER, got %s", claims.Role)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Generate("user@example.com", "ROLE_USER")
	if err != nil {
		t.Fatalf("Generate token: %v", err)
	}

	if _, err := NewTokenManager("secret-b", time.Hour).Validate(token); err == nil {
		t.Error("Expected validation to fail with a different secret")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	manager := NewTokenManager("test-secret", -time.Minute)

	token, err := manager.Generate("user@example.com", "ROLE_USER")
	if err != nil {
		t.Fatalf("Generate token: %v", err)
	}

	if _, err := manager.Validate(token); err == nil {
		t.Error("Expected validation to fail for an expired token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	if err != nil {
		t.Fatalf("Hash password: %v", err)
	}

	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("Expected matching password to verify")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Error("Expected non-matching password to fail")
	}
}
