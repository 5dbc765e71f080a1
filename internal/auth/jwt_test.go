package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/jlacunza/udcito/internal/repository"
)

func testUser() *repository.User {
	return &repository.User{
		Email:    "student@udc.edu.ar",
		FullName: "Test Student",
		Role:     repository.RoleUser,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager := NewJWTManager(DefaultJWTConfig("secret"))

	token, err := manager.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}

	if claims.Email != "student@udc.edu.ar" {
		t.Errorf("unexpected email: %s", claims.Email)
	}
	if claims.Role != string(repository.RoleUser) {
		t.Errorf("unexpected role: %s", claims.Role)
	}
	if claims.Subject != "student@udc.edu.ar" {
		t.Errorf("unexpected subject: %s", claims.Subject)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	manager := NewJWTManager(DefaultJWTConfig("secret"))
	other := NewJWTManager(DefaultJWTConfig("different-secret"))

	token, err := manager.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	config := DefaultJWTConfig("secret")
	config.Expiry = -time.Hour
	manager := NewJWTManager(config)

	token, err := manager.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := manager.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	manager := NewJWTManager(DefaultJWTConfig("secret"))

	if _, err := manager.ValidateToken("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestTokenExpiry(t *testing.T) {
	config := DefaultJWTConfig("secret")
	config.Expiry = time.Hour
	manager := NewJWTManager(config)

	token, err := manager.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	expiry, err := manager.TokenExpiry(token)
	if err != nil {
		t.Fatalf("failed to get expiry: %v", err)
	}

	until := time.Until(expiry)
	if until < 59*time.Minute || until > 61*time.Minute {
		t.Errorf("expected expiry about an hour away, got %v", until)
	}
}
