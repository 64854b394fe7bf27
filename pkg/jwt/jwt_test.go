package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testManager() *Manager {
	return NewManager("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager()
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "ruth@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user ID = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "ruth@example.com" {
		t.Errorf("email = %s", claims.Email)
	}
}

func TestAccessTokenWrongSecretRejected(t *testing.T) {
	m := testManager()
	token, err := m.GenerateAccessToken(uuid.New(), "ruth@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	other := NewManager("different-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)
	if _, err := other.ValidateAccessToken(token); err == nil {
		t.Fatal("expected validation to fail with a different secret")
	}
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	m := NewManager("access-secret", "refresh-secret", -time.Minute, 168*time.Hour)
	token, err := m.GenerateAccessToken(uuid.New(), "ruth@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if _, err := m.ValidateAccessToken(token); err == nil {
		t.Fatal("expected an expired token to be rejected")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := testManager()
	userID := uuid.New()

	token, err := m.GenerateRefreshToken(userID)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	got, err := m.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("ValidateRefreshToken failed: %v", err)
	}
	if got != userID {
		t.Errorf("user ID = %s, want %s", got, userID)
	}
}

func TestRefreshTokenNotValidAsAccessToken(t *testing.T) {
	m := testManager()
	token, err := m.GenerateRefreshToken(uuid.New())
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}
	if _, err := m.ValidateAccessToken(token); err == nil {
		t.Fatal("a refresh token must not validate as an access token")
	}
}
