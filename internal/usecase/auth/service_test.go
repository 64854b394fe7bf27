package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mabel-app/mabel-backend/internal/adapter/repository"
	"github.com/mabel-app/mabel-backend/internal/usecase/auth"
	uerr "github.com/mabel-app/mabel-backend/internal/usecase/errors"
	"github.com/mabel-app/mabel-backend/pkg/jwt"
)

func setup(t *testing.T) (auth.Service, *jwt.Manager) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Exec(`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error; err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	tokens := jwt.NewManager("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)
	return auth.NewService(repository.NewUserRepository(db), tokens, zap.NewNop()), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens := setup(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "Ruth@Example.com", "a-long-password", "Ruth")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "ruth@example.com" {
		t.Errorf("email should be normalized, got %s", user.Email)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}

	claims, err := tokens.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("issued access token is invalid: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("token user = %s, want %s", claims.UserID, user.ID)
	}

	// Login with the same credentials, any casing
	loggedIn, _, err := svc.Login(ctx, "RUTH@example.com", "a-long-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Error("login returned a different user")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "ruth@example.com", "a-long-password", "Ruth"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, _, err := svc.Register(ctx, "ruth@example.com", "another-password", "Ruth Again")
	if !errors.Is(err, uerr.ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "ruth@example.com", "a-long-password", "Ruth"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, _, err := svc.Login(ctx, "ruth@example.com", "wrong-password")
	if !errors.Is(err, uerr.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	_, _, err = svc.Login(ctx, "nobody@example.com", "a-long-password")
	if !errors.Is(err, uerr.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "ruth@example.com", "a-long-password", "Ruth")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Fatal("expected a fresh access token")
	}

	me, err := svc.Me(ctx, user.ID)
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if me.Email != "ruth@example.com" {
		t.Errorf("unexpected email %s", me.Email)
	}

	_, err = svc.Refresh(ctx, "not-a-token")
	if !errors.Is(err, uerr.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
