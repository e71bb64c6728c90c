package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	domainerror "github.com/gobuddy/backend/internal/domain/error"
)

func TestTokenService(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	email := "admin@gobuddy.ph"

	t.Run("a generated token validates back to its claims", func(t *testing.T) {
		service := NewTokenService("test-secret", time.Hour)

		token, err := service.GenerateAccessToken(ctx, userID, email)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		claims, err := service.ValidateAccessToken(ctx, token)
		if err != nil {
			t.Fatalf("validate failed: %v", err)
		}
		if claims.UserID != userID || claims.Email != email {
			t.Errorf("claims drifted: %+v", claims)
		}
	})

	t.Run("an expired token maps to the expiry error", func(t *testing.T) {
		service := NewTokenService("test-secret", -time.Minute)

		token, err := service.GenerateAccessToken(ctx, userID, email)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		_, err = service.ValidateAccessToken(ctx, token)
		if !errors.Is(err, domainerror.ErrExpiredToken) {
			t.Errorf("expected ErrExpiredToken, got %v", err)
		}
	})

	t.Run("a token signed with another secret is rejected", func(t *testing.T) {
		issuer := NewTokenService("secret-a", time.Hour)
		validator := NewTokenService("secret-b", time.Hour)

		token, err := issuer.GenerateAccessToken(ctx, userID, email)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}

		_, err = validator.ValidateAccessToken(ctx, token)
		if !errors.Is(err, domainerror.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		service := NewTokenService("test-secret", time.Hour)

		_, err := service.ValidateAccessToken(ctx, "not.a.token")
		if !errors.Is(err, domainerror.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
