package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gobuddy/backend/internal/application/adapter"
	domainerror "github.com/gobuddy/backend/internal/domain/error"
)

type stubTokenService struct {
	claims      *adapter.TokenClaims
	validateErr error
}

func (s *stubTokenService) GenerateAccessToken(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	return "", nil
}

func (s *stubTokenService) ValidateAccessToken(ctx context.Context, token string) (*adapter.TokenClaims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return s.claims, nil
}

func newAuthRouter(tokens adapter.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewAuthMiddleware(tokens).Authenticate())
	router.GET("/protected", func(c *gin.Context) {
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID.String()})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	tokens := &stubTokenService{claims: &adapter.TokenClaims{UserID: userID, Email: "admin@gobuddy.ph"}}

	t.Run("a valid bearer token passes through with claims set", func(t *testing.T) {
		router := newAuthRouter(tokens)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer some-token")

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("a missing header is rejected", func(t *testing.T) {
		router := newAuthRouter(tokens)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("a non-bearer scheme is rejected", func(t *testing.T) {
		router := newAuthRouter(tokens)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("a rejected token is unauthorized", func(t *testing.T) {
		router := newAuthRouter(&stubTokenService{validateErr: domainerror.ErrExpiredToken})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer stale-token")

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}

func TestRateLimiter(t *testing.T) {
	t.Run("blocks after the attempt budget within a window", func(t *testing.T) {
		limiter := NewRateLimiterWithConfig(3, time.Minute)
		for i := 0; i < 3; i++ {
			if !limiter.allow("10.0.0.1") {
				t.Fatalf("attempt %d should be allowed", i+1)
			}
		}
		if limiter.allow("10.0.0.1") {
			t.Error("expected the fourth attempt blocked")
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter := NewRateLimiterWithConfig(1, time.Minute)
		if !limiter.allow("10.0.0.1") {
			t.Fatal("first key should be allowed")
		}
		if !limiter.allow("10.0.0.2") {
			t.Error("a different key should have its own budget")
		}
	})

	t.Run("the window resets the budget", func(t *testing.T) {
		limiter := NewRateLimiterWithConfig(1, 10*time.Millisecond)
		if !limiter.allow("10.0.0.1") {
			t.Fatal("first attempt should be allowed")
		}
		if limiter.allow("10.0.0.1") {
			t.Fatal("second attempt should be blocked")
		}
		time.Sleep(20 * time.Millisecond)
		if !limiter.allow("10.0.0.1") {
			t.Error("expected a fresh budget after the window")
		}
	})

	t.Run("reset clears all state", func(t *testing.T) {
		limiter := NewRateLimiterWithConfig(1, time.Minute)
		limiter.allow("10.0.0.1")
		limiter.Reset()
		if !limiter.allow("10.0.0.1") {
			t.Error("expected a fresh budget after reset")
		}
	})
}
