package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/config"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/logger"
)

// newTestLogger creates a logger that discards output.
func newTestLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tokens := NewTokenManager(testSecret, time.Hour)
	token, err := tokens.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var capturedUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserID, _ = UserIDFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	RequireAuth(tokens, newTestLogger())(next).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if capturedUserID != "user-123" {
		t.Errorf("user id = %q, want user-123", capturedUserID)
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	tokens := NewTokenManager(testSecret, time.Hour)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	w := httptest.NewRecorder()

	RequireAuth(tokens, newTestLogger())(next).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	tokens := NewTokenManager(testSecret, time.Hour)
	token, _ := tokens.Generate("user-123")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", token) // missing "Bearer " prefix
	w := httptest.NewRecorder()

	RequireAuth(tokens, newTestLogger())(next).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	tokens := NewTokenManager(testSecret, time.Hour)
	forged := NewTokenManager("another-secret-also-32-bytes!!!!", time.Hour)
	token, _ := forged.Generate("user-123")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	RequireAuth(tokens, newTestLogger())(next).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
