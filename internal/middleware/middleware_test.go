package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "miplata/internal/errors"
	"miplata/internal/logger"
	"miplata/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

type fakeSessions struct {
	hash string
	err  error
}

func (f *fakeSessions) ValidateSession(_ context.Context, _, tokenHash string) error {
	if f.err != nil {
		return f.err
	}
	if tokenHash != f.hash {
		return apperrors.ErrSessionExpired
	}
	return nil
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse body %q: %v", w.Body.String(), err)
	}
	return body.Error.Code
}

func protectedRouter(sessions SessionValidator) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(sessions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(ContextUserID)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{Base: models.Base{ID: "user-1"}, Email: "a@example.com"}
	token, _, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := []struct {
		name     string
		header   string
		sessions *fakeSessions
		status   int
		code     string
	}{
		{"missing header", "", &fakeSessions{}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", &fakeSessions{}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage token", "Bearer not.a.jwt", &fakeSessions{}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"signed out", "Bearer " + token, &fakeSessions{hash: ""}, http.StatusUnauthorized, "SESSION_EXPIRED"},
		{"valid", "Bearer " + token, &fakeSessions{hash: HashToken(token)}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			protectedRouter(tt.sessions).ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if tt.code != "" {
				if got := errorCode(t, w); got != tt.code {
					t.Errorf("expected code %s, got %s", tt.code, got)
				}
			}
		})
	}
}

func TestParseTokenRoundTrip(t *testing.T) {
	user := &models.User{Base: models.Base{ID: "user-42"}, Email: "b@example.com"}
	token, expiresAt, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "user-42" || claims.Email != "b@example.com" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.ExpiresAt.Unix() != expiresAt.Unix() {
		t.Errorf("expiry mismatch: %v vs %v", claims.ExpiresAt, expiresAt)
	}
	if HashToken(token) == HashToken(token+"x") {
		t.Error("different tokens hashed equal")
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) { _ = c.Error(apperrors.ErrAccountNotFound) })
	r.GET("/raw", func(c *gin.Context) { _ = c.Error(errors.New("db exploded")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app", nil))
	if w.Code != http.StatusNotFound || errorCode(t, w) != "ACCOUNT_NOT_FOUND" {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raw", nil))
	if w.Code != http.StatusInternalServerError || errorCode(t, w) != "INTERNAL_ERROR" {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestRequestLoggingSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated request id")
	}

	const incoming = "0190b6a8-2f4e-7c41-8a6e-5a1f2d3c4b5a"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != incoming {
		t.Errorf("expected incoming id to be kept, got %s", got)
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2)
	r := gin.New()
	r.POST("/login", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := send("10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	w := send("10.0.0.1")
	if w.Code != http.StatusTooManyRequests || errorCode(t, w) != "RATE_LIMITED" {
		t.Errorf("expected RATE_LIMITED, got %d %s", w.Code, w.Body.String())
	}
	if w := send("10.0.0.2"); w.Code != http.StatusOK {
		t.Errorf("other clients should not be limited, got %d", w.Code)
	}
}
