package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/bptrack/bptrack/internal/platform/envelope"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only")

func createTestToken(t *testing.T, claims Claims, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return tokenStr
}

func validClaims(sub string) Claims {
	return Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *envelope.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected envelope.Error, got %T (%v)", err, err)
	}
	return appErr.Status
}

func run(mw echo.MiddlewareFunc, req *http.Request) (context.Context, error) {
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	var seen context.Context
	err := mw(func(c echo.Context) error {
		seen = c.Request().Context()
		return nil
	})(c)
	return seen, err
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	_, err := run(JWTMiddleware(JWTConfig{SigningKey: testSigningKey}), httptest.NewRequest(http.MethodGet, "/api/symptoms", nil))
	if err == nil {
		t.Fatal("expected error for missing header")
	}
	if got := statusOf(t, err); got != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", got)
	}
}

func TestJWTMiddleware_InvalidFormat(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "Token abc123"},
		{"missing token", "Bearer"},
		{"empty value", "Bearer "},
		{"basic auth", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			_, err := run(JWTMiddleware(JWTConfig{SigningKey: testSigningKey}), req)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := statusOf(t, err); got != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", got)
			}
		})
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+createTestToken(t, validClaims("42"), testSigningKey))

	ctx, err := run(JWTMiddleware(JWTConfig{SigningKey: testSigningKey}), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uid, ok := UserIDFromContext(ctx)
	if !ok || uid != 42 {
		t.Errorf("expected user 42 in context, got %d (%v)", uid, ok)
	}
}

func TestJWTMiddleware_QueryToken(t *testing.T) {
	tok := createTestToken(t, validClaims("7"), testSigningKey)
	req := httptest.NewRequest(http.MethodGet, "/ws?access_token="+tok, nil)

	ctx, err := run(JWTMiddleware(JWTConfig{SigningKey: testSigningKey}), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uid, _ := UserIDFromContext(ctx); uid != 7 {
		t.Errorf("expected user 7, got %d", uid)
	}
}

func TestJWTMiddleware_Rejects(t *testing.T) {
	expired := validClaims("1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noExpiry := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}

	tests := map[string]string{
		"wrong key":   createTestToken(t, validClaims("1"), []byte("other-key")),
		"expired":     createTestToken(t, expired, testSigningKey),
		"no expiry":   createTestToken(t, noExpiry, testSigningKey),
		"non numeric": createTestToken(t, validClaims("alice"), testSigningKey),
		"negative":    createTestToken(t, validClaims("-3"), testSigningKey),
		"not a jwt":   "garbage",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			_, err := run(JWTMiddleware(JWTConfig{SigningKey: testSigningKey}), req)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := statusOf(t, err); got != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", got)
			}
		})
	}
}

func TestJWTMiddleware_Skipper(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testSigningKey, Skipper: AuthSkipper})
	if _, err := run(mw, httptest.NewRequest(http.MethodGet, "/health", nil)); err != nil {
		t.Errorf("expected /health to skip auth, got %v", err)
	}
}

func TestIssueToken_RoundTrip(t *testing.T) {
	tok, err := IssueToken(testSigningKey, "bptrack", 9, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	ctx, err := run(JWTMiddleware(JWTConfig{SigningKey: testSigningKey, Issuer: "bptrack"}), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uid, _ := UserIDFromContext(ctx); uid != 9 {
		t.Errorf("expected user 9, got %d", uid)
	}

	if _, err := IssueToken(testSigningKey, "", 0, time.Hour); err == nil {
		t.Error("expected error for user id 0")
	}
}

func TestDevAuthMiddleware_NoSubject(t *testing.T) {
	ctx, err := run(DevAuthMiddleware(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := UserIDFromContext(ctx); ok {
		t.Error("expected no subject in development mode")
	}
}

func TestCheckUser(t *testing.T) {
	if err := CheckUser(context.Background(), 5); err != nil {
		t.Errorf("expected anonymous context to pass, got %v", err)
	}
	ctx := WithUserID(context.Background(), 5)
	if err := CheckUser(ctx, 5); err != nil {
		t.Errorf("expected own records to pass, got %v", err)
	}
	err := CheckUser(ctx, 6)
	if err == nil {
		t.Fatal("expected error for another user's records")
	}
	if got := statusOf(t, err); got != http.StatusForbidden {
		t.Errorf("expected 403, got %d", got)
	}
}
