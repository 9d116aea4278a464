package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/bptrack/bptrack/internal/platform/envelope"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// Claims are the API bearer token claims. Subject is the decimal user id.
type Claims struct {
	jwt.RegisteredClaims
}

type JWTConfig struct {
	SigningKey []byte
	Issuer     string
	// Skipper bypasses authentication when it returns true.
	Skipper func(c echo.Context) bool
}

func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	keyFunc := func(*jwt.Token) (interface{}, error) { return cfg.SigningKey, nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			tokenStr, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, keyFunc, opts...)
			if err != nil || !token.Valid {
				return unauthorized("invalid token")
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil || userID <= 0 {
				return unauthorized("invalid token subject")
			}

			ctx := context.WithValue(c.Request().Context(), UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers
// on websocket upgrades, so an access_token query parameter is accepted too.
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if q := c.QueryParam("access_token"); q != "" {
			return q, nil
		}
		return "", unauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", unauthorized("invalid authorization format")
	}
	return strings.TrimSpace(parts[1]), nil
}

func unauthorized(msg string) *envelope.Error {
	return &envelope.Error{Status: http.StatusUnauthorized, Message: msg}
}

// DevAuthMiddleware lets every request through without a subject, so
// CheckUser accepts any user id.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(c)
		}
	}
}

// IssueToken signs an API bearer token for userID.
func IssueToken(signingKey []byte, issuer string, userID int64, ttl time.Duration) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("user id must be positive")
	}
	now := time.Now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(UserIDKey).(int64)
	return uid, ok
}

// WithUserID returns ctx carrying an authenticated user id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// CheckUser rejects access to another user's records. Without an
// authenticated subject every user id is allowed.
func CheckUser(ctx context.Context, userID int64) error {
	uid, ok := UserIDFromContext(ctx)
	if !ok || uid == userID {
		return nil
	}
	return envelope.Forbidden("Access to this user's records is not allowed")
}
