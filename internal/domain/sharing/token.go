package sharing

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bptrack/bptrack/internal/platform/envelope"
)

const tokenIssuer = "bptrack-share"

var (
	ErrMalformedToken = envelope.Invalidf("Invalid access token format")
	ErrInvalidToken   = fmt.Errorf("Invalid access token: %w", envelope.ErrForbidden)
	ErrAccessExpired  = fmt.Errorf("Access expired or not found: %w", envelope.ErrForbidden)
)

// ShareClaims identify one doctor's grant on one patient's data.
type ShareClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 share tokens.
type TokenIssuer struct {
	key []byte
	now func() time.Time
}

func NewTokenIssuer(key []byte) *TokenIssuer {
	return &TokenIssuer{key: key, now: time.Now}
}

func (t *TokenIssuer) Issue(userID int64, email, tokenID string, expiresAt time.Time) (string, error) {
	claims := ShareClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    tokenIssuer,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(t.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
}

// Verify checks the signature, expiry and that the token was issued for
// userID. Undecodable tokens yield ErrMalformedToken; every other failure
// yields ErrInvalidToken.
func (t *TokenIssuer) Verify(raw string, userID int64) (*ShareClaims, error) {
	claims := &ShareClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return t.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrMalformedToken
	case err != nil:
		return nil, ErrInvalidToken
	}
	if claims.Subject != strconv.FormatInt(userID, 10) || claims.Email == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
