// Package utils provides helper functions for token creation and
// password hashing shared by handlers and middleware.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed short-lived JWT plus its expiry and the jti
// under which it can be revoked.
type AccessToken struct {
	Token string    `json:"token"`
	ID    string    `json:"-"`
	Exp   time.Time `json:"expires"`
}

// RefreshToken is a signed long-lived JWT. It carries only the user
// id; the value is persisted single-slot on the user row and mirrored
// to the client as an HTTP-only cookie.
type RefreshToken struct {
	Token string    `json:"token"`
	Exp   time.Time `json:"expires"`
}

// NewAccessToken signs an HS256 access token for a user. Claims: sub
// (user id), email, jti (random id used by the revocation list), exp
// and iat.
func NewAccessToken(secret string, userID uint64, email string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	jti, err := randomHex(16)
	if err != nil {
		return AccessToken{}, err
	}
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"jti":   jti,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, ID: jti, Exp: exp}, nil
}

// NewRefreshToken signs an HS256 refresh token holding only the user
// id. A separate secret keeps refresh tokens from doubling as access
// tokens.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (RefreshToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Token: signed, Exp: exp}, nil
}

// NewResetToken signs a short-lived password-reset token (sub +
// email + purpose=reset).
func NewResetToken(secret string, userID uint64, email string, ttlMin int) (string, error) {
	claims := jwt.MapClaims{
		"sub":     userID,
		"email":   email,
		"purpose": "reset",
		"exp":     time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute).Unix(),
		"iat":     time.Now().UTC().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies an HS256 token and returns its claims. Expired
// tokens surface jwt.ErrTokenExpired so callers can distinguish
// expiry from tampering.
func ParseToken(secret, raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// SubjectID extracts the sub claim as a user id. JWT numbers decode
// as float64; some encoders emit numeric strings instead.
func SubjectID(claims jwt.MapClaims) (uint64, bool) {
	switch v := claims["sub"].(type) {
	case float64:
		return uint64(v), true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// randomHex returns n bytes of cryptographically secure random data
// hex-encoded.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
