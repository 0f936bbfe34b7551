package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken(testSecret, 42, "car@example.com", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if at.ID == "" {
		t.Fatal("access token has empty jti")
	}

	claims, err := ParseToken(testSecret, at.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims["email"] != "car@example.com" {
		t.Errorf("email claim = %v", claims["email"])
	}
	if claims["jti"] != at.ID {
		t.Errorf("jti claim = %v, want %s", claims["jti"], at.ID)
	}
	uid, ok := SubjectID(claims)
	if !ok || uid != 42 {
		t.Errorf("SubjectID = %d, %v", uid, ok)
	}
}

func TestAccessTokensCarryUniqueJTI(t *testing.T) {
	a, _ := NewAccessToken(testSecret, 1, "a@example.com", 15)
	b, _ := NewAccessToken(testSecret, 1, "a@example.com", 15)
	if a.ID == b.ID {
		t.Fatal("two tokens share a jti")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	at, _ := NewAccessToken(testSecret, 1, "a@example.com", 15)
	if _, err := ParseToken("other-secret", at.Token); err == nil {
		t.Fatal("token verified under wrong secret")
	}
}

func TestParseTokenSurfacesExpiry(t *testing.T) {
	at, _ := NewAccessToken(testSecret, 1, "a@example.com", -1)
	_, err := ParseToken(testSecret, at.Token)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("err = %v, want jwt.ErrTokenExpired", err)
	}
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	rt, err := NewRefreshToken("refresh-secret", 7, 7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if _, err := ParseToken(testSecret, rt.Token); err == nil {
		t.Fatal("refresh token verified under the access secret")
	}
	claims, err := ParseToken("refresh-secret", rt.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if uid, ok := SubjectID(claims); !ok || uid != 7 {
		t.Errorf("SubjectID = %d, %v", uid, ok)
	}
}

func TestRefreshTokenExpiry(t *testing.T) {
	rt, _ := NewRefreshToken("refresh-secret", 1, 7)
	want := time.Now().UTC().Add(7 * 24 * time.Hour)
	if d := rt.Exp.Sub(want); d < -time.Minute || d > time.Minute {
		t.Errorf("Exp = %v, want ~%v", rt.Exp, want)
	}
}

func TestResetTokenCarriesPurpose(t *testing.T) {
	raw, err := NewResetToken(testSecret, 3, "b@example.com", 15)
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	claims, err := ParseToken(testSecret, raw)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims["purpose"] != "reset" {
		t.Errorf("purpose = %v", claims["purpose"])
	}
}

func TestSubjectIDHandlesStringSub(t *testing.T) {
	uid, ok := SubjectID(jwt.MapClaims{"sub": "99"})
	if !ok || uid != 99 {
		t.Errorf("SubjectID = %d, %v", uid, ok)
	}
	if _, ok := SubjectID(jwt.MapClaims{"sub": "abc"}); ok {
		t.Error("non-numeric string accepted")
	}
	if _, ok := SubjectID(jwt.MapClaims{}); ok {
		t.Error("missing sub accepted")
	}
}
