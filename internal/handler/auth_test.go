package handler

import (
	"net/http"
	"testing"

	"github.com/hpuma/carmarket/internal/config"
	"github.com/hpuma/carmarket/internal/utils"
)

func authCfg() config.Config {
	return config.Config{
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
		AccessTTLMin:     15,
		RefreshTTLDays:   7,
		ResetTTLMin:      15,
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	h := &AuthHandler{Cfg: authCfg()}
	for _, body := range []string{`{}`, `{"email":"a@b.com"}`, `{"password":"x"}`} {
		c, rec := newTestContext(http.MethodPost, "/v1/auth/login", body)
		if err := h.Login(c); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestRefreshWithoutTokenIs401(t *testing.T) {
	h := &AuthHandler{Cfg: authCfg()}
	c, rec := newTestContext(http.MethodPost, "/v1/auth/refresh-token", `{}`)
	if err := h.RefreshToken(c); err != nil {
		t.Fatalf("RefreshToken returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRefreshWithGarbageTokenIs403(t *testing.T) {
	h := &AuthHandler{Cfg: authCfg()}
	c, rec := newTestContext(http.MethodPost, "/v1/auth/refresh-token", `{"refresh_token":"garbage"}`)
	if err := h.RefreshToken(c); err != nil {
		t.Fatalf("RefreshToken returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestResetPasswordRejectsBadToken(t *testing.T) {
	h := &AuthHandler{Cfg: authCfg()}
	c, rec := newTestContext(http.MethodPost, "/v1/auth/reset-password/garbage", `{"new_password":"abc123"}`)
	c.SetParamNames("token")
	c.SetParamValues("garbage")
	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestResetPasswordRejectsWrongPurpose(t *testing.T) {
	cfg := authCfg()
	h := &AuthHandler{Cfg: cfg}
	// A plain access token must not pass as a reset token.
	at, err := utils.NewAccessToken(cfg.JWTSecret, 1, "a@b.com", 15)
	if err != nil {
		t.Fatal(err)
	}
	c, rec := newTestContext(http.MethodPost, "/v1/auth/reset-password/"+at.Token, `{"new_password":"abc123"}`)
	c.SetParamNames("token")
	c.SetParamValues(at.Token)
	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestResetPasswordRequiresNewPassword(t *testing.T) {
	h := &AuthHandler{Cfg: authCfg()}
	c, rec := newTestContext(http.MethodPost, "/v1/auth/reset-password/tok", `{}`)
	c.SetParamNames("token")
	c.SetParamValues("tok")
	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
