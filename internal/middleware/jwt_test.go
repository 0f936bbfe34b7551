package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hpuma/carmarket/internal/config"
	"github.com/hpuma/carmarket/internal/model"
	"github.com/hpuma/carmarket/internal/utils"
)

type stubUsers struct {
	user model.User
	err  error
}

func (s stubUsers) GetByID(context.Context, uint64) (model.User, error) { return s.user, s.err }

type stubRevoked map[string]bool

func (s stubRevoked) IsRevoked(_ context.Context, jti string) bool { return s[jti] }

func testCfg() config.Config {
	return config.Config{
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
		AccessTTLMin:     15,
	}
}

// runAuth sends one request through AccessAuth into a handler that
// echoes the context identity.
func runAuth(t *testing.T, cfg config.Config, users UserSource, revoked RevokedChecker, prep func(*http.Request)) (*httptest.ResponseRecorder, *uint64) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if prep != nil {
		prep(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *uint64
	h := AccessAuth(cfg, users, revoked)(func(c echo.Context) error {
		if uid, ok := c.Get("user_id").(uint64); ok {
			seen = &uid
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, seen
}

func TestAccessAuthMissingToken(t *testing.T) {
	rec, _ := runAuth(t, testCfg(), stubUsers{}, stubRevoked{}, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAccessAuthInvalidToken(t *testing.T) {
	rec, _ := runAuth(t, testCfg(), stubUsers{}, stubRevoked{}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer not-a-token")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAccessAuthValidToken(t *testing.T) {
	cfg := testCfg()
	at, err := utils.NewAccessToken(cfg.JWTSecret, 42, "u@example.com", 15)
	if err != nil {
		t.Fatal(err)
	}
	rec, seen := runAuth(t, cfg, stubUsers{}, stubRevoked{}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+at.Token)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || *seen != 42 {
		t.Fatalf("user_id in context = %v, want 42", seen)
	}
}

func TestAccessAuthRevokedToken(t *testing.T) {
	cfg := testCfg()
	at, err := utils.NewAccessToken(cfg.JWTSecret, 42, "u@example.com", 15)
	if err != nil {
		t.Fatal(err)
	}
	rec, _ := runAuth(t, cfg, stubUsers{}, stubRevoked{at.ID: true}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+at.Token)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAccessAuthExpiredWithoutCookie(t *testing.T) {
	cfg := testCfg()
	at, _ := utils.NewAccessToken(cfg.JWTSecret, 42, "u@example.com", -1)
	rec, _ := runAuth(t, cfg, stubUsers{}, stubRevoked{}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+at.Token)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAccessAuthTransparentRenewal(t *testing.T) {
	cfg := testCfg()
	at, _ := utils.NewAccessToken(cfg.JWTSecret, 42, "u@example.com", -1)
	rt, err := utils.NewRefreshToken(cfg.JWTRefreshSecret, 42, 7)
	if err != nil {
		t.Fatal(err)
	}
	users := stubUsers{user: model.User{ID: 42, Email: "u@example.com", RefreshToken: rt.Token}}

	rec, seen := runAuth(t, cfg, users, stubRevoked{}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+at.Token)
		r.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: rt.Token})
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-New-Access-Token") == "" {
		t.Fatal("renewal did not hand back a new access token")
	}
	if seen == nil || *seen != 42 {
		t.Fatalf("user_id in context = %v, want 42", seen)
	}
}

func TestAccessAuthRenewalRejectsMismatchedSlot(t *testing.T) {
	cfg := testCfg()
	at, _ := utils.NewAccessToken(cfg.JWTSecret, 42, "u@example.com", -1)
	rt, _ := utils.NewRefreshToken(cfg.JWTRefreshSecret, 42, 7)
	// A different TTL guarantees a distinct signature even when both
	// tokens are minted within the same second.
	other, _ := utils.NewRefreshToken(cfg.JWTRefreshSecret, 42, 8)
	users := stubUsers{user: model.User{ID: 42, Email: "u@example.com", RefreshToken: other.Token}}

	rec, _ := runAuth(t, cfg, users, stubRevoked{}, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+at.Token)
		r.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: rt.Token})
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
