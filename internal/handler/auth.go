package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hpuma/carmarket/internal/config"
	"github.com/hpuma/carmarket/internal/middleware"
	"github.com/hpuma/carmarket/internal/queue"
	"github.com/hpuma/carmarket/internal/repository"
	mail "github.com/hpuma/carmarket/internal/service"
	"github.com/hpuma/carmarket/internal/utils"
)

// AuthHandler bundles dependencies for session endpoints: login,
// logout, token renewal and the password-reset pair.
type AuthHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Revoked *repository.RevocationStore
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, rev *repository.RevocationStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Revoked: rev}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	NewPassword string `json:"new_password"`
}

type loginUserPart struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

// Login verifies credentials and opens a session: the short-lived
// access token goes back in the body, the refresh token is persisted
// on the user row (single slot, so a new login replaces any earlier
// session) and mirrored to the client as an HTTP-only cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, u.ID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Users.SetRefreshToken(ctx, u.ID, refresh.Token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}
	h.setRefreshCookie(c, refresh.Token, refresh.Exp)

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "login successful",
		"access_token": access.Token,
		"expires":      access.Exp,
		"user":         loginUserPart{ID: u.ID, Email: u.Email, FirstName: u.FirstName},
	})
}

// RefreshToken exchanges a valid refresh token (cookie or body) for a
// new access token. The token must verify against the refresh secret
// AND equal the slot stored on the user row; no rotation happens
// here. Missing token is 401, a bad or mismatched one 403.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	raw := h.refreshTokenFrom(c)
	if raw == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no refresh token provided"})
	}

	claims, err := utils.ParseToken(h.Cfg.JWTRefreshSecret, raw)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid or expired refresh token"})
	}
	uid, ok := utils.SubjectID(claims)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid or expired refresh token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil || u.RefreshToken == "" || u.RefreshToken != raw {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid or expired refresh token"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": access.Token, "expires": access.Exp})
}

// Logout closes the session: the stored refresh slot of whichever
// user holds the presented token is emptied, the cookie is cleared,
// and the presented access token's jti goes on the Redis revocation
// list for the remainder of its life. Always succeeds idempotently.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if raw := h.refreshTokenFrom(c); raw != "" {
		_ = h.Users.ClearRefreshTokenByValue(ctx, raw)
	}

	// Revoke the access token too, so the pair dies together instead
	// of the access token outliving the session.
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		raw := strings.TrimPrefix(auth, "Bearer ")
		if claims, err := utils.ParseToken(h.Cfg.JWTSecret, raw); err == nil {
			jti, _ := claims["jti"].(string)
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				_ = h.Revoked.Revoke(ctx, jti, time.Until(exp.Time))
			}
		}
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// ForgotPassword signs a short-lived reset token and hands the mail
// event to the broker; delivery itself is the mailer's job. The reset
// link is echoed in the response for local testing.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "email not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	token, err := utils.NewResetToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.ResetTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue reset token failed"})
	}
	link := h.Cfg.ResetLinkBase + "/" + token

	ev := queue.PasswordResetRequestedEvent{
		UserID:      u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		ResetLink:   link,
		ExpiresInMn: h.Cfg.ResetTTLMin,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := mail.PublishPasswordReset(ctx, ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not send reset email"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "a password reset link has been sent by email",
		"reset_link": link, // useful for local testing only
	})
}

// ResetPassword verifies the reset token from the URL and replaces
// the stored password hash.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.NewPassword) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_password required"})
	}

	claims, err := utils.ParseToken(h.Cfg.JWTSecret, c.Param("token"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	if purpose, _ := claims["purpose"].(string); purpose != "reset" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	uid, ok := utils.SubjectID(claims)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, uid, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password reset successful"})
}

// Me is a simple protected endpoint returning the authenticated
// identity.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"email":   c.Get("email"),
	})
}

// refreshTokenFrom reads the refresh token from the cookie, falling
// back to the JSON body for clients that cannot carry cookies.
func (h *AuthHandler) refreshTokenFrom(c echo.Context) string {
	if cookie, err := c.Cookie(middleware.RefreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var req refreshReq
	_ = c.Bind(&req)
	return strings.TrimSpace(req.RefreshToken)
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.RefreshCookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
