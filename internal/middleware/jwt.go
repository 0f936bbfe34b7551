// Package middleware contains reusable HTTP middleware: bearer-token
// authentication, the Redis response cache and the distributed rate
// limiter.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/hpuma/carmarket/internal/config"
	"github.com/hpuma/carmarket/internal/model"
	"github.com/hpuma/carmarket/internal/utils"
)

// RefreshCookieName is the HTTP-only cookie carrying the refresh
// token. SameSite=Strict; issued at login, cleared at logout.
const RefreshCookieName = "refreshToken"

// UserSource loads accounts during transparent renewal; satisfied by
// *repository.UserRepo.
type UserSource interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RevokedChecker answers whether an access token's jti has been
// revoked; satisfied by *repository.RevocationStore.
type RevokedChecker interface {
	IsRevoked(ctx context.Context, jti string) bool
}

// AccessAuth validates a Bearer access token and injects "user_id"
// and "email" into the request context. A missing token is a 403, an
// invalid or revoked one a 401. When the access token is merely
// expired and the request carries a refresh cookie matching the
// user's stored slot, a fresh access token is issued in the
// X-New-Access-Token response header and the request proceeds, so an
// expiring session does not force a re-login.
func AccessAuth(cfg config.Config, users UserSource, revoked RevokedChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied, no token provided"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseToken(cfg.JWTSecret, raw)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return renewAndContinue(c, cfg, users, next)
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			if jti, _ := claims["jti"].(string); revoked != nil && revoked.IsRevoked(c.Request().Context(), jti) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token revoked"})
			}
			uid, ok := utils.SubjectID(claims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			c.Set("user_id", uid)
			c.Set("email", claims["email"])
			return next(c)
		}
	}
}

// renewAndContinue handles the expired-access-token path: the refresh
// cookie must verify against the refresh secret and equal the single
// slot stored on the user row. On success the new access token is
// handed back in a response header and the request continues under
// the renewed identity.
func renewAndContinue(c echo.Context, cfg config.Config, users UserSource, next echo.HandlerFunc) error {
	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	claims, err := utils.ParseToken(cfg.JWTRefreshSecret, cookie.Value)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	uid, ok := utils.SubjectID(claims)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	u, err := users.GetByID(c.Request().Context(), uid)
	if err != nil || u.RefreshToken == "" || u.RefreshToken != cookie.Value {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	access, err := utils.NewAccessToken(cfg.JWTSecret, u.ID, u.Email, cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	c.Response().Header().Set("X-New-Access-Token", access.Token)
	c.Set("user_id", u.ID)
	c.Set("email", u.Email)
	return next(c)
}
