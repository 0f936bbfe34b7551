package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hpuma/carmarket/internal/handler"
)

// RegisterPublic registers the unauthenticated surface: health probe,
// account signup, the auth endpoints and the public catalogue (search,
// vehicle detail, brands, packages).  Catalogue GETs take the cache
// middleware so repeated identical searches are served from Redis.
func RegisterPublic(e *echo.Echo, auth *handler.AuthHandler, users *handler.UserHandler, vehicles *handler.VehicleHandler, brands *handler.BrandHandler, packages *handler.PackageHandler, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	a := e.Group("/v1/auth")
	a.POST("/login", auth.Login)
	a.POST("/refresh-token", auth.RefreshToken)
	a.POST("/logout", auth.Logout)
	a.POST("/forgot-password", auth.ForgotPassword)
	a.POST("/reset-password/:token", auth.ResetPassword)

	e.POST("/v1/users", users.Create)

	pub := e.Group("/v1")
	if cache != nil {
		pub.Use(cache)
	}
	pub.GET("/vehicles", vehicles.Search)
	pub.GET("/vehicles/:id", vehicles.GetByID)
	pub.GET("/brands", brands.List)
	pub.GET("/brands/with-models/from-vehicles", brands.FromVehicles)
	pub.GET("/brands/:brand/models", brands.Models)
	pub.GET("/packages", packages.List)
}
