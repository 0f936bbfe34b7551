package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hpuma/carmarket/internal/handler"
)

// RegisterProtected registers everything behind bearer-token auth:
// listing mutations and lifecycle transitions, the owner's listing
// view, user lookup and the recent-views endpoints.  The auth
// middleware is built in main so its user and revocation sources stay
// swappable.
func RegisterProtected(e *echo.Echo, users *handler.UserHandler, vehicles *handler.VehicleHandler, auth *handler.AuthHandler, authMW echo.MiddlewareFunc) {
	g := e.Group("/v1", authMW)

	g.POST("/vehicles", vehicles.Create)
	g.PUT("/vehicles/:id", vehicles.Update)
	g.PATCH("/vehicles/:id", vehicles.Update)
	g.DELETE("/vehicles/:id", vehicles.SoftDelete)
	g.POST("/vehicles/:id/sold", vehicles.MarkSold)
	g.POST("/vehicles/:id/restore", vehicles.Restore)

	g.GET("/my/vehicles", vehicles.ListMine)

	g.GET("/users", users.List)
	g.GET("/users/:id", users.GetByID)
	g.POST("/users/recent-vehicles", users.RecordRecentView)
	g.GET("/users/recent-vehicles", users.ListRecentViews)

	g.GET("/me", auth.Me)
}
