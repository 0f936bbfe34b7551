package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hpuma/carmarket/internal/repository"
)

// PackageHandler serves the subscription package catalogue.
type PackageHandler struct {
	Packages *repository.PackageRepo
}

func NewPackageHandler(p *repository.PackageRepo) *PackageHandler {
	return &PackageHandler{Packages: p}
}

// List returns all packages ordered by price.
func (h *PackageHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pkgs, err := h.Packages.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error retrieving packages"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": pkgs})
}
