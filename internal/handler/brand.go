package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hpuma/carmarket/internal/repository"
)

// BrandHandler serves the brand catalogue and the brand/model
// hierarchy derived from live listings.
type BrandHandler struct {
	Brands *repository.BrandRepo
}

func NewBrandHandler(b *repository.BrandRepo) *BrandHandler {
	return &BrandHandler{Brands: b}
}

// List returns every known brand name.
func (h *BrandHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	brands, err := h.Brands.ListBrands(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error retrieving brands"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": brands})
}

// Models returns the catalogue model names for one brand.
func (h *BrandHandler) Models(c echo.Context) error {
	name := c.Param("brand")
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "brand is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	models, err := h.Brands.ModelsByBrand(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "brand not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error retrieving models"})
	}
	return c.JSON(http.StatusOK, echo.Map{"brand": name, "models": models})
}

// FromVehicles builds the brand/model hierarchy from distinct values
// present on current listings rather than the static catalogue.
func (h *BrandHandler) FromVehicles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hierarchy, err := h.Brands.HierarchyFromVehicles(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error retrieving brands"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": hierarchy})
}
