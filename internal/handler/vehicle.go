package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hpuma/carmarket/internal/config"
	"github.com/hpuma/carmarket/internal/model"
	"github.com/hpuma/carmarket/internal/quota"
	"github.com/hpuma/carmarket/internal/repository"
)

// VehicleHandler bundles dependencies for the listing lifecycle and
// both search variants.
type VehicleHandler struct {
	Cfg      config.Config
	Vehicles *repository.VehicleRepo
	Users    *repository.UserRepo
	Quota    *quota.Guard
}

func NewVehicleHandler(cfg config.Config, v *repository.VehicleRepo, u *repository.UserRepo, q *quota.Guard) *VehicleHandler {
	return &VehicleHandler{Cfg: cfg, Vehicles: v, Users: u, Quota: q}
}

type imageReq struct {
	URL    string `json:"url"`
	IsMain bool   `json:"is_main"`
}

type createVehicleReq struct {
	Brand               string     `json:"brand"`
	Model               string     `json:"model"`
	Year                int        `json:"year"`
	Price               float64    `json:"price"`
	Km                  int64      `json:"km"`
	Color               string     `json:"color"`
	Type                string     `json:"type"`
	Status              string     `json:"status"`
	FuelType            string     `json:"fuel_type"`
	Transmission        string     `json:"transmission"`
	Description         string     `json:"description"`
	Verified            bool       `json:"verified"`
	Images              []imageReq `json:"images"`
	LastMaintenanceDate *time.Time `json:"last_maintenance_date"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date"`
}

// Create publishes a new listing owned by the authenticated user.
// When quota enforcement is on the package tier's maxListings caps how
// many listings the seller may hold.
func (h *VehicleHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createVehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Brand == "" || req.Model == "" || req.Price == 0 || req.Year == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "brand, model, price and year are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seller not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if h.Cfg.QuotaEnforced && !h.Quota.CanPublish(ctx, uid) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you have reached your publication limit"})
	}

	v := model.Vehicle{
		SellerID:            uid,
		Brand:               req.Brand,
		Model:               req.Model,
		Year:                req.Year,
		Price:               req.Price,
		Km:                  req.Km,
		Color:               req.Color,
		Type:                req.Type,
		Status:              req.Status,
		FuelType:            req.FuelType,
		Transmission:        req.Transmission,
		Description:         req.Description,
		Verified:            req.Verified,
		Images:              toImages(req.Images),
		LastMaintenanceDate: req.LastMaintenanceDate,
		NextMaintenanceDate: req.NextMaintenanceDate,
	}
	if err := h.Vehicles.Create(ctx, &v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error publishing vehicle"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "vehicle published successfully", "vehicle": v})
}

func toImages(in []imageReq) []model.VehicleImage {
	out := make([]model.VehicleImage, 0, len(in))
	for _, img := range in {
		out = append(out, model.VehicleImage{URL: img.URL, IsMain: img.IsMain})
	}
	return out
}

// updateVehicleReq deliberately has no seller field: a seller
// reference supplied by the client is stripped before it can reach
// the store.
type updateVehicleReq struct {
	Brand               *string     `json:"brand"`
	Model               *string     `json:"model"`
	Year                *int        `json:"year"`
	Price               *float64    `json:"price"`
	Km                  *int64      `json:"km"`
	Color               *string     `json:"color"`
	Type                *string     `json:"type"`
	Status              *string     `json:"status"`
	FuelType            *string     `json:"fuel_type"`
	Transmission        *string     `json:"transmission"`
	Description         *string     `json:"description"`
	Verified            *bool       `json:"verified"`
	Images              *[]imageReq `json:"images"`
	LastMaintenanceDate *time.Time  `json:"last_maintenance_date"`
	NextMaintenanceDate *time.Time  `json:"next_maintenance_date"`
}

// Update merges a partial attribute set into an existing listing.
func (h *VehicleHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle ID format"})
	}
	var req updateVehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	upd := repository.VehicleUpdate{
		Brand:               req.Brand,
		Model:               req.Model,
		Year:                req.Year,
		Price:               req.Price,
		Km:                  req.Km,
		Color:               req.Color,
		Type:                req.Type,
		Status:              req.Status,
		FuelType:            req.FuelType,
		Transmission:        req.Transmission,
		Description:         req.Description,
		Verified:            req.Verified,
		LastMaintenanceDate: req.LastMaintenanceDate,
		NextMaintenanceDate: req.NextMaintenanceDate,
	}
	if req.Images != nil {
		imgs := toImages(*req.Images)
		upd.Images = &imgs
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Vehicles.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "vehicle updated successfully", "vehicle": v})
}

// SoftDelete hides a listing: state DELETED, deleted_at stamped.
func (h *VehicleHandler) SoftDelete(c echo.Context) error {
	return h.transition(c, func(ctx context.Context, id uint64) (model.Vehicle, error) {
		return h.Vehicles.SoftDelete(ctx, id)
	}, "vehicle deleted successfully")
}

// MarkSold closes a listing as sold and clears deleted_at.
func (h *VehicleHandler) MarkSold(c echo.Context) error {
	return h.transition(c, func(ctx context.Context, id uint64) (model.Vehicle, error) {
		return h.Vehicles.MarkSold(ctx, id, h.Cfg.AllowSellDeleted)
	}, "vehicle marked as sold")
}

// Restore republishes a listing that is not already published.
func (h *VehicleHandler) Restore(c echo.Context) error {
	return h.transition(c, func(ctx context.Context, id uint64) (model.Vehicle, error) {
		return h.Vehicles.Restore(ctx, id)
	}, "vehicle restored successfully")
}

func (h *VehicleHandler) transition(c echo.Context, op func(context.Context, uint64) (model.Vehicle, error), msg string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle ID format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := op(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		case errors.Is(err, repository.ErrInvalidState):
			return c.JSON(http.StatusConflict, echo.Map{"error": "invalid state transition"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "vehicle": v})
}

// GetByID returns a listing joined with the seller's public fields.
func (h *VehicleHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle ID format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByIDWithSeller(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error retrieving vehicle"})
	}
	return c.JSON(http.StatusOK, v)
}

// Search is the public, unauthenticated search over every listing.
// An empty result is a normal 200 with an empty data array.
func (h *VehicleHandler) Search(c echo.Context) error {
	q := searchQueryFrom(c)
	q.PageSize = h.Cfg.SearchPageSize

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	page, err := h.Vehicles.Search(ctx, q)
	if err != nil {
		if errors.Is(err, repository.ErrPageOutOfRange) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "page number exceeds total pages"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error retrieving vehicles"})
	}
	return c.JSON(http.StatusOK, vehiclePageResp(page))
}

// ListMine is the owner-scoped variant: same filters plus free-text
// search. Unlike the public search, zero matches is a 404.
func (h *VehicleHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	q := searchQueryFrom(c)
	q.SellerID = uid
	q.Search = c.QueryParam("search")
	q.PageSize = h.Cfg.OwnerPageSize

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	page, err := h.Vehicles.Search(ctx, q)
	if err != nil {
		if errors.Is(err, repository.ErrPageOutOfRange) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "page number exceeds total pages"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error retrieving vehicles"})
	}
	if page.Total == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no vehicles found"})
	}
	return c.JSON(http.StatusOK, vehiclePageResp(page))
}

func vehiclePageResp(page repository.VehiclePage) echo.Map {
	return echo.Map{
		"data": page.Items,
		"pagination": echo.Map{
			"current_page":   page.Page,
			"total_pages":    page.TotalPages,
			"total_vehicles": page.Total,
			"page_size":      page.PageSize,
		},
	}
}

// searchQueryFrom translates query parameters into the repository's
// filter specification. Absent parameters stay zero so the builder
// skips them.
func searchQueryFrom(c echo.Context) repository.VehicleSearchQuery {
	q := repository.VehicleSearchQuery{
		Brand:        c.QueryParam("brand"),
		Model:        c.QueryParam("model"),
		Color:        c.QueryParam("color"),
		FuelType:     c.QueryParam("fuel_type"),
		Transmission: c.QueryParam("transmission"),
		Status:       c.QueryParam("status"),
		Type:         c.QueryParam("type"),
		Sort:         c.QueryParam("sort"),
		Page:         pageParam(c),
	}
	if n, err := strconv.Atoi(c.QueryParam("year")); err == nil {
		q.Year = n
	}
	if f, err := strconv.ParseFloat(c.QueryParam("min_price"), 64); err == nil {
		q.MinPrice = &f
	}
	if f, err := strconv.ParseFloat(c.QueryParam("max_price"), 64); err == nil {
		q.MaxPrice = &f
	}
	if n, err := strconv.ParseInt(c.QueryParam("min_km"), 10, 64); err == nil {
		q.MinKm = &n
	}
	if n, err := strconv.ParseInt(c.QueryParam("max_km"), 10, 64); err == nil {
		q.MaxKm = &n
	}
	if v := c.QueryParam("verified"); v != "" {
		b := v == "true"
		q.Verified = &b
	}
	if t, err := time.Parse(time.RFC3339, c.QueryParam("last_maintenance_date")); err == nil {
		q.MaintainedSince = &t
	}
	if t, err := time.Parse(time.RFC3339, c.QueryParam("next_maintenance_date")); err == nil {
		q.MaintainedUntil = &t
	}
	return q
}
