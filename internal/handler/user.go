package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hpuma/carmarket/internal/config"
	"github.com/hpuma/carmarket/internal/model"
	"github.com/hpuma/carmarket/internal/repository"
)

// UserHandler bundles dependencies for account endpoints and the
// per-user recently-viewed list.
type UserHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Vehicles *repository.VehicleRepo
	Recent   *repository.RecentViewsRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo, v *repository.VehicleRepo, r *repository.RecentViewsRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Vehicles: v, Recent: r}
}

type createUserReq struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	RUC         string `json:"ruc"`
	DNI         string `json:"dni"`
	Description string `json:"description"`
	IsReseller  bool   `json:"is_reseller"`
	PackageType string `json:"package_type"`
}

// Create handles signup. Duplicate emails are a 409; an unknown
// package tier is rejected before any write.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FirstName == "" || req.LastName == "" || req.Email == "" ||
		req.Password == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name, last_name, email, password and phone are required"})
	}
	if req.PackageType != "" && !model.ValidPackageType(req.PackageType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown package type"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u := model.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		RUC:         req.RUC,
		DNI:         req.DNI,
		Description: req.Description,
		IsReseller:  req.IsReseller,
		PackageType: req.PackageType,
	}
	if err := h.Users.Create(ctx, &u, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "user created successfully", "user": u})
}

// List returns accounts newest-first with optional reseller/tier
// filters.
func (h *UserHandler) List(c echo.Context) error {
	f := repository.UserFilter{
		PackageType: c.QueryParam("package_type"),
		Page:        pageParam(c),
		PageSize:    h.Cfg.UserPageSize,
	}
	if v := c.QueryParam("is_reseller"); v != "" {
		b := v == "true"
		f.IsReseller = &b
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	page, err := h.Users.List(ctx, f)
	if err != nil {
		if errors.Is(err, repository.ErrPageOutOfRange) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "page number exceeds total pages"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": page.Items,
		"pagination": echo.Map{
			"current_page": page.Page,
			"total_pages":  page.TotalPages,
			"total_users":  page.Total,
			"page_size":    page.PageSize,
		},
	})
}

// GetByID returns a single account.
func (h *UserHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, u)
}

type recentViewReq struct {
	VehicleID uint64 `json:"vehicle_id"`
}

// RecordRecentView pushes a listing onto the front of the caller's
// recently-viewed list (max 3, no duplicates).
func (h *UserHandler) RecordRecentView(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req recentViewReq
	if err := c.Bind(&req); err != nil || req.VehicleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Vehicles.GetByID(ctx, req.VehicleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Recent.RecordView(ctx, uid, req.VehicleID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record view failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "view recorded"})
}

// ListRecentViews resolves the caller's recently-viewed references to
// lightweight projections, most recent first.
func (h *UserHandler) ListRecentViews(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	items, err := h.Recent.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}
