package repository

import (
	"context"
	"database/sql"
	"errors"
)

// BrandRepo serves the static brand/model reference data plus the
// brand→model hierarchy derived from live listings.
type BrandRepo struct{ DB *sql.DB }

func NewBrandRepo(db *sql.DB) *BrandRepo { return &BrandRepo{DB: db} }

// ListBrands returns the known brand names, alphabetically.
func (r *BrandRepo) ListBrands(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT name FROM brands ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// ModelsByBrand returns a brand's known model list, ErrNotFound for an
// unknown brand.
func (r *BrandRepo) ModelsByBrand(ctx context.Context, brand string) ([]string, error) {
	var brandID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM brands WHERE name=? LIMIT 1", brand).Scan(&brandID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT name FROM brand_models WHERE brand_id=? ORDER BY name ASC", brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// BrandModels groups the distinct models listed under one brand.
type BrandModels struct {
	Brand  string   `json:"brand"`
	Models []string `json:"models"`
}

// HierarchyFromVehicles aggregates the distinct brand/model pairs
// present in the vehicles table, grouped by brand in ascending order.
// Unlike the reference tables this reflects what sellers actually
// typed, so free-text models appear here too.
func (r *BrandRepo) HierarchyFromVehicles(ctx context.Context) ([]BrandModels, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DISTINCT brand, model FROM vehicles ORDER BY brand ASC, model ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BrandModels{}
	for rows.Next() {
		var brand, mdl string
		if err := rows.Scan(&brand, &mdl); err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].Brand == brand {
			out[n-1].Models = append(out[n-1].Models, mdl)
			continue
		}
		out = append(out, BrandModels{Brand: brand, Models: []string{mdl}})
	}
	return out, rows.Err()
}
