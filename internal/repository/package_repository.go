package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hpuma/carmarket/internal/model"
)

// PackageRepo reads the plan tier reference table.
type PackageRepo struct{ DB *sql.DB }

func NewPackageRepo(db *sql.DB) *PackageRepo { return &PackageRepo{DB: db} }

// GetByType looks a tier up by its type key (e.g. "basic").
func (r *PackageRepo) GetByType(ctx context.Context, pkgType string) (model.Package, error) {
	var p model.Package
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, type, price, max_listings, created_at, updated_at
		 FROM packages WHERE type=? LIMIT 1`, pkgType).
		Scan(&p.ID, &p.Name, &p.Type, &p.Price, &p.MaxListings, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// List returns all tiers ordered by price.
func (r *PackageRepo) List(ctx context.Context) ([]model.Package, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, type, price, max_listings, created_at, updated_at
		 FROM packages ORDER BY price ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Package{}
	for rows.Next() {
		var p model.Package
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Price, &p.MaxListings,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
