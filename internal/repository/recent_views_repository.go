package repository

import (
	"context"
	"database/sql"

	"github.com/hpuma/carmarket/internal/model"
)

// RecentViewsRepo maintains the bounded, order-sensitive
// recently-viewed list per user. The list lives in the recent_views
// table keyed by (user_id, position) with position 0 the most recent.
type RecentViewsRepo struct{ DB *sql.DB }

func NewRecentViewsRepo(db *sql.DB) *RecentViewsRepo { return &RecentViewsRepo{DB: db} }

// pushRecent places id at the front of list, dropping any previous
// occurrence and truncating to MaxRecentVehicles. The list therefore
// never holds duplicates and never grows past the cap.
func pushRecent(list []uint64, id uint64) []uint64 {
	out := make([]uint64, 0, len(list)+1)
	out = append(out, id)
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) > model.MaxRecentVehicles {
		out = out[:model.MaxRecentVehicles]
	}
	return out
}

// RecordView moves vehicleID to the front of the user's recent list.
// The read-modify-rewrite runs in one transaction so concurrent views
// by the same user cannot interleave into a torn list.
func (r *RecentViewsRepo) RecordView(ctx context.Context, userID, vehicleID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		"SELECT vehicle_id FROM recent_views WHERE user_id=? ORDER BY position ASC FOR UPDATE",
		userID)
	if err != nil {
		return err
	}
	current := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		current = append(current, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	next := pushRecent(current, vehicleID)

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM recent_views WHERE user_id=?", userID); err != nil {
		return err
	}
	for pos, id := range next {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO recent_views (user_id, vehicle_id, position) VALUES (?,?,?)",
			userID, id, pos); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecentVehicle is the lightweight projection returned for the
// recently-viewed list: brand, model, price, year and the main image.
type RecentVehicle struct {
	ID     uint64               `json:"id"`
	Brand  string               `json:"brand"`
	Model  string               `json:"model"`
	Price  float64              `json:"price"`
	Year   int                  `json:"year"`
	Images []model.VehicleImage `json:"images"`
}

// ListByUser resolves the stored references in order. Listings removed
// from the vehicles table since they were viewed drop out silently.
func (r *RecentViewsRepo) ListByUser(ctx context.Context, userID uint64) ([]RecentVehicle, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT v.id, v.brand, v.model, v.price, v.year,
			COALESCE((SELECT i.url FROM vehicle_images i
				WHERE i.vehicle_id = v.id AND i.is_main = 1 LIMIT 1), '')
		 FROM recent_views rv
		 JOIN vehicles v ON v.id = rv.vehicle_id
		 WHERE rv.user_id = ?
		 ORDER BY rv.position ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RecentVehicle{}
	for rows.Next() {
		var rv RecentVehicle
		var mainURL string
		if err := rows.Scan(&rv.ID, &rv.Brand, &rv.Model, &rv.Price, &rv.Year, &mainURL); err != nil {
			return nil, err
		}
		rv.Images = []model.VehicleImage{}
		if mainURL != "" {
			rv.Images = append(rv.Images, model.VehicleImage{URL: mainURL, IsMain: true})
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
