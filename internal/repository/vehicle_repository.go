package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/hpuma/carmarket/internal/model"
)

// VehicleRepo encapsulates all database queries related to vehicle
// listings and their image sets.
type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

const vehicleColumns = `v.id, v.seller_id, v.brand, v.model, v.year, v.color, v.km,
	v.price, v.type, v.status, v.fuel_type, COALESCE(v.transmission,''),
	COALESCE(v.description,''), v.verified, v.state,
	v.last_maintenance_date, v.next_maintenance_date, v.deleted_at,
	v.created_at, v.updated_at`

func scanVehicle(row interface{ Scan(...any) error }) (model.Vehicle, error) {
	var v model.Vehicle
	err := row.Scan(&v.ID, &v.SellerID, &v.Brand, &v.Model, &v.Year, &v.Color,
		&v.Km, &v.Price, &v.Type, &v.Status, &v.FuelType, &v.Transmission,
		&v.Description, &v.Verified, &v.State,
		&v.LastMaintenanceDate, &v.NextMaintenanceDate, &v.DeletedAt,
		&v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// Create inserts the listing and its image set. The listing starts
// PUBLISHED unless v.State says otherwise. The image insert is not
// atomic with the vehicle insert beyond the surrounding transaction;
// ownership truth stays on vehicles.seller_id.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if v.State == "" {
		v.State = model.StatePublished
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO vehicles (seller_id, brand, model, year, color, km, price,
			type, status, fuel_type, transmission, description, verified, state,
			last_maintenance_date, next_maintenance_date)
		 VALUES (?,?,?,?,?,?,?,?,?,?,NULLIF(?,''),?,?,?,?,?)`,
		v.SellerID, v.Brand, v.Model, v.Year, v.Color, v.Km, v.Price,
		v.Type, v.Status, v.FuelType, v.Transmission, v.Description,
		v.Verified, v.State, v.LastMaintenanceDate, v.NextMaintenanceDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)

	if err := replaceImagesTx(ctx, tx, v.ID, v.Images); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	created, err := r.GetByID(ctx, v.ID)
	if err != nil {
		return err
	}
	*v = created
	return nil
}

func replaceImagesTx(ctx context.Context, tx *sql.Tx, vehicleID uint64, images []model.VehicleImage) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM vehicle_images WHERE vehicle_id=?", vehicleID); err != nil {
		return err
	}
	for pos, img := range images {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO vehicle_images (vehicle_id, url, is_main, position) VALUES (?,?,?,?)",
			vehicleID, img.URL, img.IsMain, pos); err != nil {
			return err
		}
	}
	return nil
}

// VehicleUpdate carries the optional fields of a partial update. Nil
// pointers leave the column untouched. The seller reference is not
// representable here on purpose: ownership never changes via update.
type VehicleUpdate struct {
	Brand               *string
	Model               *string
	Year                *int
	Color               *string
	Km                  *int64
	Price               *float64
	Type                *string
	Status              *string
	FuelType            *string
	Transmission        *string
	Description         *string
	Verified            *bool
	LastMaintenanceDate *time.Time
	NextMaintenanceDate *time.Time
	Images              *[]model.VehicleImage
}

// Update merges the supplied fields into the listing and returns the
// updated entity. ErrNotFound when the id does not exist.
func (r *VehicleRepo) Update(ctx context.Context, id uint64, upd VehicleUpdate) (model.Vehicle, error) {
	set := []string{}
	args := []any{}
	add := func(col string, val any) {
		set = append(set, col+"=?")
		args = append(args, val)
	}
	if upd.Brand != nil {
		add("brand", *upd.Brand)
	}
	if upd.Model != nil {
		add("model", *upd.Model)
	}
	if upd.Year != nil {
		add("year", *upd.Year)
	}
	if upd.Color != nil {
		add("color", *upd.Color)
	}
	if upd.Km != nil {
		add("km", *upd.Km)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.Type != nil {
		add("type", *upd.Type)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.FuelType != nil {
		add("fuel_type", *upd.FuelType)
	}
	if upd.Transmission != nil {
		add("transmission", *upd.Transmission)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Verified != nil {
		add("verified", *upd.Verified)
	}
	if upd.LastMaintenanceDate != nil {
		add("last_maintenance_date", *upd.LastMaintenanceDate)
	}
	if upd.NextMaintenanceDate != nil {
		add("next_maintenance_date", *upd.NextMaintenanceDate)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Vehicle{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists uint64
	err = tx.QueryRowContext(ctx, "SELECT id FROM vehicles WHERE id=? LIMIT 1", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Vehicle{}, ErrNotFound
	}
	if err != nil {
		return model.Vehicle{}, err
	}

	if len(set) > 0 {
		args = append(args, id)
		if _, err := tx.ExecContext(ctx,
			"UPDATE vehicles SET "+strings.Join(set, ", ")+" WHERE id=?", args...); err != nil {
			return model.Vehicle{}, err
		}
	}
	if upd.Images != nil {
		if err := replaceImagesTx(ctx, tx, id, *upd.Images); err != nil {
			return model.Vehicle{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Vehicle{}, err
	}
	return r.GetByID(ctx, id)
}

// decideSoftDelete, decideMarkSold and decideRestore encode the
// lifecycle rules independently of the store: given the current state
// they return the next state, whether deleted_at is stamped (true) or
// cleared (false), and ErrInvalidState for a forbidden transition.

func decideSoftDelete(string) (string, bool, error) {
	return model.StateDeleted, true, nil
}

func decideMarkSold(allowFromDeleted bool) func(string) (string, bool, error) {
	return func(state string) (string, bool, error) {
		if !allowFromDeleted && state == model.StateDeleted {
			return "", false, ErrInvalidState
		}
		return model.StateSold, false, nil
	}
}

// decideRestore only checks "not already published", so SOLD listings
// are restorable through this path.
func decideRestore(state string) (string, bool, error) {
	if state == model.StatePublished {
		return "", false, ErrInvalidState
	}
	return model.StatePublished, false, nil
}

// SoftDelete marks the listing DELETED and stamps deleted_at.
func (r *VehicleRepo) SoftDelete(ctx context.Context, id uint64) (model.Vehicle, error) {
	return r.transition(ctx, id, decideSoftDelete)
}

// MarkSold marks the listing SOLD and clears deleted_at. When
// allowFromDeleted is false a DELETED listing cannot be sold.
func (r *VehicleRepo) MarkSold(ctx context.Context, id uint64, allowFromDeleted bool) (model.Vehicle, error) {
	return r.transition(ctx, id, decideMarkSold(allowFromDeleted))
}

// Restore republishes a listing.
func (r *VehicleRepo) Restore(ctx context.Context, id uint64) (model.Vehicle, error) {
	return r.transition(ctx, id, decideRestore)
}

// transition reads the current state, asks decide for the next one,
// and writes state plus deleted_at (stamped when setDeletedAt).
func (r *VehicleRepo) transition(ctx context.Context, id uint64, decide func(state string) (string, bool, error)) (model.Vehicle, error) {
	var state string
	err := r.DB.QueryRowContext(ctx,
		"SELECT state FROM vehicles WHERE id=? LIMIT 1", id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Vehicle{}, ErrNotFound
	}
	if err != nil {
		return model.Vehicle{}, err
	}
	next, setDeletedAt, err := decide(state)
	if err != nil {
		return model.Vehicle{}, err
	}
	if setDeletedAt {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE vehicles SET state=?, deleted_at=NOW() WHERE id=?", next, id)
	} else {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE vehicles SET state=?, deleted_at=NULL WHERE id=?", next, id)
	}
	if err != nil {
		return model.Vehicle{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a listing with its full image set.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (model.Vehicle, error) {
	v, err := scanVehicle(r.DB.QueryRowContext(ctx,
		"SELECT "+vehicleColumns+" FROM vehicles v WHERE v.id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	if err != nil {
		return v, err
	}
	v.Images, err = r.imagesFor(ctx, id)
	return v, err
}

// VehicleWithSeller joins the seller's public projection onto a
// listing for detail views.
type VehicleWithSeller struct {
	model.Vehicle
	Seller model.SellerInfo `json:"seller"`
}

// GetByIDWithSeller fetches a listing joined with the seller's public
// fields.
func (r *VehicleRepo) GetByIDWithSeller(ctx context.Context, id uint64) (VehicleWithSeller, error) {
	var out VehicleWithSeller
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+vehicleColumns+`, u.id, u.first_name, u.last_name, u.email, u.phone
		 FROM vehicles v JOIN users u ON u.id = v.seller_id
		 WHERE v.id=? LIMIT 1`, id)
	err := row.Scan(&out.ID, &out.SellerID, &out.Brand, &out.Model, &out.Year,
		&out.Color, &out.Km, &out.Price, &out.Type, &out.Status, &out.FuelType,
		&out.Transmission, &out.Description, &out.Verified, &out.State,
		&out.LastMaintenanceDate, &out.NextMaintenanceDate, &out.DeletedAt,
		&out.CreatedAt, &out.UpdatedAt,
		&out.Seller.ID, &out.Seller.FirstName, &out.Seller.LastName,
		&out.Seller.Email, &out.Seller.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return out, ErrNotFound
	}
	if err != nil {
		return out, err
	}
	out.Images, err = r.imagesFor(ctx, id)
	return out, err
}

// CountBySeller counts a user's listings across all lifecycle states,
// which is what the quota guard compares against maxListings.
func (r *VehicleRepo) CountBySeller(ctx context.Context, sellerID uint64) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vehicles WHERE seller_id=?", sellerID).Scan(&n)
	return n, err
}

func (r *VehicleRepo) imagesFor(ctx context.Context, vehicleID uint64) ([]model.VehicleImage, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT url, is_main FROM vehicle_images WHERE vehicle_id=? ORDER BY position ASC",
		vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.VehicleImage{}
	for rows.Next() {
		var img model.VehicleImage
		if err := rows.Scan(&img.URL, &img.IsMain); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}
