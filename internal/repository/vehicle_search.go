package repository

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/hpuma/carmarket/internal/model"
)

// VehicleSearchQuery defines filters, sorting and pagination for
// searching listings. Zero values mean "not filtered". The matching
// policy per field:
//
//	brand, model, color, fuelType, transmission, status – case-insensitive substring
//	type, year, verified                                – exact
//	price, km                                           – inclusive min/max ranges
//	maintenance dates                                   – last >= from, next <= to
//	Search                                              – substring on brand OR model
//	SellerID                                            – owner scope
type VehicleSearchQuery struct {
	Brand           string
	Model           string
	Color           string
	FuelType        string
	Transmission    string
	Status          string
	Type            string
	Year            int
	MinPrice        *float64
	MaxPrice        *float64
	MinKm           *int64
	MaxKm           *int64
	Verified        *bool
	MaintainedSince *time.Time
	MaintainedUntil *time.Time
	Search          string
	SellerID        uint64
	Sort            string
	Page            int
	PageSize        int
}

// SortRecent and friends name the closed set of orderings. Every
// ordering ends with id ASC so pages stay stable across requests when
// primary keys tie.
const (
	SortRecent    = "recent"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortYearDesc  = "year_desc"
	SortKmAsc     = "km_asc"
	SortRelevance = "relevance"
)

// orderClause maps a sort name to its ORDER BY expression. Unknown
// names fall back to the recent ordering.
func orderClause(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case SortPriceAsc:
		return "v.price ASC, v.id ASC"
	case SortPriceDesc:
		return "v.price DESC, v.id ASC"
	case SortYearDesc:
		return "v.year DESC, v.id ASC"
	case SortKmAsc:
		return "v.km ASC, v.id ASC"
	case SortRelevance:
		return "v.verified DESC, v.created_at DESC, v.id ASC"
	default:
		return "v.created_at DESC, v.id ASC"
	}
}

// buildVehicleWhere translates the filter set into a WHERE condition
// and its argument list. It is the single place the matching-policy
// table is encoded.
func buildVehicleWhere(q VehicleSearchQuery) (string, []any) {
	where := []string{}
	args := []any{}

	like := func(col, val string) {
		where = append(where, "LOWER("+col+") LIKE ?")
		args = append(args, "%"+strings.ToLower(val)+"%")
	}
	if q.Brand != "" {
		like("v.brand", q.Brand)
	}
	if q.Model != "" {
		like("v.model", q.Model)
	}
	if q.Color != "" {
		like("v.color", q.Color)
	}
	if q.FuelType != "" {
		like("v.fuel_type", q.FuelType)
	}
	if q.Transmission != "" {
		like("v.transmission", q.Transmission)
	}
	if q.Status != "" {
		like("v.status", q.Status)
	}
	if q.Type != "" {
		where = append(where, "v.type = ?")
		args = append(args, q.Type)
	}
	if q.Year != 0 {
		where = append(where, "v.year = ?")
		args = append(args, q.Year)
	}
	if q.MinPrice != nil {
		where = append(where, "v.price >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		where = append(where, "v.price <= ?")
		args = append(args, *q.MaxPrice)
	}
	if q.MinKm != nil {
		where = append(where, "v.km >= ?")
		args = append(args, *q.MinKm)
	}
	if q.MaxKm != nil {
		where = append(where, "v.km <= ?")
		args = append(args, *q.MaxKm)
	}
	if q.Verified != nil {
		where = append(where, "v.verified = ?")
		args = append(args, *q.Verified)
	}
	if q.MaintainedSince != nil {
		where = append(where, "v.last_maintenance_date >= ?")
		args = append(args, *q.MaintainedSince)
	}
	if q.MaintainedUntil != nil {
		where = append(where, "v.next_maintenance_date <= ?")
		args = append(args, *q.MaintainedUntil)
	}
	if q.Search != "" {
		where = append(where, "(LOWER(v.brand) LIKE ? OR LOWER(v.model) LIKE ?)")
		pat := "%" + strings.ToLower(q.Search) + "%"
		args = append(args, pat, pat)
	}
	if q.SellerID != 0 {
		where = append(where, "v.seller_id = ?")
		args = append(args, q.SellerID)
	}

	if len(where) == 0 {
		return "1=1", args
	}
	return strings.Join(where, " AND "), args
}

// pageWindow computes the page count for a result set and validates
// the 1-indexed requested page. Requesting past the last page of a
// non-empty set is ErrPageOutOfRange; any page of an empty set is
// allowed so an empty search can still answer page 1.
func pageWindow(page, pageSize int, total int64) (int, error) {
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	if page > totalPages && total != 0 {
		return 0, ErrPageOutOfRange
	}
	return totalPages, nil
}

// VehicleSummary is the list-view projection of a listing: full
// descriptive attributes but the image set collapsed to the main
// image.
type VehicleSummary struct {
	model.Vehicle
	Seller model.SellerInfo `json:"seller"`
}

// VehiclePage is one page of summaries plus pagination totals.
// Handlers shape the response envelope themselves, so the struct
// carries no serialization tags.
type VehiclePage struct {
	Items      []VehicleSummary
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// Search runs the filtered, sorted, paginated query and collapses each
// row's image set to the single main image. Pages are 1-indexed;
// requesting past the end of a non-empty result set returns
// ErrPageOutOfRange.
func (r *VehicleRepo) Search(ctx context.Context, q VehicleSearchQuery) (VehiclePage, error) {
	cond, args := buildVehicleWhere(q)

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vehicles v WHERE "+cond, args...).Scan(&total); err != nil {
		return VehiclePage{}, err
	}
	totalPages, err := pageWindow(q.Page, q.PageSize, total)
	if err != nil {
		return VehiclePage{}, err
	}

	dataSQL := "SELECT " + vehicleColumns + `, u.id, u.first_name, u.last_name, u.email, u.phone
		FROM vehicles v JOIN users u ON u.id = v.seller_id
		WHERE ` + cond + `
		ORDER BY ` + orderClause(q.Sort) + `
		LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return VehiclePage{}, err
	}
	defer rows.Close()

	items := make([]VehicleSummary, 0, q.PageSize)
	ids := make([]uint64, 0, q.PageSize)
	for rows.Next() {
		var s VehicleSummary
		if err := rows.Scan(&s.ID, &s.SellerID, &s.Brand, &s.Model, &s.Year,
			&s.Color, &s.Km, &s.Price, &s.Type, &s.Status, &s.FuelType,
			&s.Transmission, &s.Description, &s.Verified, &s.State,
			&s.LastMaintenanceDate, &s.NextMaintenanceDate, &s.DeletedAt,
			&s.CreatedAt, &s.UpdatedAt,
			&s.Seller.ID, &s.Seller.FirstName, &s.Seller.LastName,
			&s.Seller.Email, &s.Seller.Phone); err != nil {
			return VehiclePage{}, err
		}
		items = append(items, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return VehiclePage{}, err
	}

	if err := r.attachMainImages(ctx, items, ids); err != nil {
		return VehiclePage{}, err
	}
	return VehiclePage{Items: items, Page: q.Page, PageSize: q.PageSize, Total: total, TotalPages: totalPages}, nil
}

// attachMainImages loads the is_main image URL for each listed id and
// collapses every summary's image set accordingly.
func (r *VehicleRepo) attachMainImages(ctx context.Context, items []VehicleSummary, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT vehicle_id, url FROM vehicle_images WHERE is_main=1 AND vehicle_id IN ("+placeholders+")",
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	urls := make(map[uint64]string, len(ids))
	for rows.Next() {
		var id uint64
		var url string
		if err := rows.Scan(&id, &url); err != nil {
			return err
		}
		urls[id] = url
	}
	if err := rows.Err(); err != nil {
		return err
	}
	collapseToMain(items, urls)
	return nil
}

// collapseToMain replaces each summary's image set with its single
// main image, or an empty set when no image is flagged is_main.
func collapseToMain(items []VehicleSummary, mainURL map[uint64]string) {
	for i := range items {
		if url, ok := mainURL[items[i].ID]; ok {
			items[i].Images = []model.VehicleImage{{URL: url, IsMain: true}}
		} else {
			items[i].Images = []model.VehicleImage{}
		}
	}
}
