package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/hpuma/carmarket/internal/model"
	"github.com/hpuma/carmarket/internal/utils"
)

// UserRepo encapsulates all database queries related to user accounts,
// including the single-slot refresh token column.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, first_name, last_name, email, password_hash, phone,
	COALESCE(ruc,''), COALESCE(dni,''), COALESCE(description,''),
	is_reseller, COALESCE(package_type,''), COALESCE(refresh_token,''),
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.Phone, &u.RUC, &u.DNI, &u.Description, &u.IsReseller, &u.PackageType,
		&u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a new account, hashing the password with bcrypt, and
// returns the generated ID. Duplicate emails map to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, password_hash, phone,
			ruc, dni, description, is_reseller, package_type)
		 VALUES (?,?,?,?,?,?,?,?,?,NULLIF(?, ''))`,
		u.FirstName, u.LastName, u.Email, hash, u.Phone,
		u.RUC, u.DNI, u.Description, u.IsReseller, u.PackageType)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)

	// Follow-up SELECT to populate the DB-generated timestamps.
	created, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = created
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// SetRefreshToken writes the single refresh-token slot. Issuing a new
// session replaces whatever session was tracked before.
func (r *UserRepo) SetRefreshToken(ctx context.Context, userID uint64, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=? WHERE id=?", token, userID)
	return err
}

// ClearRefreshTokenByValue empties the slot of whichever user holds
// the given token. A no-op when no user matches, so logout stays
// idempotent.
func (r *UserRepo) ClearRefreshTokenByValue(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token='' WHERE refresh_token=?", token)
	return err
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a vanished user from a hash that simply did not
		// change: re-check existence.
		if _, err := r.GetByID(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

// UserFilter narrows the paginated account listing.
type UserFilter struct {
	IsReseller  *bool
	PackageType string
	Page        int
	PageSize    int
}

// UserPage is one page of accounts plus pagination totals. The
// handler shapes the response envelope, so no serialization tags.
type UserPage struct {
	Items      []model.User
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// List returns accounts newest-first with optional reseller/tier
// filters. Requesting a page beyond the last one of a non-empty set
// returns ErrPageOutOfRange.
func (r *UserRepo) List(ctx context.Context, f UserFilter) (UserPage, error) {
	where := []string{}
	args := []any{}
	if f.IsReseller != nil {
		where = append(where, "is_reseller=?")
		args = append(args, *f.IsReseller)
	}
	if f.PackageType != "" {
		where = append(where, "package_type=?")
		args = append(args, f.PackageType)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE "+cond, args...).Scan(&total); err != nil {
		return UserPage{}, err
	}
	totalPages, err := pageWindow(f.Page, f.PageSize, total)
	if err != nil {
		return UserPage{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+cond+
			" ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?",
		append(append([]any{}, args...), f.PageSize, (f.Page-1)*f.PageSize)...)
	if err != nil {
		return UserPage{}, err
	}
	defer rows.Close()

	out := make([]model.User, 0, f.PageSize)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return UserPage{}, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return UserPage{}, err
	}
	return UserPage{Items: out, Page: f.Page, PageSize: f.PageSize, Total: total, TotalPages: totalPages}, nil
}
