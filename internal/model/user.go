package model

import "time"

// PackageTypes enumerates the closed set of plan tiers a user may be
// assigned.  A user without a tier cannot publish listings.
var PackageTypes = []string{
	"basic",
	"medium",
	"premium",
	"reseller_basic",
	"reseller_medium",
	"reseller_premium",
}

// MaxRecentVehicles caps the per-user recently-viewed list.
const MaxRecentVehicles = 3

// User represents an account record as stored in the `users` table.
// The JSON tags shape the public projection; PasswordHash and
// RefreshToken never leave the server.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  RUC / DNI    – document identifiers (optional).
//  IsReseller   – whether the account belongs to a reseller.
//  PackageType  – assigned plan tier, empty when none.
//  RefreshToken – single-slot persisted refresh token; only one
//                 device session is trackable at a time.
type User struct {
	ID           uint64    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	RUC          string    `json:"ruc,omitempty"`
	DNI          string    `json:"dni,omitempty"`
	Description  string    `json:"description,omitempty"`
	IsReseller   bool      `json:"is_reseller"`
	PackageType  string    `json:"package_type,omitempty"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SellerInfo is the public projection of a seller joined onto a
// listing response.
type SellerInfo struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// ValidPackageType reports whether t is one of the known tiers.
func ValidPackageType(t string) bool {
	for _, p := range PackageTypes {
		if p == t {
			return true
		}
	}
	return false
}
