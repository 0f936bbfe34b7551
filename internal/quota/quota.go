// Package quota decides whether a user may publish another listing
// based on their plan tier. The guard fails closed and silent: any
// lookup failure is logged as a warning and answered with "not
// allowed" instead of propagating an error to the caller.
package quota

import (
	"context"
	"log"

	"github.com/hpuma/carmarket/internal/model"
)

// UserSource resolves accounts; satisfied by *repository.UserRepo.
type UserSource interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// PackageSource resolves plan tiers; satisfied by *repository.PackageRepo.
type PackageSource interface {
	GetByType(ctx context.Context, pkgType string) (model.Package, error)
}

// ListingCounter counts a seller's listings; satisfied by
// *repository.VehicleRepo.
type ListingCounter interface {
	CountBySeller(ctx context.Context, sellerID uint64) (int64, error)
}

// Guard compares a user's listing count against their package's
// maxListings. The count includes every lifecycle state, so sold and
// soft-deleted listings still consume quota.
type Guard struct {
	Users    UserSource
	Packages PackageSource
	Listings ListingCounter
}

func NewGuard(users UserSource, packages PackageSource, listings ListingCounter) *Guard {
	return &Guard{Users: users, Packages: packages, Listings: listings}
}

// CanPublish reports whether the user may create another listing.
// The check is count-then-insert and therefore best-effort: two
// concurrent creations may both pass it.
func (g *Guard) CanPublish(ctx context.Context, userID uint64) bool {
	u, err := g.Users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("quota: user %d lookup failed: %v", userID, err)
		return false
	}
	if u.PackageType == "" {
		log.Printf("quota: user %d has no package assigned", userID)
		return false
	}
	pkg, err := g.Packages.GetByType(ctx, u.PackageType)
	if err != nil {
		log.Printf("quota: package %q lookup failed: %v", u.PackageType, err)
		return false
	}
	count, err := g.Listings.CountBySeller(ctx, userID)
	if err != nil {
		log.Printf("quota: listing count for user %d failed: %v", userID, err)
		return false
	}
	return count < int64(pkg.MaxListings)
}
