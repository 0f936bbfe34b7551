package model

import "time"

// Lifecycle states of a listing.  State is independent from the
// descriptive condition status below: a used car can be PUBLISHED and
// a brand-new one can be DELETED.
const (
	StatePublished = "PUBLISHED"
	StateSold      = "SOLD"
	StateDeleted   = "DELETED"
)

// Condition status values (descriptive attribute, not lifecycle).
const (
	ConditionNew     = "NEW"
	ConditionSemiNew = "SEMI_NEW"
	ConditionUsed    = "USED"
)

// FuelTypes enumerates accepted fuel_type values.
var FuelTypes = []string{"GASOLINE", "DIESEL", "ELECTRIC", "HYBRID", "NATURAL_GAS", "LPG"}

// Transmissions enumerates accepted transmission values.
var Transmissions = []string{"AUTOMATIC", "MANUAL"}

// BodyTypes enumerates accepted body type values.
var BodyTypes = []string{"SUV", "SEDAN", "PICKUP", "HATCHBACK", "COUPE", "VAN", "MOTORCYCLE", "CONVERTIBLE"}

// VehicleImage is one entry of a listing's ordered image set.  At most
// one image per vehicle should carry IsMain; summary views collapse
// the set to that single image.
type VehicleImage struct {
	URL    string `json:"url"`
	IsMain bool   `json:"is_main"`
}

// Vehicle represents a listing persisted in the vehicles table.
//
// Fields:
//  ID           – primary key identifier.
//  SellerID     – users.id of the listing owner.
//  Brand, Model – free text; the model is not checked against the
//                 brand's known model list.
//  State        – lifecycle state (PUBLISHED, SOLD, DELETED).
//  Status       – condition status (NEW, SEMI_NEW, USED).
//  DeletedAt    – set on soft delete, cleared on restore or mark-sold.
type Vehicle struct {
	ID                  uint64         `json:"id"`
	SellerID            uint64         `json:"seller_id"`
	Brand               string         `json:"brand"`
	Model               string         `json:"model"`
	Year                int            `json:"year"`
	Color               string         `json:"color"`
	Km                  int64          `json:"km"`
	Price               float64        `json:"price"`
	Type                string         `json:"type"`
	Status              string         `json:"status"`
	FuelType            string         `json:"fuel_type"`
	Transmission        string         `json:"transmission,omitempty"`
	Description         string         `json:"description,omitempty"`
	Verified            bool           `json:"verified"`
	State               string         `json:"state"`
	Images              []VehicleImage `json:"images"`
	LastMaintenanceDate *time.Time     `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate *time.Time     `json:"next_maintenance_date,omitempty"`
	DeletedAt           *time.Time     `json:"deleted_at"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}
