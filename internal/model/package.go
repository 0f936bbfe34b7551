package model

import "time"

// Package maps a plan tier to its price and its listing allowance.
// Rows are read-only reference data seeded at install time; the quota
// guard looks tiers up by Type.
type Package struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Price       float64   `json:"price"`
	MaxListings int       `json:"max_listings"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
