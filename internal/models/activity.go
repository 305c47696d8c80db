package models

import (
	"time"

	"gorm.io/gorm"
)

// Activity categories form a closed set; the ledger rejects anything else.
const (
	CategoryTransport  = "Transport"
	CategoryFood       = "Food"
	CategoryHomeEnergy = "Home Energy"
	CategoryWaste      = "Waste"
)

// ValidCategories is the set of accepted activity categories.
var ValidCategories = map[string]bool{
	CategoryTransport:  true,
	CategoryFood:       true,
	CategoryHomeEnergy: true,
	CategoryWaste:      true,
}

// Activity is a single logged action and its computed carbon footprint.
// CarbonFootprint is fixed at creation time and never recomputed, even if
// the emissions factors change later.
type Activity struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID          string    `json:"userId" gorm:"index;type:varchar(36)" validate:"required"`
	Date            time.Time `json:"date" validate:"required"`
	Category        string    `json:"category" gorm:"type:varchar(50)" validate:"required"`
	Type            string    `json:"type" gorm:"type:varchar(100)" validate:"required"`
	Value           float64   `json:"value" validate:"required,gt=0"`
	Unit            string    `json:"unit" gorm:"type:varchar(50)" validate:"required"`
	CarbonFootprint float64   `json:"carbonFootprint"`
	gorm.Model                // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
