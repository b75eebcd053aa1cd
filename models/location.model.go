package models

import (
	"gorm.io/gorm"
)

// LocationKind enum values
const (
	LocationWarehouse = "WAREHOUSE"
	LocationStore     = "STORE"
	LocationDC        = "DC"
)

// Location is a physical site pallets depart from or arrive at.
type Location struct {
	gorm.Model
	Code      string `gorm:"unique;not null" json:"code"`
	Name      string `gorm:"not null" json:"name"`
	Kind      string `gorm:"type:varchar(20);default:'WAREHOUSE'" json:"kind"` // WAREHOUSE, STORE, DC
	IsDeleted bool   `gorm:"default:false" json:"isDeleted"`
}
