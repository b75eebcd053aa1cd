package models

import (
	"gorm.io/gorm"
)

// SKU is a stock keeping unit carried on pallets.
type SKU struct {
	gorm.Model
	Code        string `gorm:"unique;not null" json:"code"`
	Description string `gorm:"type:text" json:"description"`
	Unit        string `gorm:"type:varchar(20);default:'UNIT'" json:"unit"` // UNIT, BOX, KG
	IsDeleted   bool   `gorm:"default:false" json:"isDeleted"`
}
