package models

import (
	"gorm.io/gorm"
)

// Contract is the client agreement a pallet moves under. Plain reference
// data, no lifecycle.
type Contract struct {
	gorm.Model
	Code       string `gorm:"unique;not null" json:"code"`
	ClientName string `gorm:"not null" json:"clientName"`
	IsActive   bool   `gorm:"default:true" json:"isActive"`
	IsDeleted  bool   `gorm:"default:false" json:"isDeleted"`
}
