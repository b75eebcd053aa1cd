package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Receipt records a pallet's arrival at a destination. At most one per
// pallet; creating it moves the pallet to RECEIVED.
type Receipt struct {
	gorm.Model
	PalletID   uint           `gorm:"not null;uniqueIndex" json:"palletId"`
	LocationID uint           `gorm:"not null;index" json:"locationId"`
	ReceivedBy uint           `gorm:"not null" json:"receivedBy"`
	ReceivedAt time.Time      `gorm:"not null" json:"receivedAt"`
	Photos     datatypes.JSON `json:"photos"`
	Notes      string         `gorm:"type:text" json:"notes"`
}
