package models

import (
	"time"

	"gorm.io/gorm"
)

// ManifestPallet is the attachment record linking one pallet to one
// manifest. The manifest owns the relationship; a pallet appears in at most
// one live attachment at a time.
type ManifestPallet struct {
	gorm.Model
	ManifestID uint      `gorm:"not null;index" json:"manifestId"`
	PalletID   uint      `gorm:"not null;uniqueIndex" json:"palletId"`
	AttachedBy uint      `gorm:"not null" json:"attachedBy"`
	AttachedAt time.Time `gorm:"not null" json:"attachedAt"`
}
