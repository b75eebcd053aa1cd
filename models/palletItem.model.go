package models

import (
	"time"

	"gorm.io/gorm"
)

// PalletItem is one (pallet, SKU) line. At most MAX_SKUS_PER_PALLET per
// pallet; created only while the pallet is open. AdjustedQuantity overrides
// AiQuantity when present.
type PalletItem struct {
	gorm.Model
	PalletID uint `gorm:"not null;index" json:"palletId"`
	SkuID    uint `gorm:"not null;index" json:"skuId"`

	AiQuantity   *int     `json:"aiQuantity"`
	AiConfidence *float64 `json:"aiConfidence"`

	AdjustedQuantity *int       `json:"adjustedQuantity"`
	AdjustedBy       *uint      `json:"adjustedBy"`
	AdjustedAt       *time.Time `json:"adjustedAt"`
}

// DepartureQuantity is the count sealed into the pallet for this line:
// the human adjustment when present, else the AI suggestion, else 0.
func (i *PalletItem) DepartureQuantity() int {
	if i.AdjustedQuantity != nil {
		return *i.AdjustedQuantity
	}
	if i.AiQuantity != nil {
		return *i.AiQuantity
	}
	return 0
}
