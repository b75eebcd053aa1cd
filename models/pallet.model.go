package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PalletStatus defines the lifecycle state of a pallet
type PalletStatus string

const (
	PalletOpen      PalletStatus = "OPEN"
	PalletSealed    PalletStatus = "SEALED"
	PalletInTransit PalletStatus = "IN_TRANSIT"
	PalletReceived  PalletStatus = "RECEIVED"
	PalletFinalized PalletStatus = "FINALIZED"
)

// Pallet is one physical unit of goods moving through the system.
// Sealing locks its item counts; everything after sealing treats those
// counts as ground truth.
type Pallet struct {
	gorm.Model
	ContractID       uint         `gorm:"not null;index" json:"contractId"`
	OriginLocationID uint         `gorm:"not null;index" json:"originLocationId"`
	DestLocationID   *uint        `json:"destLocationId"`
	ManifestID       *uint        `gorm:"index" json:"manifestId"`
	Status           PalletStatus `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`

	// AI advisory numbers. Nullable until SuggestCount has run.
	AiConfidence *float64 `json:"aiConfidence"`
	ManualReview bool     `gorm:"default:false" json:"manualReview"`

	SealedBy *uint      `json:"sealedBy"`
	SealedAt *time.Time `json:"sealedAt"`

	Photos datatypes.JSON `json:"photos"` // ordered array of blob reference URLs

	// Relations
	Items []PalletItem `gorm:"foreignKey:PalletID" json:"items,omitempty"`
}
