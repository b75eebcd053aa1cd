package models

import (
	"time"

	"gorm.io/gorm"
)

// ManifestStatus defines the lifecycle state of a manifest
type ManifestStatus string

const (
	ManifestDraft     ManifestStatus = "DRAFT"
	ManifestLoaded    ManifestStatus = "LOADED"
	ManifestInTransit ManifestStatus = "IN_TRANSIT"
	ManifestDelivered ManifestStatus = "DELIVERED"
)

// Manifest groups sealed pallets into one outbound shipment under a single
// contract and route.
type Manifest struct {
	gorm.Model
	Code             string         `gorm:"unique;not null" json:"code"` // MF-YYYYMMDD-XXXX
	ContractID       uint           `gorm:"not null;index" json:"contractId"`
	OriginLocationID uint           `gorm:"not null" json:"originLocationId"`
	DestLocationID   uint           `gorm:"not null" json:"destLocationId"`
	Status           ManifestStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`

	LoadedBy    *uint      `json:"loadedBy"`
	LoadedAt    *time.Time `json:"loadedAt"`
	DepartedAt  *time.Time `json:"departedAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`

	// Relations
	Pallets []ManifestPallet `gorm:"foreignKey:ManifestID" json:"pallets,omitempty"`
}
