package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Severity classifies a reconciliation delta
type Severity string

const (
	SeverityOk       Severity = "OK"
	SeverityAlert    Severity = "ALERT"
	SeverityCritical Severity = "CRITICAL"
)

// Comparison is one reconciled line between departure and arrival counts for
// a (pallet, SKU). Immutable after creation except for the reason/evidence
// annotation; ALERT and CRITICAL lines must eventually carry a reason.
type Comparison struct {
	gorm.Model
	PalletID uint   `gorm:"not null;index" json:"palletId"`
	SkuID    uint   `gorm:"not null;index" json:"skuId"`
	BatchID  string `gorm:"type:varchar(36);not null;index" json:"batchId"` // one uuid per reconciliation run

	DepartureQty int      `gorm:"not null" json:"departureQty"`
	ArrivalQty   int      `gorm:"not null" json:"arrivalQty"`
	Delta        int      `gorm:"not null" json:"delta"`
	Severity     Severity `gorm:"type:varchar(10);not null;index" json:"severity"`

	Reason   string         `gorm:"type:text" json:"reason"`
	Evidence datatypes.JSON `json:"evidence"` // blob reference URLs
}
