package models

import (
	"gorm.io/gorm"
)

// QrStatus defines the pool state of a scannable tag
type QrStatus string

const (
	QrFree  QrStatus = "FREE"
	QrBound QrStatus = "BOUND"
)

// QrCode is a pre-provisioned printable tag. The pool owns the binding: a
// code is bound to at most one pallet at a time and returns to FREE only
// when that pallet is deleted while still open.
type QrCode struct {
	gorm.Model
	Code     string   `gorm:"unique;not null" json:"code"`
	Status   QrStatus `gorm:"type:varchar(10);not null;default:'FREE';index" json:"status"`
	PalletID *uint    `gorm:"index" json:"palletId"`
	Payload  string   `gorm:"type:text" json:"payload"` // printable content, stamped at bind time
}
