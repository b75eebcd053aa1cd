package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is the append-only trail of every mutating operation. No code
// path updates or deletes a row; CreatedAt is the server-assigned timestamp.
type AuditLog struct {
	gorm.Model
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string         `gorm:"type:varchar(30);not null;index:idx_audit_entity" json:"entityType"`
	EntityID   uint           `gorm:"not null;index:idx_audit_entity" json:"entityId"`
	UserID     uint           `gorm:"not null;index" json:"userId"`
	Detail     datatypes.JSON `json:"detail"`
}
