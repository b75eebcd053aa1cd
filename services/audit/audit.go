// Package audit appends immutable records for every mutating operation.
// Entries are written inside the caller's transaction, after the state
// mutation they describe, so a rolled-back operation leaves no trace.
package audit

import (
	"encoding/json"
	"time"

	"palletrack/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Action tags
const (
	ActionQrProvisioned = "QR_PROVISIONED"
	ActionQrReleased    = "QR_RELEASED"

	ActionPalletCreated  = "PALLET_CREATED"
	ActionItemAdded      = "ITEM_ADDED"
	ActionPhotosAttached = "PHOTOS_ATTACHED"
	ActionCountSuggested = "COUNT_SUGGESTED"
	ActionPalletSealed   = "PALLET_SEALED"
	ActionPalletDeleted  = "PALLET_DELETED"
	ActionPalletFinal    = "PALLET_FINALIZED"

	ActionManifestCreated   = "MANIFEST_CREATED"
	ActionPalletAttached    = "PALLET_ATTACHED"
	ActionPalletDetached    = "PALLET_DETACHED"
	ActionManifestLoaded    = "MANIFEST_LOADED"
	ActionManifestDeparted  = "MANIFEST_DEPARTED"
	ActionManifestDelivered = "MANIFEST_DELIVERED"

	ActionPalletReceived  = "PALLET_RECEIVED"
	ActionComparisonRun   = "COMPARISON_RUN"
	ActionComparisonNoted = "COMPARISON_ANNOTATED"
)

// Entity types
const (
	EntityPallet     = "pallet"
	EntityManifest   = "manifest"
	EntityQrCode     = "qr_code"
	EntityReceipt    = "receipt"
	EntityComparison = "comparison"
)

type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record appends one entry. Pass the transaction that applied the mutation
// so the entry commits or rolls back with it.
func (r *Recorder) Record(tx *gorm.DB, action, entityType string, entityID, userID uint, detail map[string]interface{}) error {
	var payload datatypes.JSON
	if detail != nil {
		raw, err := json.Marshal(detail)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(raw)
	}

	entry := models.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Detail:     payload,
	}
	return tx.Create(&entry).Error
}

// ByEntity returns the trail for one entity, newest first.
func (r *Recorder) ByEntity(entityType string, entityID uint, limit, offset int) ([]models.AuditLog, int64, error) {
	query := r.db.Model(&models.AuditLog{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID)
	return r.page(query, limit, offset)
}

// ByUser returns everything one user did, newest first.
func (r *Recorder) ByUser(userID uint, limit, offset int) ([]models.AuditLog, int64, error) {
	query := r.db.Model(&models.AuditLog{}).Where("user_id = ?", userID)
	return r.page(query, limit, offset)
}

// ByAction returns all entries with one action tag, newest first.
func (r *Recorder) ByAction(action string, limit, offset int) ([]models.AuditLog, int64, error) {
	query := r.db.Model(&models.AuditLog{}).Where("action = ?", action)
	return r.page(query, limit, offset)
}

// ByTimeRange returns entries created within [from, to], newest first.
func (r *Recorder) ByTimeRange(from, to time.Time, limit, offset int) ([]models.AuditLog, int64, error) {
	query := r.db.Model(&models.AuditLog{}).
		Where("created_at >= ? AND created_at <= ?", from, to)
	return r.page(query, limit, offset)
}

func (r *Recorder) page(query *gorm.DB, limit, offset int) ([]models.AuditLog, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AuditLog
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, total, err
}
