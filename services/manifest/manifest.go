// Package manifest owns the outbound shipment lifecycle: DRAFT → LOADED →
// IN_TRANSIT → DELIVERED. Loading is the coordinated transition: one
// manifest state change atomically flips every attached pallet to
// IN_TRANSIT, all or nothing.
package manifest

import (
	"time"

	"palletrack/models"
	"palletrack/services/audit"
	"palletrack/services/errs"
	"palletrack/utils"

	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	rec *audit.Recorder
}

func New(db *gorm.DB, rec *audit.Recorder) *Service {
	return &Service{db: db, rec: rec}
}

// Create validates the contract and both locations, generates a unique code
// and persists the manifest in DRAFT.
func (s *Service) Create(contractID, originID, destID, creatorID uint) (*models.Manifest, error) {
	var contract models.Contract
	if err := s.db.Where("id = ? AND is_deleted = false", contractID).First(&contract).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("contract not found")
		}
		return nil, err
	}
	for _, locationID := range []uint{originID, destID} {
		var location models.Location
		if err := s.db.Where("id = ? AND is_deleted = false", locationID).First(&location).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errs.NotFound("location not found")
			}
			return nil, err
		}
	}

	manifest := &models.Manifest{
		ContractID:       contractID,
		OriginLocationID: originID,
		DestLocationID:   destID,
		Status:           models.ManifestDraft,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Generated codes collide rarely; retry a few times before giving up.
		for attempt := 0; attempt < 5; attempt++ {
			manifest.Code = utils.GenerateManifestCode()
			var count int64
			if err := tx.Model(&models.Manifest{}).Where("code = ?", manifest.Code).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				break
			}
			manifest.Code = ""
		}
		if manifest.Code == "" {
			return errs.Conflict("could not generate a unique manifest code")
		}

		if err := tx.Create(manifest).Error; err != nil {
			return err
		}

		return s.rec.Record(tx, audit.ActionManifestCreated, audit.EntityManifest, manifest.ID, creatorID,
			map[string]interface{}{
				"code":       manifest.Code,
				"contractId": contractID,
				"originId":   originID,
				"destId":     destID,
			})
	})
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

// AttachPallet links a sealed pallet to a draft manifest. The pallet must
// share the manifest's contract and origin and must not already sit on any
// manifest.
func (s *Service) AttachPallet(manifestID, palletID, actorID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		manifest, err := s.load(tx, manifestID)
		if err != nil {
			return err
		}
		if manifest.Status != models.ManifestDraft {
			return errs.InvalidState("pallets can only be attached while the manifest is a draft")
		}

		var pallet models.Pallet
		if err := tx.Where("id = ?", palletID).First(&pallet).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.NotFound("pallet not found")
			}
			return err
		}
		if pallet.Status != models.PalletSealed {
			return errs.InvalidState("pallet must be sealed before it can be manifested")
		}
		if pallet.ManifestID != nil {
			return errs.Conflict("pallet is already attached to a manifest")
		}
		if pallet.ContractID != manifest.ContractID {
			return errs.Validation("pallet contract does not match the manifest contract")
		}
		if pallet.OriginLocationID != manifest.OriginLocationID {
			return errs.Validation("pallet origin does not match the manifest origin")
		}

		// The guarded update is what actually enforces single-manifest
		// membership under concurrency.
		result := tx.Model(&models.Pallet{}).
			Where("id = ? AND status = ? AND manifest_id IS NULL", palletID, models.PalletSealed).
			Updates(map[string]interface{}{
				"manifest_id":      manifestID,
				"dest_location_id": manifest.DestLocationID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.Conflict("pallet was attached or modified concurrently")
		}

		attachment := models.ManifestPallet{
			ManifestID: manifestID,
			PalletID:   palletID,
			AttachedBy: actorID,
			AttachedAt: time.Now(),
		}
		if err := tx.Create(&attachment).Error; err != nil {
			return err
		}

		return s.rec.Record(tx, audit.ActionPalletAttached, audit.EntityManifest, manifestID, actorID,
			map[string]interface{}{"palletId": palletID})
	})
}

// DetachPallet removes an attachment while the manifest is still a draft.
func (s *Service) DetachPallet(manifestID, palletID, actorID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		manifest, err := s.load(tx, manifestID)
		if err != nil {
			return err
		}
		if manifest.Status != models.ManifestDraft {
			return errs.InvalidState("pallets can only be detached while the manifest is a draft")
		}

		var attachment models.ManifestPallet
		err = tx.Where("manifest_id = ? AND pallet_id = ?", manifestID, palletID).First(&attachment).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.NotFound("pallet is not attached to this manifest")
			}
			return err
		}

		// Hard delete so the pallet can be re-attached later.
		if err := tx.Unscoped().Delete(&attachment).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Pallet{}).
			Where("id = ? AND manifest_id = ?", palletID, manifestID).
			Updates(map[string]interface{}{"manifest_id": nil, "dest_location_id": nil})
		if result.Error != nil {
			return result.Error
		}

		return s.rec.Record(tx, audit.ActionPalletDetached, audit.EntityManifest, manifestID, actorID,
			map[string]interface{}{"palletId": palletID})
	})
}

// MarkLoaded moves a non-empty draft manifest to LOADED and every attached
// pallet from SEALED to IN_TRANSIT in one transaction. A pallet that fails
// the guard aborts the whole operation.
func (s *Service) MarkLoaded(manifestID, actorID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		manifest, err := s.load(tx, manifestID)
		if err != nil {
			return err
		}
		if manifest.Status != models.ManifestDraft {
			return errs.InvalidState("only draft manifests can be loaded")
		}

		var attachments []models.ManifestPallet
		if err := tx.Where("manifest_id = ?", manifestID).Find(&attachments).Error; err != nil {
			return err
		}
		if len(attachments) == 0 {
			return errs.InvalidState("manifest has no pallets to load")
		}

		now := time.Now()
		result := tx.Model(&models.Manifest{}).
			Where("id = ? AND status = ?", manifestID, models.ManifestDraft).
			Updates(map[string]interface{}{
				"status":    models.ManifestLoaded,
				"loaded_by": actorID,
				"loaded_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.Conflict("manifest was loaded or modified concurrently")
		}

		palletIDs := make([]uint, 0, len(attachments))
		for _, attachment := range attachments {
			palletIDs = append(palletIDs, attachment.PalletID)
		}

		moved := tx.Model(&models.Pallet{}).
			Where("id IN ? AND status = ?", palletIDs, models.PalletSealed).
			Update("status", models.PalletInTransit)
		if moved.Error != nil {
			return moved.Error
		}
		if moved.RowsAffected != int64(len(palletIDs)) {
			// Some pallet left SEALED behind our back; roll everything back.
			return errs.Conflict("one or more pallets are no longer sealed")
		}

		return s.rec.Record(tx, audit.ActionManifestLoaded, audit.EntityManifest, manifestID, actorID,
			map[string]interface{}{"pallets": len(palletIDs)})
	})
}

// MarkInTransit records departure.
func (s *Service) MarkInTransit(manifestID, actorID uint) error {
	return s.transition(manifestID, actorID, models.ManifestLoaded, models.ManifestInTransit,
		"departed_at", audit.ActionManifestDeparted, "only loaded manifests can depart")
}

// MarkDelivered records arrival of the whole shipment.
func (s *Service) MarkDelivered(manifestID, actorID uint) error {
	return s.transition(manifestID, actorID, models.ManifestInTransit, models.ManifestDelivered,
		"delivered_at", audit.ActionManifestDelivered, "only in-transit manifests can be delivered")
}

func (s *Service) transition(manifestID, actorID uint, from, to models.ManifestStatus, stampColumn, action, guardMessage string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		manifest, err := s.load(tx, manifestID)
		if err != nil {
			return err
		}
		if manifest.Status != from {
			return errs.InvalidState(guardMessage)
		}

		result := tx.Model(&models.Manifest{}).
			Where("id = ? AND status = ?", manifestID, from).
			Updates(map[string]interface{}{"status": to, stampColumn: time.Now()})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.Conflict("manifest was modified concurrently")
		}

		return s.rec.Record(tx, action, audit.EntityManifest, manifestID, actorID, nil)
	})
}

// Get returns a manifest with its attachments.
func (s *Service) Get(manifestID uint) (*models.Manifest, error) {
	var manifest models.Manifest
	err := s.db.Preload("Pallets").Where("id = ?", manifestID).First(&manifest).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("manifest not found")
		}
		return nil, err
	}
	return &manifest, nil
}

// ListFilter narrows List; zero values mean no filter.
type ListFilter struct {
	Status     models.ManifestStatus
	ContractID uint
	Limit      int
	Offset     int
}

// List returns manifests newest first with a total count.
func (s *Service) List(filter ListFilter) ([]models.Manifest, int64, error) {
	query := s.db.Model(&models.Manifest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ContractID != 0 {
		query = query.Where("contract_id = ?", filter.ContractID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	var manifests []models.Manifest
	err := query.Preload("Pallets").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&manifests).Error
	return manifests, total, err
}

// Stats is the per-manifest rollup used by the dashboard and CSV export.
type Stats struct {
	ManifestID  uint  `json:"manifestId"`
	PalletCount int64 `json:"palletCount"`
}

// GetStats counts attachments for one manifest.
func (s *Service) GetStats(manifestID uint) (*Stats, error) {
	if _, err := s.load(s.db, manifestID); err != nil {
		return nil, err
	}
	var count int64
	err := s.db.Model(&models.ManifestPallet{}).Where("manifest_id = ?", manifestID).Count(&count).Error
	if err != nil {
		return nil, err
	}
	return &Stats{ManifestID: manifestID, PalletCount: count}, nil
}

func (s *Service) load(tx *gorm.DB, manifestID uint) (*models.Manifest, error) {
	var manifest models.Manifest
	if err := tx.Where("id = ?", manifestID).First(&manifest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("manifest not found")
		}
		return nil, err
	}
	return &manifest, nil
}
