// Package pallet owns the pallet lifecycle: OPEN → SEALED → IN_TRANSIT →
// RECEIVED → FINALIZED. Sealing is the single irreversible checkpoint; every
// invariant that later reconciliation trusts (item cap, confirmed review of
// low-confidence counts) is enforced there.
package pallet

import (
	"context"
	"encoding/json"
	"time"

	"palletrack/config"
	"palletrack/models"
	"palletrack/services/audit"
	"palletrack/services/errs"
	"palletrack/services/estimator"
	"palletrack/services/qrpool"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	rules config.Rules
	pool  *qrpool.Service
	rec   *audit.Recorder
	est   estimator.Estimator
}

func New(db *gorm.DB, rules config.Rules, pool *qrpool.Service, rec *audit.Recorder, est estimator.Estimator) *Service {
	return &Service{db: db, rules: rules, pool: pool, rec: rec, est: est}
}

// CreateInput carries everything needed to open a pallet. QrCode is
// optional; when empty the lowest free code is claimed from the pool.
type CreateInput struct {
	ContractID       uint
	OriginLocationID uint
	QrCode           string
	CreatorID        uint
}

// Adjustment is one human-corrected quantity from a seal review.
type Adjustment struct {
	SkuID    uint `json:"skuId"`
	Quantity int  `json:"quantity"`
}

// SealReview is the confirmation payload required when the manual-review
// gate is set.
type SealReview struct {
	Confirmed   bool         `json:"confirmed"`
	Adjustments []Adjustment `json:"adjustments"`
}

// Create validates the references, opens the pallet and binds its tag in one
// transaction.
func (s *Service) Create(in CreateInput) (*models.Pallet, error) {
	if err := s.checkContract(in.ContractID); err != nil {
		return nil, err
	}
	if err := s.checkLocation(in.OriginLocationID); err != nil {
		return nil, err
	}

	pallet := &models.Pallet{
		ContractID:       in.ContractID,
		OriginLocationID: in.OriginLocationID,
		Status:           models.PalletOpen,
		Photos:           datatypes.JSON([]byte("[]")),
	}

	var boundCode string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pallet).Error; err != nil {
			return err
		}

		if in.QrCode != "" {
			if err := s.pool.Bind(tx, in.QrCode, pallet.ID, in.ContractID); err != nil {
				return err
			}
			boundCode = in.QrCode
		} else {
			code, err := s.pool.BindFirstFree(tx, pallet.ID, in.ContractID)
			if err != nil {
				return err
			}
			boundCode = code
		}

		return s.rec.Record(tx, audit.ActionPalletCreated, audit.EntityPallet, pallet.ID, in.CreatorID,
			map[string]interface{}{
				"contractId": in.ContractID,
				"locationId": in.OriginLocationID,
				"qrCode":     boundCode,
			})
	})
	if err != nil {
		return nil, err
	}
	return pallet, nil
}

// AddItem creates one SKU line. Only while OPEN, no duplicate SKU, capped at
// MaxSkusPerPallet.
func (s *Service) AddItem(palletID, skuID, actorID uint) (*models.PalletItem, error) {
	var item *models.PalletItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		pallet, err := s.load(tx, palletID)
		if err != nil {
			return err
		}
		if pallet.Status != models.PalletOpen {
			return errs.InvalidState("items can only be added while the pallet is open")
		}

		var sku models.SKU
		if err := tx.Where("id = ? AND is_deleted = false", skuID).First(&sku).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.NotFound("sku not found")
			}
			return err
		}

		var existing []models.PalletItem
		if err := tx.Where("pallet_id = ?", palletID).Find(&existing).Error; err != nil {
			return err
		}
		for _, line := range existing {
			if line.SkuID == skuID {
				return errs.AlreadyExists("sku is already on this pallet")
			}
		}
		if len(existing) >= s.rules.MaxSkusPerPallet {
			return errs.LimitExceeded("pallet already carries the maximum number of skus")
		}

		item = &models.PalletItem{PalletID: palletID, SkuID: skuID}
		if err := tx.Create(item).Error; err != nil {
			return err
		}

		return s.rec.Record(tx, audit.ActionItemAdded, audit.EntityPallet, palletID, actorID,
			map[string]interface{}{"skuId": skuID, "itemCount": len(existing) + 1})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// AttachPhotos appends blob references to the pallet's ordered photo list.
func (s *Service) AttachPhotos(palletID uint, photoRefs []string, actorID uint) error {
	if len(photoRefs) == 0 {
		return errs.Validation("at least one photo reference is required")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		pallet, err := s.load(tx, palletID)
		if err != nil {
			return err
		}
		if pallet.Status != models.PalletOpen {
			return errs.InvalidState("photos can only be attached while the pallet is open")
		}

		photos, err := decodePhotos(pallet.Photos)
		if err != nil {
			return err
		}
		photos = append(photos, photoRefs...)
		encoded, err := json.Marshal(photos)
		if err != nil {
			return err
		}

		result := tx.Model(&models.Pallet{}).
			Where("id = ? AND status = ?", palletID, models.PalletOpen).
			Update("photos", datatypes.JSON(encoded))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.Conflict("pallet was modified concurrently")
		}

		return s.rec.Record(tx, audit.ActionPhotosAttached, audit.EntityPallet, palletID, actorID,
			map[string]interface{}{"added": len(photoRefs), "total": len(photos)})
	})
}

// SuggestCount runs the estimator over the pallet's photos and persists the
// advisory per-line and aggregate numbers. Re-runnable; never changes
// lifecycle state. The manual-review gate is applied from the aggregate
// confidence.
func (s *Service) SuggestCount(ctx context.Context, palletID, actorID uint) (*estimator.Result, error) {
	var pallet models.Pallet
	if err := s.db.Preload("Items").Where("id = ?", palletID).First(&pallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("pallet not found")
		}
		return nil, err
	}
	if pallet.Status != models.PalletOpen {
		return nil, errs.InvalidState("counts can only be suggested while the pallet is open")
	}
	if len(pallet.Items) == 0 {
		return nil, errs.Validation("pallet has no items to count")
	}

	photos, err := decodePhotos(pallet.Photos)
	if err != nil {
		return nil, err
	}
	skuIDs := make([]uint, 0, len(pallet.Items))
	for _, item := range pallet.Items {
		skuIDs = append(skuIDs, item.SkuID)
	}

	result, err := s.est.Estimate(ctx, photos, skuIDs)
	if err != nil {
		return nil, err
	}

	bySku := make(map[uint]estimator.ItemEstimate, len(result.Items))
	for _, line := range result.Items {
		bySku[line.SkuID] = line
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// The estimator ran unlocked; nothing may land on a pallet that
		// left OPEN in the meantime. The guarded pallet update below rolls
		// the item writes back if the re-check still loses the race.
		current, err := s.load(tx, palletID)
		if err != nil {
			return err
		}
		if current.Status != models.PalletOpen {
			return errs.Conflict("pallet was sealed or modified concurrently")
		}

		for _, item := range pallet.Items {
			line, ok := bySku[item.SkuID]
			if !ok {
				continue
			}
			qty, conf := line.Quantity, line.Confidence
			update := tx.Model(&models.PalletItem{}).
				Where("id = ? AND pallet_id = ?", item.ID, palletID).
				Updates(map[string]interface{}{"ai_quantity": qty, "ai_confidence": conf})
			if update.Error != nil {
				return update.Error
			}
		}

		if err := s.EnforceManualReview(tx, palletID, result.Confidence); err != nil {
			return err
		}

		return s.rec.Record(tx, audit.ActionCountSuggested, audit.EntityPallet, palletID, actorID,
			map[string]interface{}{
				"confidence":   result.Confidence,
				"manualReview": result.Confidence < s.rules.ConfidenceThreshold,
				"items":        len(result.Items),
			})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EnforceManualReview sets the review flag from an aggregate confidence.
// No state transition, and only while the pallet is still OPEN: sealed
// departure counts are ground truth and must not gain advisory writes.
func (s *Service) EnforceManualReview(tx *gorm.DB, palletID uint, confidence float64) error {
	result := tx.Model(&models.Pallet{}).
		Where("id = ? AND status = ?", palletID, models.PalletOpen).
		Updates(map[string]interface{}{
			"ai_confidence": confidence,
			"manual_review": confidence < s.rules.ConfidenceThreshold,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.Conflict("pallet was sealed or modified concurrently")
	}
	return nil
}

// Seal locks the pallet's departure counts. When the manual-review gate is
// set a confirmed review must be supplied; its adjustments override the AI
// quantities line by line.
func (s *Service) Seal(palletID, actorID uint, review *SealReview) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		pallet, err := s.load(tx, palletID)
		if err != nil {
			return err
		}
		if pallet.Status != models.PalletOpen {
			return errs.InvalidState("only open pallets can be sealed")
		}

		var items []models.PalletItem
		if err := tx.Where("pallet_id = ?", palletID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) > s.rules.MaxSkusPerPallet {
			return errs.LimitExceeded("pallet carries more skus than allowed")
		}

		if pallet.ManualReview && (review == nil || !review.Confirmed) {
			return errs.ReviewRequired("low-confidence count requires a confirmed manual review")
		}

		now := time.Now()
		adjusted := 0
		if review != nil {
			bySku := make(map[uint]*models.PalletItem, len(items))
			for i := range items {
				bySku[items[i].SkuID] = &items[i]
			}
			for _, adj := range review.Adjustments {
				item, ok := bySku[adj.SkuID]
				if !ok {
					return errs.NotFound("adjustment references a sku that is not on the pallet")
				}
				qty := adj.Quantity
				update := tx.Model(&models.PalletItem{}).Where("id = ?", item.ID).
					Updates(map[string]interface{}{
						"adjusted_quantity": qty,
						"adjusted_by":       actorID,
						"adjusted_at":       now,
					})
				if update.Error != nil {
					return update.Error
				}
				adjusted++
			}
		}

		result := tx.Model(&models.Pallet{}).
			Where("id = ? AND status = ?", palletID, models.PalletOpen).
			Updates(map[string]interface{}{
				"status":    models.PalletSealed,
				"sealed_by": actorID,
				"sealed_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.Conflict("pallet was sealed or modified concurrently")
		}

		return s.rec.Record(tx, audit.ActionPalletSealed, audit.EntityPallet, palletID, actorID,
			map[string]interface{}{
				"items":          len(items),
				"reviewRequired": pallet.ManualReview,
				"adjustments":    adjusted,
			})
	})
}

// Delete removes an open pallet and returns its tag to the pool in the same
// transaction. Anything past OPEN is immutable history and cannot be deleted.
func (s *Service) Delete(palletID, actorID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		pallet, err := s.load(tx, palletID)
		if err != nil {
			return err
		}
		if pallet.Status != models.PalletOpen {
			return errs.InvalidState("only open pallets can be deleted")
		}

		qr, err := s.pool.FindByPallet(tx, palletID)
		if err != nil {
			return err
		}
		releasedCode := ""
		if qr != nil {
			if _, err := s.pool.Release(tx, qr.Code); err != nil {
				return err
			}
			releasedCode = qr.Code
		}

		if err := tx.Where("pallet_id = ?", palletID).Delete(&models.PalletItem{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND status = ?", palletID, models.PalletOpen).Delete(&models.Pallet{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.Conflict("pallet was modified concurrently")
		}

		return s.rec.Record(tx, audit.ActionPalletDeleted, audit.EntityPallet, palletID, actorID,
			map[string]interface{}{"qrReleased": releasedCode})
	})
}

// Finalize closes out a received pallet once a reconciliation batch exists.
func (s *Service) Finalize(palletID, actorID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		pallet, err := s.load(tx, palletID)
		if err != nil {
			return err
		}
		if pallet.Status != models.PalletReceived {
			return errs.InvalidState("only received pallets can be finalized")
		}

		var batches int64
		if err := tx.Model(&models.Comparison{}).Where("pallet_id = ?", palletID).Count(&batches).Error; err != nil {
			return err
		}
		if batches == 0 {
			return errs.InvalidState("pallet has no reconciliation batch")
		}

		result := tx.Model(&models.Pallet{}).
			Where("id = ? AND status = ?", palletID, models.PalletReceived).
			Update("status", models.PalletFinalized)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.Conflict("pallet was modified concurrently")
		}

		return s.rec.Record(tx, audit.ActionPalletFinal, audit.EntityPallet, palletID, actorID, nil)
	})
}

// Get returns a pallet with its items and bound tag.
func (s *Service) Get(palletID uint) (*models.Pallet, *models.QrCode, error) {
	var pallet models.Pallet
	err := s.db.Preload("Items").Where("id = ?", palletID).First(&pallet).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, errs.NotFound("pallet not found")
		}
		return nil, nil, err
	}

	qr, err := s.pool.FindByPallet(s.db, palletID)
	if err != nil {
		return nil, nil, err
	}
	return &pallet, qr, nil
}

// ListFilter narrows List; zero values mean no filter.
type ListFilter struct {
	Status     models.PalletStatus
	ContractID uint
	Limit      int
	Offset     int
}

// List returns pallets newest first with a total count.
func (s *Service) List(filter ListFilter) ([]models.Pallet, int64, error) {
	query := s.db.Model(&models.Pallet{})
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

	var pallets []models.Pallet
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&pallets).Error
	return pallets, total, err
}

func (s *Service) load(tx *gorm.DB, palletID uint) (*models.Pallet, error) {
	var pallet models.Pallet
	if err := tx.Where("id = ?", palletID).First(&pallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("pallet not found")
		}
		return nil, err
	}
	return &pallet, nil
}

func (s *Service) checkContract(contractID uint) error {
	var contract models.Contract
	if err := s.db.Where("id = ? AND is_deleted = false", contractID).First(&contract).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.NotFound("contract not found")
		}
		return err
	}
	return nil
}

func (s *Service) checkLocation(locationID uint) error {
	var location models.Location
	if err := s.db.Where("id = ? AND is_deleted = false", locationID).First(&location).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.NotFound("location not found")
		}
		return err
	}
	return nil
}

func decodePhotos(raw datatypes.JSON) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var photos []string
	if err := json.Unmarshal(raw, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}
