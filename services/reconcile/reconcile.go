// Package reconcile compares a sealed pallet's departure counts against the
// counts taken on arrival and classifies every delta. It also owns the
// receiving step that moves a pallet from IN_TRANSIT to RECEIVED; receiving
// and comparing are deliberately separate calls.
package reconcile

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"palletrack/config"
	"palletrack/models"
	"palletrack/services/audit"
	"palletrack/services/errs"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AlertFunc is called after a comparison batch commits with at least one
// CRITICAL line. Wired to the notification mailer in production, nil in
// tests.
type AlertFunc func(palletID uint, batchID string, criticals int)

type Service struct {
	db    *gorm.DB
	rules config.Rules
	rec   *audit.Recorder
	alert AlertFunc
}

func New(db *gorm.DB, rules config.Rules, rec *audit.Recorder, alert AlertFunc) *Service {
	return &Service{db: db, rules: rules, rec: rec, alert: alert}
}

// ReceiveInput carries one pallet arrival.
type ReceiveInput struct {
	PalletID   uint
	LocationID uint
	ReceiverID uint
	Photos     []string
	Notes      string
}

// ArrivalCount is one counted SKU quantity taken at the destination.
type ArrivalCount struct {
	SkuID    uint `json:"skuId"`
	Quantity int  `json:"quantity"`
}

// BatchResult summarizes one reconciliation run.
type BatchResult struct {
	BatchID     string              `json:"batchId"`
	Comparisons []models.Comparison `json:"comparisons"`
	Alerts      int                 `json:"alerts"`
	Criticals   int                 `json:"criticals"`
}

// ReceivePallet records arrival and moves the pallet to RECEIVED. At most
// one receipt per pallet.
func (s *Service) ReceivePallet(in ReceiveInput) (*models.Receipt, error) {
	var location models.Location
	if err := s.db.Where("id = ? AND is_deleted = false", in.LocationID).First(&location).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("destination location not found")
		}
		return nil, err
	}

	receipt := &models.Receipt{
		PalletID:   in.PalletID,
		LocationID: in.LocationID,
		ReceivedBy: in.ReceiverID,
		ReceivedAt: time.Now(),
		Notes:      in.Notes,
	}
	if len(in.Photos) > 0 {
		encoded, err := json.Marshal(in.Photos)
		if err != nil {
			return nil, err
		}
		receipt.Photos = datatypes.JSON(encoded)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var pallet models.Pallet
		if err := tx.Where("id = ?", in.PalletID).First(&pallet).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.NotFound("pallet not found")
			}
			return err
		}
		if pallet.Status != models.PalletInTransit {
			return errs.InvalidState("only in-transit pallets can be received")
		}

		var existing int64
		if err := tx.Model(&models.Receipt{}).Where("pallet_id = ?", in.PalletID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errs.AlreadyExists("pallet has already been received")
		}

		if err := tx.Create(receipt).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Pallet{}).
			Where("id = ? AND status = ?", in.PalletID, models.PalletInTransit).
			Update("status", models.PalletReceived)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.Conflict("pallet was received or modified concurrently")
		}

		return s.rec.Record(tx, audit.ActionPalletReceived, audit.EntityPallet, in.PalletID, in.ReceiverID,
			map[string]interface{}{"locationId": in.LocationID, "photos": len(in.Photos)})
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// CompareOriginDestination reconciles departure counts against arrival
// counts. Every departure line is compared (arrival 0 when absent) and every
// arrival-only SKU is compared against a departure of 0. One batch per run.
func (s *Service) CompareOriginDestination(palletID uint, arrivals []ArrivalCount, actorID uint) (*BatchResult, error) {
	var pallet models.Pallet
	if err := s.db.Preload("Items").Where("id = ?", palletID).First(&pallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("pallet not found")
		}
		return nil, err
	}
	if pallet.Status != models.PalletReceived {
		return nil, errs.InvalidState("pallet must be received before reconciliation")
	}

	departure := make(map[uint]int, len(pallet.Items))
	for i := range pallet.Items {
		departure[pallet.Items[i].SkuID] = pallet.Items[i].DepartureQuantity()
	}
	arrival := make(map[uint]int, len(arrivals))
	for _, line := range arrivals {
		arrival[line.SkuID] += line.Quantity
	}

	skuIDs := make([]uint, 0, len(departure)+len(arrival))
	for skuID := range departure {
		skuIDs = append(skuIDs, skuID)
	}
	for skuID := range arrival {
		if _, ok := departure[skuID]; !ok {
			skuIDs = append(skuIDs, skuID)
		}
	}
	sort.Slice(skuIDs, func(i, j int) bool { return skuIDs[i] < skuIDs[j] })

	batch := &BatchResult{BatchID: uuid.NewString()}
	for _, skuID := range skuIDs {
		dep := departure[skuID]
		arr := arrival[skuID]
		delta := dep - arr
		if delta < 0 {
			delta = -delta
		}

		severity := s.classify(delta)
		switch severity {
		case models.SeverityAlert:
			batch.Alerts++
		case models.SeverityCritical:
			batch.Criticals++
		}

		batch.Comparisons = append(batch.Comparisons, models.Comparison{
			PalletID:     palletID,
			SkuID:        skuID,
			BatchID:      batch.BatchID,
			DepartureQty: dep,
			ArrivalQty:   arr,
			Delta:        delta,
			Severity:     severity,
		})
	}

	if len(batch.Comparisons) == 0 {
		return nil, errs.Validation("nothing to reconcile: no departure items and no arrival counts")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&batch.Comparisons).Error; err != nil {
			return err
		}
		return s.rec.Record(tx, audit.ActionComparisonRun, audit.EntityPallet, palletID, actorID,
			map[string]interface{}{
				"batchId":   batch.BatchID,
				"lines":     len(batch.Comparisons),
				"alerts":    batch.Alerts,
				"criticals": batch.Criticals,
			})
	})
	if err != nil {
		return nil, err
	}

	if batch.Criticals > 0 && s.alert != nil {
		go s.alert(palletID, batch.BatchID, batch.Criticals)
	}
	return batch, nil
}

// AnnotateComparison attaches the explanation for a line. ALERT and CRITICAL
// lines cannot be annotated without a reason; the quantities themselves stay
// immutable.
func (s *Service) AnnotateComparison(comparisonID uint, reason string, evidence []string, actorID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var comparison models.Comparison
		if err := tx.Where("id = ?", comparisonID).First(&comparison).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.NotFound("comparison not found")
			}
			return err
		}

		if comparison.Severity != models.SeverityOk && strings.TrimSpace(reason) == "" {
			return errs.ReasonRequired("flagged comparisons must carry a reason")
		}

		updates := map[string]interface{}{"reason": reason}
		if len(evidence) > 0 {
			encoded, err := json.Marshal(evidence)
			if err != nil {
				return err
			}
			updates["evidence"] = datatypes.JSON(encoded)
		}
		if err := tx.Model(&models.Comparison{}).Where("id = ?", comparisonID).Updates(updates).Error; err != nil {
			return err
		}

		return s.rec.Record(tx, audit.ActionComparisonNoted, audit.EntityComparison, comparisonID, actorID,
			map[string]interface{}{"severity": comparison.Severity, "evidence": len(evidence)})
	})
}

// ListByPallet returns every comparison line for a pallet, newest batch
// first.
func (s *Service) ListByPallet(palletID uint) ([]models.Comparison, error) {
	var comparisons []models.Comparison
	err := s.db.Where("pallet_id = ?", palletID).
		Order("created_at DESC, sku_id").
		Find(&comparisons).Error
	return comparisons, err
}

// ListDiscrepancies returns flagged lines, optionally narrowed to one
// severity.
func (s *Service) ListDiscrepancies(severity models.Severity, limit, offset int) ([]models.Comparison, int64, error) {
	query := s.db.Model(&models.Comparison{})
	if severity != "" {
		query = query.Where("severity = ?", severity)
	} else {
		query = query.Where("severity <> ?", models.SeverityOk)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 20
	}

	var comparisons []models.Comparison
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&comparisons).Error
	return comparisons, total, err
}

// GetReceipt returns the receipt for a pallet.
func (s *Service) GetReceipt(palletID uint) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := s.db.Where("pallet_id = ?", palletID).First(&receipt).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.NotFound("no receipt for this pallet")
		}
		return nil, err
	}
	return &receipt, nil
}

func (s *Service) classify(delta int) models.Severity {
	switch {
	case delta < s.rules.DeltaAlert:
		return models.SeverityOk
	case delta < s.rules.DeltaCritical:
		return models.SeverityAlert
	default:
		return models.SeverityCritical
	}
}
