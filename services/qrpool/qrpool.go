// Package qrpool manages the pool of pre-provisioned scannable tags. Tags
// are a scarce printed resource: a code is bound to at most one pallet at a
// time and every deleted open pallet returns its tag for reuse.
package qrpool

import (
	"errors"
	"fmt"

	"palletrack/models"
	"palletrack/services/audit"
	"palletrack/services/errs"

	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	rec *audit.Recorder
}

func New(db *gorm.DB, rec *audit.Recorder) *Service {
	return &Service{db: db, rec: rec}
}

// PoolStats is the read-only pool rollup.
type PoolStats struct {
	Total       int64   `json:"total"`
	Free        int64   `json:"free"`
	Bound       int64   `json:"bound"`
	Utilization float64 `json:"utilization"` // percent bound
}

// Provision bulk-creates free codes with sequential numbering, e.g.
// Provision("WH1-", 100, 3) creates WH1-000100..WH1-000102.
func (s *Service) Provision(prefix string, start, count int, userID uint) ([]models.QrCode, error) {
	if count <= 0 {
		return nil, errs.Validation("count must be greater than 0")
	}

	codes := make([]models.QrCode, 0, count)
	values := make([]string, 0, count)
	for i := 0; i < count; i++ {
		code := fmt.Sprintf("%s%06d", prefix, start+i)
		codes = append(codes, models.QrCode{Code: code, Status: models.QrFree})
		values = append(values, code)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.QrCode{}).Where("code IN ?", values).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errs.AlreadyExists("one or more generated codes already exist in the pool")
		}

		// The count check is advisory; the unique index on code is the
		// real gate when two provisions race.
		if err := tx.Create(&codes).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.AlreadyExists("one or more generated codes already exist in the pool")
			}
			return err
		}

		return s.rec.Record(tx, audit.ActionQrProvisioned, audit.EntityQrCode, codes[0].ID, userID,
			map[string]interface{}{"prefix": prefix, "start": start, "count": count})
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// Bind claims a free code for a pallet. Runs in the caller's transaction so
// the pallet write and the pool write commit together. The printable payload
// is stamped at bind time.
func (s *Service) Bind(tx *gorm.DB, code string, palletID, contractID uint) error {
	var qr models.QrCode
	if err := tx.Where("code = ?", code).First(&qr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.NotFound("qr code not found")
		}
		return err
	}

	if qr.Status != models.QrFree {
		return errs.Conflict("qr code is already bound to a pallet")
	}

	payload := fmt.Sprintf("PALLET:%d;CONTRACT:%d", palletID, contractID)
	result := tx.Model(&models.QrCode{}).
		Where("id = ? AND status = ?", qr.ID, models.QrFree).
		Updates(map[string]interface{}{
			"status":    models.QrBound,
			"pallet_id": palletID,
			"payload":   payload,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Another caller claimed the code between read and write.
		return errs.Conflict("qr code is already bound to a pallet")
	}
	return nil
}

// BindFirstFree claims the lowest free code for a pallet and returns it.
func (s *Service) BindFirstFree(tx *gorm.DB, palletID, contractID uint) (string, error) {
	var qr models.QrCode
	err := tx.Where("status = ?", models.QrFree).Order("code").First(&qr).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", errs.NotFound("no free qr codes in the pool")
		}
		return "", err
	}

	if err := s.Bind(tx, qr.Code, palletID, contractID); err != nil {
		return "", err
	}
	return qr.Code, nil
}

// Release returns a code to the pool. Idempotent: releasing an already-free
// code reports released=false without error, so deletion retries never fail.
func (s *Service) Release(tx *gorm.DB, code string) (bool, error) {
	var qr models.QrCode
	if err := tx.Where("code = ?", code).First(&qr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, errs.NotFound("qr code not found")
		}
		return false, err
	}

	if qr.Status == models.QrFree {
		return false, nil
	}

	result := tx.Model(&models.QrCode{}).
		Where("id = ? AND status = ?", qr.ID, models.QrBound).
		Updates(map[string]interface{}{
			"status":    models.QrFree,
			"pallet_id": nil,
			"payload":   "",
		})
	if result.Error != nil {
		return false, result.Error
	}
	// Racing releases are both fine; only one actually flipped the row.
	return result.RowsAffected > 0, nil
}

// AdminRelease frees a code outside the pallet-delete path (damaged or
// reprinted tags). Audited only when the state actually changed.
func (s *Service) AdminRelease(code string, userID uint) (bool, error) {
	released := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		released, err = s.Release(tx, code)
		if err != nil {
			return err
		}
		if !released {
			return nil
		}

		var qr models.QrCode
		if err := tx.Where("code = ?", code).First(&qr).Error; err != nil {
			return err
		}
		return s.rec.Record(tx, audit.ActionQrReleased, audit.EntityQrCode, qr.ID, userID,
			map[string]interface{}{"code": code})
	})
	return released, err
}

// FindByPallet returns the code currently bound to a pallet, if any.
func (s *Service) FindByPallet(tx *gorm.DB, palletID uint) (*models.QrCode, error) {
	var qr models.QrCode
	err := tx.Where("pallet_id = ? AND status = ?", palletID, models.QrBound).First(&qr).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &qr, nil
}

// Stats returns total/free/bound counts and utilization percentage.
func (s *Service) Stats() (*PoolStats, error) {
	stats := &PoolStats{}
	if err := s.db.Model(&models.QrCode{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.QrCode{}).Where("status = ?", models.QrFree).Count(&stats.Free).Error; err != nil {
		return nil, err
	}
	stats.Bound = stats.Total - stats.Free
	if stats.Total > 0 {
		stats.Utilization = float64(stats.Bound) / float64(stats.Total) * 100
	}
	return stats, nil
}
