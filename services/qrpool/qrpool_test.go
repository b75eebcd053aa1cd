package qrpool

import (
	"testing"

	"palletrack/database"
	"palletrack/models"
	"palletrack/services/audit"
	"palletrack/services/errs"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := database.OpenTest()
	require.NoError(t, err)
	return New(db, audit.NewRecorder(db)), db
}

func countAudits(t *testing.T, db *gorm.DB, action string) int64 {
	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}

func TestProvisionCreatesSequentialCodes(t *testing.T) {
	svc, db := newTestService(t)

	codes, err := svc.Provision("WH1-", 100, 3, 1)
	require.NoError(t, err)
	require.Len(t, codes, 3)
	require.Equal(t, "WH1-000100", codes[0].Code)
	require.Equal(t, "WH1-000102", codes[2].Code)

	var stored []models.QrCode
	require.NoError(t, db.Order("code").Find(&stored).Error)
	require.Len(t, stored, 3)
	for _, qr := range stored {
		require.Equal(t, models.QrFree, qr.Status)
		require.Nil(t, qr.PalletID)
	}
	require.Equal(t, int64(1), countAudits(t, db, audit.ActionQrProvisioned))
}

func TestProvisionRejectsOverlappingRange(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Provision("WH1-", 100, 3, 1)
	require.NoError(t, err)

	_, err = svc.Provision("WH1-", 102, 3, 1)
	require.True(t, errs.IsKind(err, errs.KindAlreadyExists))

	var total int64
	require.NoError(t, db.Model(&models.QrCode{}).Count(&total).Error)
	require.Equal(t, int64(3), total)
	require.Equal(t, int64(1), countAudits(t, db, audit.ActionQrProvisioned))
}

func TestProvisionMapsUniqueViolationToAlreadyExists(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Provision("WH1-", 100, 1, 1)
	require.NoError(t, err)

	// A soft-deleted row slips past the count check but still occupies
	// the unique index, same as a racing provision committing first.
	require.NoError(t, db.Delete(&models.QrCode{}, "code = ?", "WH1-000100").Error)

	_, err = svc.Provision("WH1-", 100, 1, 1)
	require.True(t, errs.IsKind(err, errs.KindAlreadyExists))
	require.Equal(t, int64(1), countAudits(t, db, audit.ActionQrProvisioned))
}

func TestProvisionRejectsZeroCount(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Provision("WH1-", 1, 0, 1)
	require.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestBindStampsPayloadAndRejectsDoubleBind(t *testing.T) {
	svc, db := newTestService(t)
	_, err := svc.Provision("QR-", 1, 2, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Bind(db, "QR-000001", 42, 7))

	var qr models.QrCode
	require.NoError(t, db.Where("code = ?", "QR-000001").First(&qr).Error)
	require.Equal(t, models.QrBound, qr.Status)
	require.NotNil(t, qr.PalletID)
	require.Equal(t, uint(42), *qr.PalletID)
	require.Equal(t, "PALLET:42;CONTRACT:7", qr.Payload)

	err = svc.Bind(db, "QR-000001", 99, 7)
	require.True(t, errs.IsKind(err, errs.KindConflict))
}

func TestBindUnknownCode(t *testing.T) {
	svc, db := newTestService(t)

	err := svc.Bind(db, "QR-MISSING", 1, 1)
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestBindFirstFreeClaimsLowestCode(t *testing.T) {
	svc, db := newTestService(t)
	_, err := svc.Provision("QR-", 1, 3, 1)
	require.NoError(t, err)

	code, err := svc.BindFirstFree(db, 10, 1)
	require.NoError(t, err)
	require.Equal(t, "QR-000001", code)

	code, err = svc.BindFirstFree(db, 11, 1)
	require.NoError(t, err)
	require.Equal(t, "QR-000002", code)
}

func TestBindFirstFreeEmptyPool(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.BindFirstFree(db, 1, 1)
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestReleaseIsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	_, err := svc.Provision("QR-", 1, 1, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Bind(db, "QR-000001", 5, 1))

	released, err := svc.Release(db, "QR-000001")
	require.NoError(t, err)
	require.True(t, released)

	released, err = svc.Release(db, "QR-000001")
	require.NoError(t, err)
	require.False(t, released)

	var qr models.QrCode
	require.NoError(t, db.Where("code = ?", "QR-000001").First(&qr).Error)
	require.Equal(t, models.QrFree, qr.Status)
	require.Nil(t, qr.PalletID)
	require.Empty(t, qr.Payload)
}

func TestReleasedCodeCanBeRebound(t *testing.T) {
	svc, db := newTestService(t)
	_, err := svc.Provision("QR-", 1, 1, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Bind(db, "QR-000001", 5, 1))
	_, err = svc.Release(db, "QR-000001")
	require.NoError(t, err)
	require.NoError(t, svc.Bind(db, "QR-000001", 6, 2))

	var qr models.QrCode
	require.NoError(t, db.Where("code = ?", "QR-000001").First(&qr).Error)
	require.Equal(t, uint(6), *qr.PalletID)
	require.Equal(t, "PALLET:6;CONTRACT:2", qr.Payload)
}

func TestAdminReleaseAuditsOnlyWhenReleased(t *testing.T) {
	svc, db := newTestService(t)
	_, err := svc.Provision("QR-", 1, 1, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Bind(db, "QR-000001", 5, 1))

	released, err := svc.AdminRelease("QR-000001", 2)
	require.NoError(t, err)
	require.True(t, released)
	require.Equal(t, int64(1), countAudits(t, db, audit.ActionQrReleased))

	released, err = svc.AdminRelease("QR-000001", 2)
	require.NoError(t, err)
	require.False(t, released)
	require.Equal(t, int64(1), countAudits(t, db, audit.ActionQrReleased))
}

func TestStats(t *testing.T) {
	svc, db := newTestService(t)
	_, err := svc.Provision("QR-", 1, 4, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Bind(db, "QR-000001", 1, 1))

	stats, err := svc.Stats()
	require.NoError(t, err)
	require.Equal(t, int64(4), stats.Total)
	require.Equal(t, int64(3), stats.Free)
	require.Equal(t, int64(1), stats.Bound)
	require.InDelta(t, 25.0, stats.Utilization, 0.001)
}
