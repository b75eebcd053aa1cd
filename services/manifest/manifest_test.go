package manifest

import (
	"strings"
	"testing"

	"palletrack/database"
	"palletrack/models"
	"palletrack/services/audit"
	"palletrack/services/errs"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	contract models.Contract
	origin   models.Location
	dest     models.Location
}

func newFixture(t *testing.T) *fixture {
	db, err := database.OpenTest()
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		svc:      New(db, audit.NewRecorder(db)),
		contract: models.Contract{Code: "CT-200", ClientName: "Northline Retail"},
		origin:   models.Location{Code: "WH-1", Name: "Central Warehouse", Kind: models.LocationWarehouse},
		dest:     models.Location{Code: "ST-9", Name: "Store Nine", Kind: models.LocationStore},
	}
	require.NoError(t, db.Create(&f.contract).Error)
	require.NoError(t, db.Create(&f.origin).Error)
	require.NoError(t, db.Create(&f.dest).Error)
	return f
}

func (f *fixture) sealedPallet(t *testing.T) *models.Pallet {
	pallet := &models.Pallet{
		ContractID:       f.contract.ID,
		OriginLocationID: f.origin.ID,
		Status:           models.PalletSealed,
	}
	require.NoError(t, f.db.Create(pallet).Error)
	return pallet
}

func (f *fixture) draftManifest(t *testing.T) *models.Manifest {
	manifest, err := f.svc.Create(f.contract.ID, f.origin.ID, f.dest.ID, 1)
	require.NoError(t, err)
	return manifest
}

func (f *fixture) countAudits(t *testing.T, action string) int64 {
	var count int64
	require.NoError(t, f.db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}

func TestCreateGeneratesUniqueCode(t *testing.T) {
	f := newFixture(t)

	manifest := f.draftManifest(t)
	require.Equal(t, models.ManifestDraft, manifest.Status)
	require.True(t, strings.HasPrefix(manifest.Code, "MF-"))

	second := f.draftManifest(t)
	require.NotEqual(t, manifest.Code, second.Code)
	require.Equal(t, int64(2), f.countAudits(t, audit.ActionManifestCreated))
}

func TestCreateUnknownLocation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.contract.ID, f.origin.ID, 999, 1)
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestAttachSealedPallet(t *testing.T) {
	f := newFixture(t)
	manifest := f.draftManifest(t)
	pallet := f.sealedPallet(t)

	require.NoError(t, f.svc.AttachPallet(manifest.ID, pallet.ID, 1))

	var stored models.Pallet
	require.NoError(t, f.db.First(&stored, pallet.ID).Error)
	require.NotNil(t, stored.ManifestID)
	require.Equal(t, manifest.ID, *stored.ManifestID)
	require.NotNil(t, stored.DestLocationID)
	require.Equal(t, f.dest.ID, *stored.DestLocationID)

	var attachments int64
	require.NoError(t, f.db.Model(&models.ManifestPallet{}).
		Where("manifest_id = ?", manifest.ID).Count(&attachments).Error)
	require.Equal(t, int64(1), attachments)
}

func TestAttachRejectsUnsealedPallet(t *testing.T) {
	f := newFixture(t)
	manifest := f.draftManifest(t)

	open := &models.Pallet{
		ContractID:       f.contract.ID,
		OriginLocationID: f.origin.ID,
		Status:           models.PalletOpen,
	}
	require.NoError(t, f.db.Create(open).Error)

	err := f.svc.AttachPallet(manifest.ID, open.ID, 1)
	require.True(t, errs.IsKind(err, errs.KindInvalidState))
}

func TestAttachEnforcesSingleMembership(t *testing.T) {
	f := newFixture(t)
	first := f.draftManifest(t)
	second := f.draftManifest(t)
	pallet := f.sealedPallet(t)

	require.NoError(t, f.svc.AttachPallet(first.ID, pallet.ID, 1))

	err := f.svc.AttachPallet(second.ID, pallet.ID, 1)
	require.True(t, errs.IsKind(err, errs.KindConflict))
}

func TestAttachRejectsContractMismatch(t *testing.T) {
	f := newFixture(t)
	manifest := f.draftManifest(t)

	other := models.Contract{Code: "CT-300", ClientName: "Other Client"}
	require.NoError(t, f.db.Create(&other).Error)
	pallet := &models.Pallet{
		ContractID:       other.ID,
		OriginLocationID: f.origin.ID,
		Status:           models.PalletSealed,
	}
	require.NoError(t, f.db.Create(pallet).Error)

	err := f.svc.AttachPallet(manifest.ID, pallet.ID, 1)
	require.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestAttachRejectsOriginMismatch(t *testing.T) {
	f := newFixture(t)
	manifest := f.draftManifest(t)

	pallet := &models.Pallet{
		ContractID:       f.contract.ID,
		OriginLocationID: f.dest.ID,
		Status:           models.PalletSealed,
	}
	require.NoError(t, f.db.Create(pallet).Error)

	err := f.svc.AttachPallet(manifest.ID, pallet.ID, 1)
	require.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestDetachAllowsReattach(t *testing.T) {
	f := newFixture(t)
	manifest := f.draftManifest(t)
	pallet := f.sealedPallet(t)

	require.NoError(t, f.svc.AttachPallet(manifest.ID, pallet.ID, 1))
	require.NoError(t, f.svc.DetachPallet(manifest.ID, pallet.ID, 1))

	var stored models.Pallet
	require.NoError(t, f.db.First(&stored, pallet.ID).Error)
	require.Nil(t, stored.ManifestID)
	require.Nil(t, stored.DestLocationID)

	require.NoError(t, f.svc.AttachPallet(manifest.ID, pallet.ID, 1))
}

func TestDetachUnattachedPallet(t *testing.T) {
	f := newFixture(t)
	manifest := f.draftManifest(t)
	pallet := f.sealedPallet(t)

	err := f.svc.DetachPallet(manifest.ID, pallet.ID, 1)
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestMarkLoadedMovesAllPallets(t *testing.T) {
	f := newFixture(t)
	manifest := f.draftManifest(t)
	first := f.sealedPallet(t)
	second := f.sealedPallet(t)
	require.NoError(t, f.svc.AttachPallet(manifest.ID, first.ID, 1))
	require.NoError(t, f.svc.AttachPallet(manifest.ID, second.ID, 1))

	require.NoError(t, f.svc.MarkLoaded(manifest.ID, 3))

	stored, err := f.svc.Get(manifest.ID)
	require.NoError(t, err)
	require.Equal(t, models.ManifestLoaded, stored.Status)
	require.NotNil(t, stored.LoadedBy)
	require.Equal(t, uint(3), *stored.LoadedBy)
	require.NotNil(t, stored.LoadedAt)

	for _, id := range []uint{first.ID, second.ID} {
		var pallet models.Pallet
		require.NoError(t, f.db.First(&pallet, id).Error)
		require.Equal(t, models.PalletInTransit, pallet.Status)
	}
	require.Equal(t, int64(1), f.countAudits(t, audit.ActionManifestLoaded))
}

func TestMarkLoadedRollsBackWhenAnyPalletMoved(t *testing.T) {
	f := newFixture(t)
	manifest := f.draftManifest(t)
	first := f.sealedPallet(t)
	second := f.sealedPallet(t)
	require.NoError(t, f.svc.AttachPallet(manifest.ID, first.ID, 1))
	require.NoError(t, f.svc.AttachPallet(manifest.ID, second.ID, 1))

	// Simulate a concurrent actor pulling one pallet out of SEALED.
	require.NoError(t, f.db.Model(&models.Pallet{}).Where("id = ?", second.ID).
		Update("status", models.PalletOpen).Error)

	err := f.svc.MarkLoaded(manifest.ID, 1)
	require.True(t, errs.IsKind(err, errs.KindConflict))

	stored, err := f.svc.Get(manifest.ID)
	require.NoError(t, err)
	require.Equal(t, models.ManifestDraft, stored.Status)
	require.Nil(t, stored.LoadedAt)

	var untouched models.Pallet
	require.NoError(t, f.db.First(&untouched, first.ID).Error)
	require.Equal(t, models.PalletSealed, untouched.Status)
	require.Zero(t, f.countAudits(t, audit.ActionManifestLoaded))
}

func TestMarkLoadedRejectsEmptyManifest(t *testing.T) {
	f := newFixture(t)
	manifest := f.draftManifest(t)

	err := f.svc.MarkLoaded(manifest.ID, 1)
	require.True(t, errs.IsKind(err, errs.KindInvalidState))
}

func TestTransitionsStampTimestamps(t *testing.T) {
	f := newFixture(t)
	manifest := f.draftManifest(t)
	pallet := f.sealedPallet(t)
	require.NoError(t, f.svc.AttachPallet(manifest.ID, pallet.ID, 1))
	require.NoError(t, f.svc.MarkLoaded(manifest.ID, 1))

	require.NoError(t, f.svc.MarkInTransit(manifest.ID, 1))
	stored, err := f.svc.Get(manifest.ID)
	require.NoError(t, err)
	require.Equal(t, models.ManifestInTransit, stored.Status)
	require.NotNil(t, stored.DepartedAt)

	require.NoError(t, f.svc.MarkDelivered(manifest.ID, 1))
	stored, err = f.svc.Get(manifest.ID)
	require.NoError(t, err)
	require.Equal(t, models.ManifestDelivered, stored.Status)
	require.NotNil(t, stored.DeliveredAt)
}

func TestTransitionsRejectWrongOrder(t *testing.T) {
	f := newFixture(t)
	manifest := f.draftManifest(t)

	err := f.svc.MarkInTransit(manifest.ID, 1)
	require.True(t, errs.IsKind(err, errs.KindInvalidState))

	err = f.svc.MarkDelivered(manifest.ID, 1)
	require.True(t, errs.IsKind(err, errs.KindInvalidState))
}

func TestGetStats(t *testing.T) {
	f := newFixture(t)
	manifest := f.draftManifest(t)
	require.NoError(t, f.svc.AttachPallet(manifest.ID, f.sealedPallet(t).ID, 1))
	require.NoError(t, f.svc.AttachPallet(manifest.ID, f.sealedPallet(t).ID, 1))

	stats, err := f.svc.GetStats(manifest.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.PalletCount)
}
