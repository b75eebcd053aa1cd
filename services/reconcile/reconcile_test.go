package reconcile

import (
	"testing"
	"time"

	"palletrack/config"
	"palletrack/database"
	"palletrack/models"
	"palletrack/services/audit"
	"palletrack/services/errs"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	svc  *Service
	dest models.Location
}

func newFixture(t *testing.T, alert AlertFunc) *fixture {
	db, err := database.OpenTest()
	require.NoError(t, err)

	f := &fixture{
		db:   db,
		svc:  New(db, config.DefaultRules(), audit.NewRecorder(db), alert),
		dest: models.Location{Code: "ST-9", Name: "Store Nine", Kind: models.LocationStore},
	}
	require.NoError(t, db.Create(&f.dest).Error)
	return f
}

func intp(v int) *int { return &v }

// palletWithItems seeds a pallet in the given status whose departure
// quantities are the given per-SKU counts. SKU ids are 1-based positions.
func (f *fixture) palletWithItems(t *testing.T, status models.PalletStatus, quantities ...int) *models.Pallet {
	pallet := &models.Pallet{ContractID: 1, OriginLocationID: 1, Status: status}
	require.NoError(t, f.db.Create(pallet).Error)
	for i, qty := range quantities {
		item := models.PalletItem{
			PalletID:   pallet.ID,
			SkuID:      uint(i + 1),
			AiQuantity: intp(qty),
		}
		require.NoError(t, f.db.Create(&item).Error)
	}
	return pallet
}

func (f *fixture) countAudits(t *testing.T, action string) int64 {
	var count int64
	require.NoError(t, f.db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}

func TestReceivePallet(t *testing.T) {
	f := newFixture(t, nil)
	pallet := f.palletWithItems(t, models.PalletInTransit, 10)

	receipt, err := f.svc.ReceivePallet(ReceiveInput{
		PalletID:   pallet.ID,
		LocationID: f.dest.ID,
		ReceiverID: 4,
		Photos:     []string{"blob://arrival.jpg"},
		Notes:      "left door dock",
	})
	require.NoError(t, err)
	require.Equal(t, pallet.ID, receipt.PalletID)

	var stored models.Pallet
	require.NoError(t, f.db.First(&stored, pallet.ID).Error)
	require.Equal(t, models.PalletReceived, stored.Status)
	require.Equal(t, int64(1), f.countAudits(t, audit.ActionPalletReceived))

	// Already RECEIVED, so a second receive fails the state guard.
	_, err = f.svc.ReceivePallet(ReceiveInput{PalletID: pallet.ID, LocationID: f.dest.ID, ReceiverID: 4})
	require.True(t, errs.IsKind(err, errs.KindInvalidState))
	require.Equal(t, int64(1), f.countAudits(t, audit.ActionPalletReceived))
}

func TestReceiveRejectsWrongState(t *testing.T) {
	f := newFixture(t, nil)
	pallet := f.palletWithItems(t, models.PalletSealed, 10)

	_, err := f.svc.ReceivePallet(ReceiveInput{PalletID: pallet.ID, LocationID: f.dest.ID, ReceiverID: 1})
	require.True(t, errs.IsKind(err, errs.KindInvalidState))
}

func TestReceiveUnknownLocation(t *testing.T) {
	f := newFixture(t, nil)
	pallet := f.palletWithItems(t, models.PalletInTransit, 10)

	_, err := f.svc.ReceivePallet(ReceiveInput{PalletID: pallet.ID, LocationID: 999, ReceiverID: 1})
	require.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestCompareClassifiesSeverity(t *testing.T) {
	f := newFixture(t, nil)
	// SKUs 1..3 depart with 10 each; SKU 4 departs with nothing.
	pallet := f.palletWithItems(t, models.PalletReceived, 10, 10, 10)

	batch, err := f.svc.CompareOriginDestination(pallet.ID, []ArrivalCount{
		{SkuID: 1, Quantity: 10}, // delta 0 -> OK
		{SkuID: 2, Quantity: 8},  // delta 2 -> ALERT
		{SkuID: 3, Quantity: 4},  // delta 6 -> CRITICAL
		{SkuID: 4, Quantity: 3},  // arrival-only, delta 3 -> ALERT
	}, 1)
	require.NoError(t, err)
	require.Len(t, batch.Comparisons, 4)
	require.Equal(t, 2, batch.Alerts)
	require.Equal(t, 1, batch.Criticals)

	bySku := make(map[uint]models.Comparison)
	for _, line := range batch.Comparisons {
		require.Equal(t, batch.BatchID, line.BatchID)
		bySku[line.SkuID] = line
	}
	require.Equal(t, models.SeverityOk, bySku[1].Severity)
	require.Equal(t, models.SeverityAlert, bySku[2].Severity)
	require.Equal(t, models.SeverityCritical, bySku[3].Severity)
	require.Equal(t, models.SeverityAlert, bySku[4].Severity)
	require.Equal(t, 0, bySku[4].DepartureQty)
	require.Equal(t, 3, bySku[4].ArrivalQty)
	require.Equal(t, int64(1), f.countAudits(t, audit.ActionComparisonRun))
}

func TestCompareMissingArrivalCountsAsZero(t *testing.T) {
	f := newFixture(t, nil)
	pallet := f.palletWithItems(t, models.PalletReceived, 6)

	batch, err := f.svc.CompareOriginDestination(pallet.ID, nil, 1)
	require.NoError(t, err)
	require.Len(t, batch.Comparisons, 1)
	require.Equal(t, 6, batch.Comparisons[0].Delta)
	require.Equal(t, models.SeverityCritical, batch.Comparisons[0].Severity)
}

func TestComparePrefersAdjustedQuantity(t *testing.T) {
	f := newFixture(t, nil)
	pallet := f.palletWithItems(t, models.PalletReceived, 10)
	require.NoError(t, f.db.Model(&models.PalletItem{}).
		Where("pallet_id = ?", pallet.ID).
		Update("adjusted_quantity", 7).Error)

	batch, err := f.svc.CompareOriginDestination(pallet.ID, []ArrivalCount{{SkuID: 1, Quantity: 7}}, 1)
	require.NoError(t, err)
	require.Equal(t, 7, batch.Comparisons[0].DepartureQty)
	require.Equal(t, models.SeverityOk, batch.Comparisons[0].Severity)
}

func TestCompareRequiresReceivedState(t *testing.T) {
	f := newFixture(t, nil)
	pallet := f.palletWithItems(t, models.PalletInTransit, 10)

	_, err := f.svc.CompareOriginDestination(pallet.ID, []ArrivalCount{{SkuID: 1, Quantity: 10}}, 1)
	require.True(t, errs.IsKind(err, errs.KindInvalidState))
	require.Zero(t, f.countAudits(t, audit.ActionComparisonRun))
}

func TestCriticalBatchFiresAlert(t *testing.T) {
	alerted := make(chan string, 1)
	f := newFixture(t, func(palletID uint, batchID string, criticals int) {
		alerted <- batchID
	})
	pallet := f.palletWithItems(t, models.PalletReceived, 10)

	batch, err := f.svc.CompareOriginDestination(pallet.ID, []ArrivalCount{{SkuID: 1, Quantity: 2}}, 1)
	require.NoError(t, err)
	require.Equal(t, 1, batch.Criticals)

	select {
	case got := <-alerted:
		require.Equal(t, batch.BatchID, got)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a critical alert")
	}
}

func TestOkBatchDoesNotAlert(t *testing.T) {
	alerted := make(chan string, 1)
	f := newFixture(t, func(palletID uint, batchID string, criticals int) {
		alerted <- batchID
	})
	pallet := f.palletWithItems(t, models.PalletReceived, 10)

	_, err := f.svc.CompareOriginDestination(pallet.ID, []ArrivalCount{{SkuID: 1, Quantity: 10}}, 1)
	require.NoError(t, err)

	select {
	case <-alerted:
		t.Fatal("no alert expected for an all-OK batch")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAnnotateRequiresReasonForFlaggedLines(t *testing.T) {
	f := newFixture(t, nil)
	pallet := f.palletWithItems(t, models.PalletReceived, 10, 10)

	batch, err := f.svc.CompareOriginDestination(pallet.ID, []ArrivalCount{
		{SkuID: 1, Quantity: 10},
		{SkuID: 2, Quantity: 7},
	}, 1)
	require.NoError(t, err)

	var okLine, alertLine models.Comparison
	for _, line := range batch.Comparisons {
		if line.Severity == models.SeverityOk {
			okLine = line
		} else {
			alertLine = line
		}
	}

	err = f.svc.AnnotateComparison(alertLine.ID, "   ", nil, 1)
	require.True(t, errs.IsKind(err, errs.KindReasonRequired))

	require.NoError(t, f.svc.AnnotateComparison(alertLine.ID, "damaged in transit", []string{"blob://ev.jpg"}, 1))

	var stored models.Comparison
	require.NoError(t, f.db.First(&stored, alertLine.ID).Error)
	require.Equal(t, "damaged in transit", stored.Reason)
	require.NotEmpty(t, stored.Evidence)
	// Quantities stay immutable.
	require.Equal(t, alertLine.Delta, stored.Delta)

	// An OK line needs no reason.
	require.NoError(t, f.svc.AnnotateComparison(okLine.ID, "", nil, 1))
	require.Equal(t, int64(2), f.countAudits(t, audit.ActionComparisonNoted))
}

func TestListDiscrepanciesExcludesOkByDefault(t *testing.T) {
	f := newFixture(t, nil)
	pallet := f.palletWithItems(t, models.PalletReceived, 10, 10, 10)

	_, err := f.svc.CompareOriginDestination(pallet.ID, []ArrivalCount{
		{SkuID: 1, Quantity: 10},
		{SkuID: 2, Quantity: 8},
		{SkuID: 3, Quantity: 2},
	}, 1)
	require.NoError(t, err)

	flagged, total, err := f.svc.ListDiscrepancies("", 20, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	for _, line := range flagged {
		require.NotEqual(t, models.SeverityOk, line.Severity)
	}

	criticals, total, err := f.svc.ListDiscrepancies(models.SeverityCritical, 20, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, criticals, 1)
	require.Equal(t, uint(3), criticals[0].SkuID)
}

func TestGetReceipt(t *testing.T) {
	f := newFixture(t, nil)
	pallet := f.palletWithItems(t, models.PalletInTransit, 10)

	_, err := f.svc.GetReceipt(pallet.ID)
	require.True(t, errs.IsKind(err, errs.KindNotFound))

	_, err = f.svc.ReceivePallet(ReceiveInput{PalletID: pallet.ID, LocationID: f.dest.ID, ReceiverID: 2})
	require.NoError(t, err)

	receipt, err := f.svc.GetReceipt(pallet.ID)
	require.NoError(t, err)
	require.Equal(t, uint(2), receipt.ReceivedBy)
	require.Equal(t, f.dest.ID, receipt.LocationID)
}
