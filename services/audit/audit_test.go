package audit

import (
	"errors"
	"testing"
	"time"

	"palletrack/database"
	"palletrack/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRecorder(t *testing.T) (*Recorder, *gorm.DB) {
	db, err := database.OpenTest()
	require.NoError(t, err)
	return NewRecorder(db), db
}

func TestRecordPersistsDetail(t *testing.T) {
	rec, db := newRecorder(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		return rec.Record(tx, ActionPalletCreated, EntityPallet, 7, 3,
			map[string]interface{}{"contractId": 1})
	})
	require.NoError(t, err)

	var entry models.AuditLog
	require.NoError(t, db.First(&entry).Error)
	require.Equal(t, ActionPalletCreated, entry.Action)
	require.Equal(t, EntityPallet, entry.EntityType)
	require.Equal(t, uint(7), entry.EntityID)
	require.Equal(t, uint(3), entry.UserID)
	require.Contains(t, string(entry.Detail), "contractId")
}

func TestRecordRollsBackWithTransaction(t *testing.T) {
	rec, db := newRecorder(t)

	sentinel := errors.New("mutation failed")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := rec.Record(tx, ActionPalletSealed, EntityPallet, 1, 1, nil); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestQueries(t *testing.T) {
	rec, db := newRecorder(t)

	seed := []struct {
		action     string
		entityType string
		entityID   uint
		userID     uint
	}{
		{ActionPalletCreated, EntityPallet, 1, 10},
		{ActionPalletSealed, EntityPallet, 1, 10},
		{ActionManifestCreated, EntityManifest, 2, 11},
		{ActionPalletCreated, EntityPallet, 3, 11},
	}
	for _, s := range seed {
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			return rec.Record(tx, s.action, s.entityType, s.entityID, s.userID, nil)
		}))
	}

	entries, total, err := rec.ByEntity(EntityPallet, 1, 20, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, entries, 2)

	entries, total, err = rec.ByUser(11, 20, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	for _, entry := range entries {
		require.Equal(t, uint(11), entry.UserID)
	}

	entries, total, err = rec.ByAction(ActionPalletCreated, 20, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	for _, entry := range entries {
		require.Equal(t, ActionPalletCreated, entry.Action)
	}

	entries, total, err = rec.ByTimeRange(time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 20, 0)
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
	require.Len(t, entries, 4)

	_, total, err = rec.ByTimeRange(time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour), 20, 0)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestPagination(t *testing.T) {
	rec, db := newRecorder(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			return rec.Record(tx, ActionItemAdded, EntityPallet, 1, 1, nil)
		}))
	}

	entries, total, err := rec.ByEntity(EntityPallet, 1, 2, 0)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, entries, 2)

	entries, _, err = rec.ByEntity(EntityPallet, 1, 2, 4)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
