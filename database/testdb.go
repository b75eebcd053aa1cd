package database

import (
	"palletrack/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTest opens an isolated in-memory sqlite database with the full schema.
// A single connection keeps the in-memory database alive for the whole test.
func OpenTest() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Contract{},
		&models.Location{},
		&models.SKU{},
		&models.QrCode{},
		&models.Pallet{},
		&models.PalletItem{},
		&models.Manifest{},
		&models.ManifestPallet{},
		&models.Receipt{},
		&models.Comparison{},
		&models.AuditLog{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
