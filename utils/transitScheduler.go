package utils

import (
	"log"
	"time"

	"palletrack/config"
	"palletrack/database"
	"palletrack/models"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[TRANSIT-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// processStaleTransits flags manifests that have been in transit past the
// configured window.
func processStaleTransits() {
	db := database.Database.Db
	cutoff := time.Now().Add(-time.Duration(config.AppConfig.Rules.StaleTransitHours) * time.Hour)

	var manifests []models.Manifest
	if err := db.Where("status = ? AND departed_at IS NOT NULL AND departed_at <= ?",
		models.ManifestInTransit, cutoff).Find(&manifests).Error; err != nil {
		logScheduler("Error fetching in-transit manifests: " + err.Error())
		return
	}

	for _, manifest := range manifests {
		hours := time.Since(*manifest.DepartedAt).Hours()
		logScheduler("Manifest " + manifest.Code + " overdue in transit")
		SendStaleTransitEmail(manifest.Code, hours)
	}

	if len(manifests) > 0 {
		logScheduler("Stale transit check flagged manifests")
	}
}

// processPoolWatermark logs pool utilization and warns when the pool runs
// low on free tags.
func processPoolWatermark() {
	db := database.Database.Db

	var total, free int64
	if err := db.Model(&models.QrCode{}).Count(&total).Error; err != nil {
		logScheduler("Error counting qr codes: " + err.Error())
		return
	}
	if total == 0 {
		return
	}
	if err := db.Model(&models.QrCode{}).Where("status = ?", models.QrFree).Count(&free).Error; err != nil {
		logScheduler("Error counting free qr codes: " + err.Error())
		return
	}

	utilization := float64(total-free) / float64(total) * 100
	logScheduler("QR pool utilization checked")
	if utilization > 90 {
		log.Printf("[TRANSIT-SCHEDULER] Warning: QR pool utilization at %.1f%%, provision more tags", utilization)
	}
}

// StartStaleTransitWatch runs hourly
func StartStaleTransitWatch(c *cron.Cron) {
	c.AddFunc("0 * * * *", func() {
		processStaleTransits()
	})
	logScheduler("Stale transit watch started - runs hourly")
}

// StartPoolWatermark runs daily at 06:00
func StartPoolWatermark(c *cron.Cron) {
	c.AddFunc("0 6 * * *", func() {
		processPoolWatermark()
	})
	logScheduler("Pool watermark check started - runs daily at 06:00")
}

// InitializeWarehouseSchedulers initializes all background jobs
func InitializeWarehouseSchedulers() *cron.Cron {
	logScheduler("Initializing warehouse schedulers...")

	c := cron.New()

	StartStaleTransitWatch(c)
	StartPoolWatermark(c)

	c.Start()

	logScheduler("All warehouse schedulers initialized successfully")
	return c
}
