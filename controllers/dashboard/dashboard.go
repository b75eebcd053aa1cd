package dashboardController

import (
	"strconv"
	"time"

	"palletrack/database"
	"palletrack/middleware"
	"palletrack/models"
	"palletrack/services/audit"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
)

// Rollups are pure aggregation and safe to serve slightly stale.
var summaryCache = cache.New(60*time.Second, 5*time.Minute)

// GetSummary returns the operations dashboard rollup
func GetSummary(c *fiber.Ctx) error {
	if cached, found := summaryCache.Get("summary"); found {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched!", cached)
	}

	db := database.Database.Db

	palletsByStatus := map[string]int64{}
	for _, status := range []models.PalletStatus{
		models.PalletOpen, models.PalletSealed, models.PalletInTransit,
		models.PalletReceived, models.PalletFinalized,
	} {
		var count int64
		db.Model(&models.Pallet{}).Where("status = ?", status).Count(&count)
		palletsByStatus[string(status)] = count
	}

	var openManifests int64
	db.Model(&models.Manifest{}).
		Where("status IN ?", []models.ManifestStatus{models.ManifestDraft, models.ManifestLoaded, models.ManifestInTransit}).
		Count(&openManifests)

	var totalCodes, freeCodes int64
	db.Model(&models.QrCode{}).Count(&totalCodes)
	db.Model(&models.QrCode{}).Where("status = ?", models.QrFree).Count(&freeCodes)
	utilization := 0.0
	if totalCodes > 0 {
		utilization = float64(totalCodes-freeCodes) / float64(totalCodes) * 100
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	monthAgo := time.Now().AddDate(0, 0, -30)
	var alertsWeek, criticalsWeek, alertsMonth, criticalsMonth int64
	db.Model(&models.Comparison{}).Where("severity = ? AND created_at >= ?", models.SeverityAlert, weekAgo).Count(&alertsWeek)
	db.Model(&models.Comparison{}).Where("severity = ? AND created_at >= ?", models.SeverityCritical, weekAgo).Count(&criticalsWeek)
	db.Model(&models.Comparison{}).Where("severity = ? AND created_at >= ?", models.SeverityAlert, monthAgo).Count(&alertsMonth)
	db.Model(&models.Comparison{}).Where("severity = ? AND created_at >= ?", models.SeverityCritical, monthAgo).Count(&criticalsMonth)

	summary := fiber.Map{
		"pallets":       palletsByStatus,
		"openManifests": openManifests,
		"qrPool": fiber.Map{
			"total":       totalCodes,
			"free":        freeCodes,
			"utilization": utilization,
		},
		"discrepancies": fiber.Map{
			"last7Days":  fiber.Map{"alerts": alertsWeek, "criticals": criticalsWeek},
			"last30Days": fiber.Map{"alerts": alertsMonth, "criticals": criticalsMonth},
		},
	}

	summaryCache.Set("summary", summary, cache.DefaultExpiration)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched!", summary)
}

// GetAuditTrail queries the audit log by entity, user, action or time range
func GetAuditTrail(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	offset := (page - 1) * limit

	recorder := audit.NewRecorder(database.Database.Db)

	var (
		entries []models.AuditLog
		total   int64
		err     error
	)

	switch {
	case c.Query("entityType") != "" && c.Query("entityId") != "":
		entityId, convErr := strconv.Atoi(c.Query("entityId"))
		if convErr != nil || entityId <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid entityId!", nil)
		}
		entries, total, err = recorder.ByEntity(c.Query("entityType"), uint(entityId), limit, offset)
	case c.Query("userId") != "":
		userId, convErr := strconv.Atoi(c.Query("userId"))
		if convErr != nil || userId <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid userId!", nil)
		}
		entries, total, err = recorder.ByUser(uint(userId), limit, offset)
	case c.Query("action") != "":
		entries, total, err = recorder.ByAction(c.Query("action"), limit, offset)
	default:
		to := time.Now()
		from := to.AddDate(0, 0, -7)
		if raw := c.Query("from"); raw != "" {
			if parsed, parseErr := time.Parse(time.RFC3339, raw); parseErr == nil {
				from = parsed
			}
		}
		if raw := c.Query("to"); raw != "" {
			if parsed, parseErr := time.Parse(time.RFC3339, raw); parseErr == nil {
				to = parsed
			}
		}
		entries, total, err = recorder.ByTimeRange(from, to, limit, offset)
	}

	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch audit trail!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Audit trail fetched!", fiber.Map{
		"entries": entries,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
