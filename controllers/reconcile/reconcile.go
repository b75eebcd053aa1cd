package reconcileController

import (
	"palletrack/config"
	"palletrack/database"
	"palletrack/middleware"
	"palletrack/models"
	"palletrack/services/audit"
	"palletrack/services/reconcile"
	"palletrack/utils"

	"github.com/gofiber/fiber/v2"
)

func service() *reconcile.Service {
	db := database.Database.Db
	return reconcile.New(db, config.AppConfig.Rules, audit.NewRecorder(db), func(palletID uint, batchID string, criticals int) {
		utils.SendCriticalDiscrepancyEmail(palletID, batchID, criticals)
	})
}

// RunComparison reconciles a received pallet against counted arrivals
func RunComparison(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedRunComparison").(*struct {
		PalletID uint                     `json:"palletId"`
		Arrivals []reconcile.ArrivalCount `json:"arrivals"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	batch, err := service().CompareOriginDestination(reqData.PalletID, reqData.Arrivals, userId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Reconciliation complete!", batch)
}

// Annotate attaches a reason and evidence to one comparison line
func Annotate(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedAnnotate").(*struct {
		ComparisonID uint     `json:"comparisonId"`
		Reason       string   `json:"reason"`
		Evidence     []string `json:"evidence"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := service().AnnotateComparison(reqData.ComparisonID, reqData.Reason, reqData.Evidence, userId); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comparison annotated!", nil)
}

// ListByPallet returns every comparison line for one pallet
func ListByPallet(c *fiber.Ctx) error {
	palletIdInt, _ := c.ParamsInt("palletId", 0)
	palletId := uint(palletIdInt)
	if palletId == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Pallet ID is required!", nil)
	}

	comparisons, err := service().ListByPallet(palletId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comparisons fetched!", comparisons)
}

// ListDiscrepancies returns flagged lines, optionally by severity
func ListDiscrepancies(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	comparisons, total, err := service().ListDiscrepancies(
		models.Severity(c.Query("severity")), limit, (page-1)*limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Discrepancies fetched!", fiber.Map{
		"comparisons": comparisons,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
