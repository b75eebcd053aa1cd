package qrController

import (
	"palletrack/database"
	"palletrack/middleware"
	"palletrack/models"
	"palletrack/services/audit"
	"palletrack/services/qrpool"

	"github.com/gofiber/fiber/v2"
)

func service() *qrpool.Service {
	db := database.Database.Db
	return qrpool.New(db, audit.NewRecorder(db))
}

// Provision bulk-creates free QR codes (admin only)
func Provision(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedProvision").(*struct {
		Prefix string `json:"prefix"`
		Start  int    `json:"start"`
		Count  int    `json:"count"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	codes, err := service().Provision(reqData.Prefix, reqData.Start, reqData.Count, userId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "QR codes provisioned!", fiber.Map{
		"count": len(codes),
		"first": codes[0].Code,
		"last":  codes[len(codes)-1].Code,
	})
}

// Release frees a damaged or reprinted tag (admin only)
func Release(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedRelease").(*struct {
		Code string `json:"code"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	released, err := service().AdminRelease(reqData.Code, userId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	message := "QR code released!"
	if !released {
		message = "QR code was already free."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"code":     reqData.Code,
		"released": released,
	})
}

// ListCodes returns pool entries with an optional status filter
func ListCodes(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	db := database.Database.Db
	query := db.Model(&models.QrCode{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var codes []models.QrCode
	if err := query.Order("code").Limit(limit).Offset((page - 1) * limit).Find(&codes).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch codes!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "QR codes fetched!", fiber.Map{
		"codes": codes,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// Stats returns pool totals and utilization
func Stats(c *fiber.Ctx) error {
	stats, err := service().Stats()
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pool stats fetched!", stats)
}
