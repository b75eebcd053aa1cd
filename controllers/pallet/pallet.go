package palletController

import (
	"palletrack/config"
	"palletrack/database"
	"palletrack/middleware"
	"palletrack/models"
	"palletrack/services/audit"
	"palletrack/services/estimator"
	palletService "palletrack/services/pallet"
	"palletrack/services/qrpool"

	"github.com/gofiber/fiber/v2"
)

func service() *palletService.Service {
	db := database.Database.Db
	rec := audit.NewRecorder(db)

	var est estimator.Estimator = estimator.NewStatic(0, 0.5)
	if config.AppConfig.VisionApiURL != "" {
		est = estimator.NewVisionClient(config.AppConfig.VisionApiURL, config.AppConfig.VisionApiKey)
	}

	return palletService.New(db, config.AppConfig.Rules, qrpool.New(db, rec), rec, est)
}

// CreatePallet opens a new pallet and binds a QR tag
func CreatePallet(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedCreatePallet").(*struct {
		ContractID       uint   `json:"contractId"`
		OriginLocationID uint   `json:"originLocationId"`
		QrCode           string `json:"qrCode"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	pallet, err := service().Create(palletService.CreateInput{
		ContractID:       reqData.ContractID,
		OriginLocationID: reqData.OriginLocationID,
		QrCode:           reqData.QrCode,
		CreatorID:        userId,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Pallet created!", pallet)
}

// AddItem adds one SKU line to an open pallet
func AddItem(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedAddItem").(*struct {
		PalletID uint `json:"palletId"`
		SkuID    uint `json:"skuId"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	item, err := service().AddItem(reqData.PalletID, reqData.SkuID, userId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Item added!", item)
}

// AttachPhotos appends photo references to an open pallet
func AttachPhotos(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedAttachPhotos").(*struct {
		PalletID uint     `json:"palletId"`
		Photos   []string `json:"photos"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := service().AttachPhotos(reqData.PalletID, reqData.Photos, userId); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Photos attached!", fiber.Map{
		"palletId": reqData.PalletID,
		"added":    len(reqData.Photos),
	})
}

// SuggestCount runs the AI estimator over the pallet's photos
func SuggestCount(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	palletIdInt, _ := c.ParamsInt("id", 0)
	palletId := uint(palletIdInt)
	if palletId == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Pallet ID is required!", nil)
	}

	result, err := service().SuggestCount(c.Context(), palletId, userId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Count suggested!", fiber.Map{
		"confidence": result.Confidence,
		"items":      result.Items,
	})
}

// Seal locks the pallet's departure counts
func Seal(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedSeal").(*struct {
		PalletID uint                      `json:"palletId"`
		Review   *palletService.SealReview `json:"review"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := service().Seal(reqData.PalletID, userId, reqData.Review); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pallet sealed!", fiber.Map{
		"palletId": reqData.PalletID,
	})
}

// Finalize closes out a received and reconciled pallet
func Finalize(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	palletIdInt, _ := c.ParamsInt("id", 0)
	palletId := uint(palletIdInt)
	if palletId == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Pallet ID is required!", nil)
	}

	if err := service().Finalize(palletId, userId); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pallet finalized!", fiber.Map{
		"palletId": palletId,
	})
}

// DeletePallet removes an open pallet and frees its tag
func DeletePallet(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	palletIdInt, _ := c.ParamsInt("id", 0)
	palletId := uint(palletIdInt)
	if palletId == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Pallet ID is required!", nil)
	}

	if err := service().Delete(palletId, userId); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pallet deleted!", nil)
}

// GetPallet returns one pallet with items and bound tag
func GetPallet(c *fiber.Ctx) error {
	palletIdInt, _ := c.ParamsInt("id", 0)
	palletId := uint(palletIdInt)
	if palletId == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Pallet ID is required!", nil)
	}

	pallet, qr, err := service().Get(palletId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pallet fetched!", fiber.Map{
		"pallet": pallet,
		"qrCode": qr,
	})
}

// ListPallets returns pallets with optional status/contract filters
func ListPallets(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	pallets, total, err := service().List(palletService.ListFilter{
		Status:     models.PalletStatus(c.Query("status")),
		ContractID: uint(c.QueryInt("contractId", 0)),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pallets fetched!", fiber.Map{
		"pallets": pallets,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
