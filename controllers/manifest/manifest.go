package manifestController

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"palletrack/database"
	"palletrack/middleware"
	"palletrack/models"
	"palletrack/services/audit"
	manifestService "palletrack/services/manifest"

	"github.com/gofiber/fiber/v2"
)

func service() *manifestService.Service {
	db := database.Database.Db
	return manifestService.New(db, audit.NewRecorder(db))
}

// CreateManifest creates a draft manifest for one contract/route
func CreateManifest(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedCreateManifest").(*struct {
		ContractID       uint `json:"contractId"`
		OriginLocationID uint `json:"originLocationId"`
		DestLocationID   uint `json:"destLocationId"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	manifest, err := service().Create(reqData.ContractID, reqData.OriginLocationID, reqData.DestLocationID, userId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Manifest created!", manifest)
}

// AttachPallet links a sealed pallet to a draft manifest
func AttachPallet(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedAttachPallet").(*struct {
		ManifestID uint `json:"manifestId"`
		PalletID   uint `json:"palletId"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := service().AttachPallet(reqData.ManifestID, reqData.PalletID, userId); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pallet attached!", nil)
}

// DetachPallet removes a pallet from a draft manifest
func DetachPallet(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedAttachPallet").(*struct {
		ManifestID uint `json:"manifestId"`
		PalletID   uint `json:"palletId"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := service().DetachPallet(reqData.ManifestID, reqData.PalletID, userId); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pallet detached!", nil)
}

// MarkLoaded moves the manifest to LOADED and all its pallets to IN_TRANSIT
func MarkLoaded(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	manifestIdInt, _ := c.ParamsInt("id", 0)
	manifestId := uint(manifestIdInt)
	if manifestId == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Manifest ID is required!", nil)
	}

	if err := service().MarkLoaded(manifestId, userId); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Manifest loaded!", nil)
}

// MarkInTransit records departure
func MarkInTransit(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	manifestIdInt, _ := c.ParamsInt("id", 0)
	manifestId := uint(manifestIdInt)
	if manifestId == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Manifest ID is required!", nil)
	}

	if err := service().MarkInTransit(manifestId, userId); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Manifest departed!", nil)
}

// MarkDelivered records arrival of the whole shipment
func MarkDelivered(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)
	manifestIdInt, _ := c.ParamsInt("id", 0)
	manifestId := uint(manifestIdInt)
	if manifestId == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Manifest ID is required!", nil)
	}

	if err := service().MarkDelivered(manifestId, userId); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Manifest delivered!", nil)
}

// GetManifest returns one manifest with attachments and stats
func GetManifest(c *fiber.Ctx) error {
	manifestIdInt, _ := c.ParamsInt("id", 0)
	manifestId := uint(manifestIdInt)
	if manifestId == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Manifest ID is required!", nil)
	}

	manifest, err := service().Get(manifestId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	stats, err := service().GetStats(manifestId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Manifest fetched!", fiber.Map{
		"manifest": manifest,
		"stats":    stats,
	})
}

// ListManifests returns manifests with optional filters
func ListManifests(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	manifests, total, err := service().List(manifestService.ListFilter{
		Status:     models.ManifestStatus(c.Query("status")),
		ContractID: uint(c.QueryInt("contractId", 0)),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Manifests fetched!", fiber.Map{
		"manifests": manifests,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// ExportCsv streams a flat CSV of one manifest's pallets
func ExportCsv(c *fiber.Ctx) error {
	manifestIdInt, _ := c.ParamsInt("id", 0)
	manifestId := uint(manifestIdInt)
	if manifestId == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Manifest ID is required!", nil)
	}

	manifest, err := service().Get(manifestId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var pallets []models.Pallet
	if err := database.Database.Db.Preload("Items").
		Where("manifest_id = ?", manifestId).Find(&pallets).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to export manifest!", nil)
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", manifest.Code))

	writer := csv.NewWriter(c.Response().BodyWriter())
	writer.Write([]string{"manifest", "pallet_id", "status", "sku_id", "quantity"})
	for _, pallet := range pallets {
		if len(pallet.Items) == 0 {
			writer.Write([]string{manifest.Code, strconv.Itoa(int(pallet.ID)), string(pallet.Status), "", ""})
			continue
		}
		for _, item := range pallet.Items {
			writer.Write([]string{
				manifest.Code,
				strconv.Itoa(int(pallet.ID)),
				string(pallet.Status),
				strconv.Itoa(int(item.SkuID)),
				strconv.Itoa(item.DepartureQuantity()),
			})
		}
	}
	writer.Flush()

	return nil
}
