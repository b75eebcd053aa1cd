package catalogController

import (
	"palletrack/database"
	"palletrack/middleware"
	"palletrack/models"

	"github.com/gofiber/fiber/v2"
)

// CreateContract registers a client contract
func CreateContract(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCreateContract").(*struct {
		Code       string `json:"code"`
		ClientName string `json:"clientName"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	if err := db.Where("code = ? AND is_deleted = false", reqData.Code).First(&models.Contract{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Contract code already exists!", nil)
	}

	contract := models.Contract{Code: reqData.Code, ClientName: reqData.ClientName, IsActive: true}
	if err := db.Create(&contract).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create contract!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Contract created!", contract)
}

// ListContracts returns contracts with pagination
func ListContracts(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	db := database.Database.Db
	query := db.Model(&models.Contract{}).Where("is_deleted = false")

	var total int64
	query.Count(&total)

	var contracts []models.Contract
	if err := query.Order("code").Limit(limit).Offset((page - 1) * limit).Find(&contracts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch contracts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contracts fetched!", fiber.Map{
		"contracts":  contracts,
		"pagination": fiber.Map{"total": total, "page": page, "limit": limit},
	})
}

// CreateLocation registers a warehouse, store or DC
func CreateLocation(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCreateLocation").(*struct {
		Code string `json:"code"`
		Name string `json:"name"`
		Kind string `json:"kind"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	if err := db.Where("code = ? AND is_deleted = false", reqData.Code).First(&models.Location{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Location code already exists!", nil)
	}

	kind := reqData.Kind
	if kind == "" {
		kind = models.LocationWarehouse
	}

	location := models.Location{Code: reqData.Code, Name: reqData.Name, Kind: kind}
	if err := db.Create(&location).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create location!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Location created!", location)
}

// ListLocations returns locations with pagination
func ListLocations(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	db := database.Database.Db
	query := db.Model(&models.Location{}).Where("is_deleted = false")
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	query.Count(&total)

	var locations []models.Location
	if err := query.Order("code").Limit(limit).Offset((page - 1) * limit).Find(&locations).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch locations!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Locations fetched!", fiber.Map{
		"locations":  locations,
		"pagination": fiber.Map{"total": total, "page": page, "limit": limit},
	})
}

// CreateSku registers a stock keeping unit
func CreateSku(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCreateSku").(*struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Unit        string `json:"unit"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	if err := db.Where("code = ? AND is_deleted = false", reqData.Code).First(&models.SKU{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "SKU code already exists!", nil)
	}

	unit := reqData.Unit
	if unit == "" {
		unit = "UNIT"
	}

	sku := models.SKU{Code: reqData.Code, Description: reqData.Description, Unit: unit}
	if err := db.Create(&sku).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create SKU!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "SKU created!", sku)
}

// ListSkus returns SKUs with pagination
func ListSkus(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	db := database.Database.Db
	query := db.Model(&models.SKU{}).Where("is_deleted = false")

	var total int64
	query.Count(&total)

	var skus []models.SKU
	if err := query.Order("code").Limit(limit).Offset((page - 1) * limit).Find(&skus).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch SKUs!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "SKUs fetched!", fiber.Map{
		"skus":       skus,
		"pagination": fiber.Map{"total": total, "page": page, "limit": limit},
	})
}

func pageParams(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return page, limit
}
