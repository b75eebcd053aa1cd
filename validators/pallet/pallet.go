package palletValidator

import (
	"palletrack/middleware"
	palletService "palletrack/services/pallet"

	"github.com/gofiber/fiber/v2"
)

// CreatePallet validates pallet creation
func CreatePallet() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ContractID       uint   `json:"contractId"`
			OriginLocationID uint   `json:"originLocationId"`
			QrCode           string `json:"qrCode"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ContractID == 0 {
			errors["contractId"] = "Contract ID is required!"
		}
		if reqData.OriginLocationID == 0 {
			errors["originLocationId"] = "Origin location ID is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreatePallet", reqData)
		return c.Next()
	}
}

// AddItem validates adding a SKU line
func AddItem() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PalletID uint `json:"palletId"`
			SkuID    uint `json:"skuId"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PalletID == 0 {
			errors["palletId"] = "Pallet ID is required!"
		}
		if reqData.SkuID == 0 {
			errors["skuId"] = "SKU ID is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAddItem", reqData)
		return c.Next()
	}
}

// AttachPhotos validates appending photo references
func AttachPhotos() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PalletID uint     `json:"palletId"`
			Photos   []string `json:"photos"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PalletID == 0 {
			errors["palletId"] = "Pallet ID is required!"
		}
		if len(reqData.Photos) == 0 {
			errors["photos"] = "At least one photo reference is required!"
		}
		for _, ref := range reqData.Photos {
			if ref == "" {
				errors["photos"] = "Photo references must not be empty!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAttachPhotos", reqData)
		return c.Next()
	}
}

// Seal validates the seal request and its optional review payload
func Seal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PalletID uint                      `json:"palletId"`
			Review   *palletService.SealReview `json:"review"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PalletID == 0 {
			errors["palletId"] = "Pallet ID is required!"
		}
		if reqData.Review != nil {
			for _, adj := range reqData.Review.Adjustments {
				if adj.SkuID == 0 {
					errors["review"] = "Adjustments must name a SKU!"
					break
				}
				if adj.Quantity < 0 {
					errors["review"] = "Adjusted quantities must not be negative!"
					break
				}
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSeal", reqData)
		return c.Next()
	}
}
