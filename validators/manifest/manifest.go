package manifestValidator

import (
	"palletrack/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateManifest validates manifest creation
func CreateManifest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ContractID       uint `json:"contractId"`
			OriginLocationID uint `json:"originLocationId"`
			DestLocationID   uint `json:"destLocationId"`
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
		if reqData.DestLocationID == 0 {
			errors["destLocationId"] = "Destination location ID is required!"
		}
		if reqData.OriginLocationID != 0 && reqData.OriginLocationID == reqData.DestLocationID {
			errors["destLocationId"] = "Destination must differ from origin!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateManifest", reqData)
		return c.Next()
	}
}

// AttachPallet validates attach and detach requests
func AttachPallet() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ManifestID uint `json:"manifestId"`
			PalletID   uint `json:"palletId"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ManifestID == 0 {
			errors["manifestId"] = "Manifest ID is required!"
		}
		if reqData.PalletID == 0 {
			errors["palletId"] = "Pallet ID is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAttachPallet", reqData)
		return c.Next()
	}
}
