package reconcileValidator

import (
	"palletrack/middleware"
	"palletrack/services/reconcile"

	"github.com/gofiber/fiber/v2"
)

// RunComparison validates a reconciliation run
func RunComparison() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PalletID uint                     `json:"palletId"`
			Arrivals []reconcile.ArrivalCount `json:"arrivals"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PalletID == 0 {
			errors["palletId"] = "Pallet ID is required!"
		}
		for _, line := range reqData.Arrivals {
			if line.SkuID == 0 {
				errors["arrivals"] = "Arrival counts must name a SKU!"
				break
			}
			if line.Quantity < 0 {
				errors["arrivals"] = "Arrival quantities must not be negative!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRunComparison", reqData)
		return c.Next()
	}
}

// Annotate validates a comparison annotation
func Annotate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ComparisonID uint     `json:"comparisonId"`
			Reason       string   `json:"reason"`
			Evidence     []string `json:"evidence"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.ComparisonID == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Comparison ID is required!", nil)
		}

		c.Locals("validatedAnnotate", reqData)
		return c.Next()
	}
}
