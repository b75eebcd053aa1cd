package receivingValidator

import (
	"palletrack/middleware"

	"github.com/gofiber/fiber/v2"
)

// Receive validates a pallet arrival
func Receive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PalletID   uint     `json:"palletId"`
			LocationID uint     `json:"locationId"`
			Photos     []string `json:"photos"`
			Notes      string   `json:"notes"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PalletID == 0 {
			errors["palletId"] = "Pallet ID is required!"
		}
		if reqData.LocationID == 0 {
			errors["locationId"] = "Destination location ID is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReceive", reqData)
		return c.Next()
	}
}
