package catalogValidator

import (
	"palletrack/middleware"
	"palletrack/models"

	"github.com/gofiber/fiber/v2"
)

// CreateContract validates contract creation
func CreateContract() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Code       string `json:"code"`
			ClientName string `json:"clientName"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Code == "" {
			errors["code"] = "Contract code is required!"
		}
		if reqData.ClientName == "" {
			errors["clientName"] = "Client name is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateContract", reqData)
		return c.Next()
	}
}

// CreateLocation validates location creation
func CreateLocation() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Code string `json:"code"`
			Name string `json:"name"`
			Kind string `json:"kind"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Code == "" {
			errors["code"] = "Location code is required!"
		}
		if reqData.Name == "" {
			errors["name"] = "Location name is required!"
		}

		validKinds := map[string]bool{
			models.LocationWarehouse: true,
			models.LocationStore:     true,
			models.LocationDC:        true,
		}
		if reqData.Kind != "" {
			if _, ok := validKinds[reqData.Kind]; !ok {
				errors["kind"] = "Kind must be WAREHOUSE, STORE, or DC!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateLocation", reqData)
		return c.Next()
	}
}

// CreateSku validates SKU creation
func CreateSku() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Code        string `json:"code"`
			Description string `json:"description"`
			Unit        string `json:"unit"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Code == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "SKU code is required!", nil)
		}

		c.Locals("validatedCreateSku", reqData)
		return c.Next()
	}
}
