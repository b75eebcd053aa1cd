package qrValidator

import (
	"palletrack/middleware"

	"github.com/gofiber/fiber/v2"
)

// Provision validates bulk tag creation
func Provision() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Prefix string `json:"prefix"`
			Start  int    `json:"start"`
			Count  int    `json:"count"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Prefix == "" {
			errors["prefix"] = "Prefix is required!"
		}
		if reqData.Start < 0 {
			errors["start"] = "Start must not be negative!"
		}
		if reqData.Count < 1 || reqData.Count > 10000 {
			errors["count"] = "Count must be between 1 and 10000!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedProvision", reqData)
		return c.Next()
	}
}

// Release validates freeing a tag
func Release() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Code string `json:"code"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Code == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Code is required!", nil)
		}

		c.Locals("validatedRelease", reqData)
		return c.Next()
	}
}
