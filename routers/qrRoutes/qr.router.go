package qrRoutes

import (
	qrController "palletrack/controllers/qr"
	"palletrack/middleware"
	"palletrack/models"
	qrValidator "palletrack/validators/qr"

	"github.com/gofiber/fiber/v2"
)

func SetupQrRoutes(app *fiber.App) {
	qrGroup := app.Group("/qr")

	qrGroup.Get("/", middleware.JWTMiddleware, qrController.ListCodes)
	qrGroup.Get("/stats", middleware.JWTMiddleware, qrController.Stats)

	// Admin routes
	adminGroup := qrGroup.Group("/admin")
	adminGroup.Post("/provision", qrValidator.Provision(), middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleAdmin), qrController.Provision)
	adminGroup.Post("/release", qrValidator.Release(), middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleAdmin, models.RoleSupervisor), qrController.Release)
}
