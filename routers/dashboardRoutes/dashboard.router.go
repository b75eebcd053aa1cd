package dashboardRoutes

import (
	dashboardController "palletrack/controllers/dashboard"
	"palletrack/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupDashboardRoutes(app *fiber.App) {
	dashboardGroup := app.Group("/dashboard")

	dashboardGroup.Get("/summary", middleware.JWTMiddleware, dashboardController.GetSummary)
	dashboardGroup.Get("/audit", middleware.JWTMiddleware, dashboardController.GetAuditTrail)
}
