package catalogRoutes

import (
	catalogController "palletrack/controllers/catalog"
	"palletrack/middleware"
	"palletrack/models"
	catalogValidator "palletrack/validators/catalog"

	"github.com/gofiber/fiber/v2"
)

func SetupCatalogRoutes(app *fiber.App) {
	catalogGroup := app.Group("/catalog")

	catalogGroup.Get("/contracts", middleware.JWTMiddleware, catalogController.ListContracts)
	catalogGroup.Get("/locations", middleware.JWTMiddleware, catalogController.ListLocations)
	catalogGroup.Get("/skus", middleware.JWTMiddleware, catalogController.ListSkus)

	// Admin routes
	adminGroup := catalogGroup.Group("/admin")
	adminGroup.Post("/contracts", catalogValidator.CreateContract(), middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleAdmin), catalogController.CreateContract)
	adminGroup.Post("/locations", catalogValidator.CreateLocation(), middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleAdmin), catalogController.CreateLocation)
	adminGroup.Post("/skus", catalogValidator.CreateSku(), middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleAdmin, models.RoleSupervisor), catalogController.CreateSku)
}
