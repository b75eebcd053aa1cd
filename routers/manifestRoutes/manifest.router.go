package manifestRoutes

import (
	manifestController "palletrack/controllers/manifest"
	"palletrack/middleware"
	manifestValidator "palletrack/validators/manifest"

	"github.com/gofiber/fiber/v2"
)

func SetupManifestRoutes(app *fiber.App) {
	manifestGroup := app.Group("/manifests")

	manifestGroup.Post("/", manifestValidator.CreateManifest(), middleware.JWTMiddleware, manifestController.CreateManifest)
	manifestGroup.Post("/attach", manifestValidator.AttachPallet(), middleware.JWTMiddleware, manifestController.AttachPallet)
	manifestGroup.Post("/detach", manifestValidator.AttachPallet(), middleware.JWTMiddleware, manifestController.DetachPallet)
	manifestGroup.Post("/:id/load", middleware.JWTMiddleware, manifestController.MarkLoaded)
	manifestGroup.Post("/:id/depart", middleware.JWTMiddleware, manifestController.MarkInTransit)
	manifestGroup.Post("/:id/deliver", middleware.JWTMiddleware, manifestController.MarkDelivered)
	manifestGroup.Get("/:id/export", middleware.JWTMiddleware, manifestController.ExportCsv)
	manifestGroup.Get("/:id", middleware.JWTMiddleware, manifestController.GetManifest)
	manifestGroup.Get("/", middleware.JWTMiddleware, manifestController.ListManifests)
}
