package palletRoutes

import (
	palletController "palletrack/controllers/pallet"
	"palletrack/middleware"
	palletValidator "palletrack/validators/pallet"

	"github.com/gofiber/fiber/v2"
)

func SetupPalletRoutes(app *fiber.App) {
	palletGroup := app.Group("/pallets")

	palletGroup.Post("/", palletValidator.CreatePallet(), middleware.JWTMiddleware, palletController.CreatePallet)
	palletGroup.Post("/items", palletValidator.AddItem(), middleware.JWTMiddleware, palletController.AddItem)
	palletGroup.Post("/photos", palletValidator.AttachPhotos(), middleware.JWTMiddleware, palletController.AttachPhotos)
	palletGroup.Post("/:id/suggest-count", middleware.JWTMiddleware, palletController.SuggestCount)
	palletGroup.Post("/seal", palletValidator.Seal(), middleware.JWTMiddleware, palletController.Seal)
	palletGroup.Post("/:id/finalize", middleware.JWTMiddleware, palletController.Finalize)
	palletGroup.Delete("/:id", middleware.JWTMiddleware, palletController.DeletePallet)
	palletGroup.Get("/:id", middleware.JWTMiddleware, palletController.GetPallet)
	palletGroup.Get("/", middleware.JWTMiddleware, palletController.ListPallets)
}
