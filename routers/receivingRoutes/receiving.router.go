package receivingRoutes

import (
	receivingController "palletrack/controllers/receiving"
	"palletrack/middleware"
	receivingValidator "palletrack/validators/receiving"

	"github.com/gofiber/fiber/v2"
)

func SetupReceivingRoutes(app *fiber.App) {
	receivingGroup := app.Group("/receiving")

	receivingGroup.Post("/", receivingValidator.Receive(), middleware.JWTMiddleware, receivingController.ReceivePallet)
	receivingGroup.Get("/:palletId", middleware.JWTMiddleware, receivingController.GetReceipt)
}
