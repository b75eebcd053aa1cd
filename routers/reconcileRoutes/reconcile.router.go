package reconcileRoutes

import (
	reconcileController "palletrack/controllers/reconcile"
	"palletrack/middleware"
	reconcileValidator "palletrack/validators/reconcile"

	"github.com/gofiber/fiber/v2"
)

func SetupReconcileRoutes(app *fiber.App) {
	reconcileGroup := app.Group("/reconcile")

	reconcileGroup.Post("/run", reconcileValidator.RunComparison(), middleware.JWTMiddleware, reconcileController.RunComparison)
	reconcileGroup.Post("/annotate", reconcileValidator.Annotate(), middleware.JWTMiddleware, reconcileController.Annotate)
	reconcileGroup.Get("/pallet/:palletId", middleware.JWTMiddleware, reconcileController.ListByPallet)
	reconcileGroup.Get("/discrepancies", middleware.JWTMiddleware, reconcileController.ListDiscrepancies)
}
