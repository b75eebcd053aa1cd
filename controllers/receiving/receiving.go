package receivingController

import (
	"palletrack/config"
	"palletrack/database"
	"palletrack/middleware"
	"palletrack/services/audit"
	"palletrack/services/reconcile"
	"palletrack/utils"

	"github.com/gofiber/fiber/v2"
)

func service() *reconcile.Service {
	db := database.Database.Db
	return reconcile.New(db, config.AppConfig.Rules, audit.NewRecorder(db), func(palletID uint, batchID string, criticals int) {
		utils.SendCriticalDiscrepancyEmail(palletID, batchID, criticals)
	})
}

// ReceivePallet records a pallet's arrival at a destination
func ReceivePallet(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	reqData, ok := c.Locals("validatedReceive").(*struct {
		PalletID   uint     `json:"palletId"`
		LocationID uint     `json:"locationId"`
		Photos     []string `json:"photos"`
		Notes      string   `json:"notes"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	receipt, err := service().ReceivePallet(reconcile.ReceiveInput{
		PalletID:   reqData.PalletID,
		LocationID: reqData.LocationID,
		ReceiverID: userId,
		Photos:     reqData.Photos,
		Notes:      reqData.Notes,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Pallet received!", receipt)
}

// GetReceipt returns the receipt for a pallet
func GetReceipt(c *fiber.Ctx) error {
	palletIdInt, _ := c.ParamsInt("palletId", 0)
	palletId := uint(palletIdInt)
	if palletId == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Pallet ID is required!", nil)
	}

	receipt, err := service().GetReceipt(palletId)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Receipt fetched!", receipt)
}
