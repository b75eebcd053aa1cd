package main

import (
	"log"

	"palletrack/config"
	"palletrack/database"
	authRoutes "palletrack/routers/authRoutes"
	catalogRoutes "palletrack/routers/catalogRoutes"
	dashboardRoutes "palletrack/routers/dashboardRoutes"
	manifestRoutes "palletrack/routers/manifestRoutes"
	palletRoutes "palletrack/routers/palletRoutes"
	qrRoutes "palletrack/routers/qrRoutes"
	receivingRoutes "palletrack/routers/receivingRoutes"
	reconcileRoutes "palletrack/routers/reconcileRoutes"
	"palletrack/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	catalogRoutes.SetupCatalogRoutes(app)
	qrRoutes.SetupQrRoutes(app)
	palletRoutes.SetupPalletRoutes(app)
	manifestRoutes.SetupManifestRoutes(app)
	receivingRoutes.SetupReceivingRoutes(app)
	reconcileRoutes.SetupReconcileRoutes(app)
	dashboardRoutes.SetupDashboardRoutes(app)

	// Background jobs: stale transit watch, pool watermark
	utils.InitializeWarehouseSchedulers()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
