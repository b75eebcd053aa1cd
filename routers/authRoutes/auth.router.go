package authRoutes

import (
	authController "palletrack/controllers/auth"
	"palletrack/middleware"
	authValidator "palletrack/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidator.Signup(), authController.Signup)
	authGroup.Post("/login", authValidator.Login(), authController.Login)
	authGroup.Get("/profile", middleware.JWTMiddleware, authController.Profile)
}
