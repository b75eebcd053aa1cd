package authValidator

import (
	"strings"

	"palletrack/middleware"
	"palletrack/models"

	"github.com/gofiber/fiber/v2"
)

// Signup validates the registration request
func Signup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Mobile   string `json:"mobile"`
			Password string `json:"password"`
			Role     string `json:"role"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Name == "" {
			errors["name"] = "Name is required!"
		}
		if !strings.Contains(reqData.Email, "@") {
			errors["email"] = "A valid email is required!"
		}
		if len(reqData.Password) < 8 {
			errors["password"] = "Password must be at least 8 characters!"
		}

		validRoles := map[string]bool{
			models.RoleOperator:   true,
			models.RoleSupervisor: true,
			models.RoleAdmin:      true,
		}
		if reqData.Role != "" {
			if _, ok := validRoles[reqData.Role]; !ok {
				errors["role"] = "Role must be OPERATOR, SUPERVISOR, or ADMIN!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSignup", reqData)
		return c.Next()
	}
}

// Login validates the login request
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Email == "" {
			errors["email"] = "Email is required!"
		}
		if reqData.Password == "" {
			errors["password"] = "Password is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}
