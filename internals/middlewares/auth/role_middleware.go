package auth

import (
	"github.com/gofiber/fiber/v2"

	"napps_backend/internals/constants"
	helper "napps_backend/internals/helpers"
)

// OnlyRoles: lolos kalau salah satu role cocok. Dipasang setelah AuthJWT.
func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	if customMessage == "" {
		customMessage = "Forbidden: you are not authorized to access this resource"
	}
	return func(c *fiber.Ctx) error {
		for _, r := range roles {
			if helper.HasRole(c, r) {
				return c.Next()
			}
		}
		return helper.JsonError(c, fiber.StatusForbidden, customMessage)
	}
}

func IsAdmin() fiber.Handler {
	return OnlyRoles(constants.RoleErrorAdmin("payments"), constants.RoleAdmin)
}

// IsStaff: admin atau finance.
func IsStaff() fiber.Handler {
	return OnlyRoles(constants.RoleErrorStaff("payments"), constants.StaffRoles...)
}
