package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals yang diisi middleware AuthJWT
const (
	LocUserID       = "user_id"
	LocProprietorID = "proprietor_id"
	LocEmail        = "email"
	LocRoles        = "roles"
)

// Ambil user_id dari c.Locals("user_id")
// Return 401 kalau belum login, 400 kalau formatnya tidak valid.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return uuidLocal(c, LocUserID)
}

// GetProprietorIDFromToken: klaim proprietor_id, fallback ke user_id.
func GetProprietorIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	if v := c.Locals(LocProprietorID); v != nil {
		return uuidLocal(c, LocProprietorID)
	}
	return GetUserIDFromToken(c)
}

func GetEmailFromToken(c *fiber.Ctx) string {
	if s, ok := c.Locals(LocEmail).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func HasRole(c *fiber.Ctx, role string) bool {
	roles, _ := c.Locals(LocRoles).([]string)
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

func uuidLocal(c *fiber.Ctx, key string) (uuid.UUID, error) {
	v := c.Locals(key)
	var s string
	switch t := v.(type) {
	case nil:
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User belum login")
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User belum login")
		}
		return t, nil
	case string:
		s = strings.TrimSpace(t)
	case []byte:
		s = strings.TrimSpace(string(t))
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "User ID pada token tidak valid")
	}
	if s == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User belum login")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "User ID pada token tidak valid")
	}
	return id, nil
}
