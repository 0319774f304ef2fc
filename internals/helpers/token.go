// helpers/token.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Raw JWT disimpan di Locals setelah lolos verifikasi
const LocRawToken = "raw_token"

// GetRawAccessToken mengambil access token dari:
// 1) Authorization header "Bearer <token>"
// 2) cookie "access_token" (hanya jika allowCookie)
func GetRawAccessToken(c *fiber.Ctx, allowCookie bool) string {
	const p = "bearer "
	if auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); len(auth) > len(p) && strings.EqualFold(auth[:len(p)], p) {
		return strings.TrimSpace(auth[len(p):])
	}
	if allowCookie {
		return strings.TrimSpace(c.Cookies("access_token"))
	}
	return ""
}

func SetRawAccessToken(c *fiber.Ctx, raw string) {
	if strings.TrimSpace(raw) != "" {
		c.Locals(LocRawToken, strings.TrimSpace(raw))
	}
}
