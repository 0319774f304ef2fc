package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "napps_backend/internals/helpers"
)

const webhookPath = "/api/public/payments/webhook"

func limitReached(msg string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return helper.JsonError(c, fiber.StatusTooManyRequests, msg)
	}
}

// Global limiter: untuk semua endpoint biasa
func GlobalRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		// webhook gateway dibatasi terpisah
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == webhookPath
		},
		LimitReached: limitReached("too many requests, please try again later"),
	})
}

// Checkout (initialize/retry) lebih ketat per IP
func CheckoutRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != fiber.MethodPost
		},
		LimitReached: limitReached("too many checkout attempts, please wait a minute"),
	})
}

// Webhook: gateway mengirim burst saat retry, batas dibuat longgar
func WebhookRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() != webhookPath
		},
		LimitReached: limitReached("webhook rate limit exceeded"),
	})
}
