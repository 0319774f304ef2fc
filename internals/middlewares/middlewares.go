package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/rs/zerolog"

	"napps_backend/internals/middlewares/logger"
)

type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	Log            zerolog.Logger
}

// SetupMiddlewares memasang middleware global. Urutan: recover paling luar.
func SetupMiddlewares(app *fiber.App, o Options) {
	app.Use(RecoveryMiddleware(o.Log))
	app.Use(RequestContext(o.RequestTimeout))
	app.Use(logger.LoggerMiddleware(o.Log))
	app.Use(CorsMiddleware(o.CORSOrigins))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(GlobalRateLimiter())
	app.Use(WebhookRateLimiter())
}
