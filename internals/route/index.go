// file: internals/route/index.go
package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"napps_backend/internals/configs"
	feeSvc "napps_backend/internals/features/finance/fees/service"
	paySvc "napps_backend/internals/features/finance/payments/service"
	"napps_backend/internals/middlewares"
	authMiddleware "napps_backend/internals/middlewares/auth"
	routeDetails "napps_backend/internals/route/details"
)

type Deps struct {
	Config     *configs.Config
	DB         *gorm.DB
	Catalog    *feeSvc.Catalog
	Calculator *feeSvc.Calculator
	Payments   *paySvc.PaymentService
	Log        zerolog.Logger
}

func SetupRoutes(app *fiber.App, d Deps) {
	BaseRoutes(app, d.DB, d.Config)

	// ===================== GROUPS =====================
	d.Log.Info().Msg("setting up route groups")

	public := app.Group("/api/public")

	jwt := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Secret:              d.Config.JWTSecret,
		AllowCookieFallback: true,
	})
	private := app.Group("/api/u", jwt, middlewares.CheckoutRateLimiter())
	admin := app.Group("/api/a", jwt, authMiddleware.IsStaff())

	// ===================== MOUNT ROUTES =====================
	d.Log.Info().Msg("mounting finance routes")
	fin := routeDetails.NewFinanceControllers(d.Catalog, d.Calculator, d.Payments, d.Config.DefaultCurrency, d.Log)
	routeDetails.FinancePublicRoutes(public, fin)
	routeDetails.FinanceUserRoutes(private, fin)
	routeDetails.FinanceAdminRoutes(admin, fin)
}
