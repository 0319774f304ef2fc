// file: internals/route/details/finance_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	feeController "napps_backend/internals/features/finance/fees/controller"
	feeRoute "napps_backend/internals/features/finance/fees/route"
	feeSvc "napps_backend/internals/features/finance/fees/service"
	payController "napps_backend/internals/features/finance/payments/controller"
	payRoute "napps_backend/internals/features/finance/payments/route"
	paySvc "napps_backend/internals/features/finance/payments/service"
)

type FinanceControllers struct {
	Fees     *feeController.FeeDefinitionController
	Payments *payController.PaymentController
}

func NewFinanceControllers(cat *feeSvc.Catalog, calc *feeSvc.Calculator, pay *paySvc.PaymentService, currency string, l zerolog.Logger) FinanceControllers {
	return FinanceControllers{
		Fees:     feeController.NewFeeDefinitionController(cat, calc, currency, l.With().Str("component", "fees").Logger()),
		Payments: payController.NewPaymentController(pay, l.With().Str("component", "payments").Logger()),
	}
}

func FinancePublicRoutes(r fiber.Router, c FinanceControllers) {
	feeRoute.FeePublicRoutes(r, c.Fees)
	payRoute.PaymentPublicRoutes(r, c.Payments)
}

func FinanceUserRoutes(r fiber.Router, c FinanceControllers) {
	payRoute.PaymentUserRoutes(r, c.Payments)
}

func FinanceAdminRoutes(r fiber.Router, c FinanceControllers) {
	feeRoute.FeeAdminRoutes(r, c.Fees)
	payRoute.PaymentAdminRoutes(r, c.Payments)
}
