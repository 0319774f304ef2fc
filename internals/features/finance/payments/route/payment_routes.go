package route

import (
	"github.com/gofiber/fiber/v2"

	paymentController "napps_backend/internals/features/finance/payments/controller"
	authMiddleware "napps_backend/internals/middlewares/auth"
)

/*
Public: webhook gateway + verify + simulate
Contoh mount: PaymentPublicRoutes(app.Group("/api/public"), ctl)
*/
func PaymentPublicRoutes(r fiber.Router, ctl *paymentController.PaymentController) {
	pay := r.Group("/payments")
	pay.Post("/webhook", ctl.Webhook)
	pay.Get("/verify/:reference", ctl.VerifyPayment)
	// GET ikut didaftarkan karena authorization_url simulasi dibuka langsung di browser
	pay.Get("/simulate/:reference", ctl.SimulatePayment)
	pay.Post("/simulate/:reference", ctl.SimulatePayment)
}

// User (JWT): payment milik proprietor yang login.
func PaymentUserRoutes(r fiber.Router, ctl *paymentController.PaymentController) {
	pay := r.Group("/payments")
	pay.Post("/", ctl.CreatePayment)
	pay.Get("/my", ctl.MyPayments)
	pay.Post("/:id/retry", ctl.RetryPayment)
	pay.Post("/:reference/cancel", ctl.CancelPayment)
}

// Admin: group /api/a dijaga staff (admin/finance); refund khusus admin.
func PaymentAdminRoutes(r fiber.Router, ctl *paymentController.PaymentController) {
	pay := r.Group("/payments")
	pay.Get("/", ctl.ListPayments)
	pay.Get("/:id", ctl.GetPayment)
	pay.Post("/:id/refund", authMiddleware.IsAdmin(), ctl.RefundPayment)

	r.Get("/payment-gateway-events", ctl.ListGatewayEvents)
}
