package route

import (
	"github.com/gofiber/fiber/v2"

	feeController "napps_backend/internals/features/finance/fees/controller"
	authMiddleware "napps_backend/internals/middlewares/auth"
)

/*
Public: katalog aktif + quote
Contoh mount: FeePublicRoutes(app.Group("/api/public"), ctl)
*/
func FeePublicRoutes(r fiber.Router, ctl *feeController.FeeDefinitionController) {
	fees := r.Group("/fees")
	fees.Get("/", ctl.ListActive)
	fees.Post("/quote", ctl.Quote)
}

// Admin: CRUD + publish versi baru. Group /api/a sudah dijaga staff; tulis khusus admin.
func FeeAdminRoutes(r fiber.Router, ctl *feeController.FeeDefinitionController) {
	fees := r.Group("/fees")
	fees.Get("/", ctl.List)
	fees.Get("/:id", ctl.Get)

	adminOnly := authMiddleware.IsAdmin()
	fees.Post("/", adminOnly, ctl.Create)
	fees.Patch("/:id", adminOnly, ctl.Update)
	fees.Delete("/:id", adminOnly, ctl.Delete)
	fees.Post("/:id/versions", adminOnly, ctl.PublishVersion)
}
