package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"napps_backend/internals/features/finance/payments/dto"
	helper "napps_backend/internals/helpers"
)

const SignatureHeader = "X-Paystack-Signature"

// POST /api/public/payments/webhook
// Body dibaca mentah; signature dihitung atas byte asli, bukan hasil re-encode.
func (h *PaymentController) Webhook(c *fiber.Ctx) error {
	raw := append([]byte(nil), c.Body()...)
	out, err := h.Svc.HandleWebhook(c.UserContext(), raw, c.Get(SignatureHeader))
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonOK(c, "webhook received", dto.FromWebhookOutcome(out))
}

// GET /api/public/payments/verify/:reference
func (h *PaymentController) VerifyPayment(c *fiber.Ctx) error {
	e, err := h.Svc.VerifyPayment(c.UserContext(), strings.TrimSpace(c.Params("reference")))
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonOK(c, "payment verified", dto.FromModel(e))
}

// POST /api/public/payments/simulate/:reference (hanya GATEWAY_MODE=simulated)
func (h *PaymentController) SimulatePayment(c *fiber.Ctx) error {
	e, err := h.Svc.SimulatePayment(c.UserContext(), strings.TrimSpace(c.Params("reference")))
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonOK(c, "payment simulated", dto.FromModel(e))
}
