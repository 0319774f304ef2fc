package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"napps_backend/internals/features/finance/payments/dto"
	helper "napps_backend/internals/helpers"
)

// POST /api/u/payments
func (h *PaymentController) CreatePayment(c *fiber.Ctx) error {
	proprietorID, err := helper.GetProprietorIDFromToken(c)
	if err != nil {
		return h.fail(c, err)
	}

	var in dto.CreatePaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	in.Normalize()
	if err := helper.Validator().Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}

	input := in.ToInput(proprietorID)
	if input.Email == "" {
		input.Email = helper.GetEmailFromToken(c)
	}
	res, err := h.Svc.InitializePayment(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonCreated(c, "payment initialized", dto.FromInitializeResult(res))
}

// GET /api/u/payments/my
func (h *PaymentController) MyPayments(c *fiber.Ctx) error {
	proprietorID, err := helper.GetProprietorIDFromToken(c)
	if err != nil {
		return h.fail(c, err)
	}
	rows, err := h.Svc.GetPaymentsByPayer(c.UserContext(), proprietorID)
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonOK(c, "my payments", dto.FromModels(rows))
}

// POST /api/u/payments/:id/retry
func (h *PaymentController) RetryPayment(c *fiber.Ctx) error {
	proprietorID, err := helper.GetProprietorIDFromToken(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}

	var in dto.RetryPaymentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
		}
	}
	if err := helper.Validator().Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}

	old, err := h.Svc.GetPayment(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if err := ensureOwner(old, proprietorID); err != nil {
		return h.fail(c, err)
	}

	res, err := h.Svc.RetryPayment(c.UserContext(), id, strings.TrimSpace(in.CallbackURL))
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonCreated(c, "payment retried", dto.FromInitializeResult(res))
}

// POST /api/u/payments/:reference/cancel
func (h *PaymentController) CancelPayment(c *fiber.Ctx) error {
	proprietorID, err := helper.GetProprietorIDFromToken(c)
	if err != nil {
		return h.fail(c, err)
	}
	ref := strings.TrimSpace(c.Params("reference"))

	e, err := h.Svc.GetPaymentByReference(c.UserContext(), ref)
	if err != nil {
		return h.fail(c, err)
	}
	if err := ensureOwner(e, proprietorID); err != nil {
		return h.fail(c, err)
	}

	out, err := h.Svc.CancelPayment(c.UserContext(), ref)
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonUpdated(c, "payment cancelled", dto.FromModel(out))
}
