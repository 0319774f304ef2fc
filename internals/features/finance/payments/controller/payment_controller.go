// file: internals/features/finance/payments/controller/payment_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"napps_backend/internals/features/finance/payments/model"
	paySvc "napps_backend/internals/features/finance/payments/service"
	helper "napps_backend/internals/helpers"
)

type PaymentController struct {
	Svc *paySvc.PaymentService
	Log zerolog.Logger
}

func NewPaymentController(svc *paySvc.PaymentService, l zerolog.Logger) *PaymentController {
	return &PaymentController{Svc: svc, Log: l}
}

/* =======================================================
   ERROR MAPPING
======================================================= */

func (h *PaymentController) fail(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return helper.JsonError(c, fe.Code, fe.Message)
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, paySvc.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, paySvc.ErrPayerNotFound), errors.Is(err, paySvc.ErrPaymentNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, paySvc.ErrGatewayUnavailable), errors.Is(err, paySvc.ErrGatewayRejected):
		status = fiber.StatusBadGateway
	case errors.Is(err, paySvc.ErrInvalidSignature):
		status = fiber.StatusUnauthorized
	case errors.Is(err, paySvc.ErrInvalidState), errors.Is(err, paySvc.ErrReferenceConflict):
		status = fiber.StatusConflict
	case errors.Is(err, paySvc.ErrNotAllowed):
		status = fiber.StatusForbidden
	}

	ev := h.Log.Warn()
	if status >= 500 && status != fiber.StatusBadGateway {
		ev = h.Log.Error()
	}
	ev.Err(err).Str("path", c.Path()).Int("status", status).Msg("payment request failed")

	if status == fiber.StatusInternalServerError {
		return helper.JsonError(c, status, "internal error")
	}
	return helper.JsonError(c, status, err.Error())
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Params("id")))
}

// ensureOwner: payment hanya boleh disentuh proprietor pemiliknya.
func ensureOwner(e *model.PaymentLedgerEntry, proprietorID uuid.UUID) error {
	if e.PaymentProprietorID != proprietorID {
		return &paySvc.PaymentError{Op: "access payment", Kind: paySvc.ErrNotAllowed, Reference: e.PaymentReference}
	}
	return nil
}
