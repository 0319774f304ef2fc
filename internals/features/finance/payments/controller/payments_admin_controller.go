package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"napps_backend/internals/features/finance/payments/dto"
	"napps_backend/internals/features/finance/payments/model"
	paySvc "napps_backend/internals/features/finance/payments/service"
	helper "napps_backend/internals/helpers"
)

/*
GET /api/a/payments
Query:
  - status, provider, reference (LIKE), proprietor_id
  - from, to (RFC3339 atau YYYY-MM-DD)
  - active=true → hanya entry aktif
  - page, per_page
*/
func (h *PaymentController) ListPayments(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 200)
	f := paySvc.ListFilter{
		Status:     model.PaymentStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Provider:   strings.TrimSpace(c.Query("provider")),
		Reference:  strings.TrimSpace(c.Query("reference")),
		ActiveOnly: c.QueryBool("active", false),
		Offset:     p.Offset,
		Limit:      p.Limit,
	}
	if f.Status != "" && !f.Status.Valid() {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid status")
	}
	if s := strings.TrimSpace(c.Query("proprietor_id")); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid proprietor_id")
		}
		f.ProprietorID = &id
	}
	var err error
	if f.From, err = parseTimeQuery(c, "from"); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid from")
	}
	if f.To, err = parseTimeQuery(c, "to"); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid to")
	}

	rows, total, err := h.Svc.ListPayments(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /api/a/payments/:id
func (h *PaymentController) GetPayment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	e, err := h.Svc.GetPayment(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(e))
}

// POST /api/a/payments/:id/refund
func (h *PaymentController) RefundPayment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	var in dto.RefundPaymentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
		}
	}
	if err := helper.Validator().Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}

	amount := int64(0)
	if in.AmountMinor != nil {
		amount = *in.AmountMinor
	} else {
		e, err := h.Svc.GetPayment(c.UserContext(), id)
		if err != nil {
			return h.fail(c, err)
		}
		amount = e.TotalMinor()
	}

	out, err := h.Svc.RefundPayment(c.UserContext(), id, amount, strings.TrimSpace(in.Reason))
	if err != nil {
		return h.fail(c, err)
	}
	h.Log.Info().
		Str("reference", out.PaymentReference).
		Int64("amount_minor", amount).
		Str("status", string(out.PaymentStatus)).
		Msg("payment refunded")
	return helper.JsonUpdated(c, "payment refunded", dto.FromModel(out))
}

// GET /api/a/payment-gateway-events?provider=&status=&reference=&payment_id=
func (h *PaymentController) ListGatewayEvents(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 200)
	f := paySvc.EventFilter{
		Provider:  strings.TrimSpace(c.Query("provider")),
		Status:    model.GatewayEventStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Reference: strings.TrimSpace(c.Query("reference")),
		Offset:    p.Offset,
		Limit:     p.Limit,
	}
	if s := strings.TrimSpace(c.Query("payment_id")); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid payment_id")
		}
		f.PaymentID = &id
	}

	rows, total, err := h.Svc.ListGatewayEvents(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromGatewayEvents(rows), helper.BuildPagination(total, p, len(rows)))
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	_, err := time.Parse(time.RFC3339, s)
	return nil, err
}
