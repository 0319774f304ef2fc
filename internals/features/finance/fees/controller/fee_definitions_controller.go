// file: internals/features/finance/fees/controller/fee_definitions_controller.go
package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"napps_backend/internals/features/finance/fees/dto"
	feeModel "napps_backend/internals/features/finance/fees/model"
	feeSvc "napps_backend/internals/features/finance/fees/service"
	helper "napps_backend/internals/helpers"
)

type FeeDefinitionController struct {
	Catalog         *feeSvc.Catalog
	Calculator      *feeSvc.Calculator
	DefaultCurrency string
	Log             zerolog.Logger
}

func NewFeeDefinitionController(cat *feeSvc.Catalog, calc *feeSvc.Calculator, defaultCurrency string, l zerolog.Logger) *FeeDefinitionController {
	return &FeeDefinitionController{Catalog: cat, Calculator: calc, DefaultCurrency: defaultCurrency, Log: l}
}

/* =======================================================
   ERROR MAPPING
======================================================= */

func (h *FeeDefinitionController) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, feeSvc.ErrFeeNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, feeSvc.ErrDuplicateDefinition):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, feeSvc.ErrAmountOutOfRange),
		errors.Is(err, feeSvc.ErrInvalidSelection),
		errors.Is(err, feeModel.ErrInvalidPercent),
		errors.Is(err, feeModel.ErrNegativeAmount):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	var fe *feeSvc.FeeError
	if errors.As(err, &fe) {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	h.Log.Error().Err(err).Str("path", c.Path()).Msg("fee definition request failed")
	return helper.JsonError(c, fiber.StatusInternalServerError, "internal error")
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Params("id")))
}

/* =======================================================
   PUBLIC
======================================================= */

// GET /api/public/fees
func (h *FeeDefinitionController) ListActive(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 50, 200)
	rows, total, err := h.Catalog.List(c.UserContext(), feeSvc.ListFilter{
		Code:       c.Query("code"),
		ActiveOnly: true,
		At:         time.Now(),
		Offset:     p.Offset,
		Limit:      p.Limit,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToFeeDefinitionResponses(rows), helper.BuildPagination(total, p, len(rows)))
}

// POST /api/public/fees/quote
func (h *FeeDefinitionController) Quote(c *fiber.Ctx) error {
	var in dto.FeeQuoteRequest
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := helper.Validator().Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}
	q, err := h.Calculator.CalculateSelection(c.UserContext(), in.Selection())
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonOK(c, "quote computed", dto.ToFeeQuoteResponse(q))
}

/* =======================================================
   ADMIN
======================================================= */

// GET /api/a/fees
func (h *FeeDefinitionController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 50, 200)
	rows, total, err := h.Catalog.List(c.UserContext(), feeSvc.ListFilter{
		Code:       c.Query("code"),
		ActiveOnly: c.QueryBool("active", false),
		Offset:     p.Offset,
		Limit:      p.Limit,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToFeeDefinitionResponses(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /api/a/fees/:id
func (h *FeeDefinitionController) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	m, err := h.Catalog.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToFeeDefinitionResponse(*m))
}

// POST /api/a/fees
func (h *FeeDefinitionController) Create(c *fiber.Ctx) error {
	var in dto.FeeDefinitionCreateDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := helper.Validator().Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}

	m := in.ToModel(h.DefaultCurrency)
	if err := h.Catalog.Create(c.UserContext(), &m); err != nil {
		return h.fail(c, err)
	}
	h.Log.Info().Str("code", m.FeeDefinitionCode).Str("id", m.FeeDefinitionID.String()).Msg("fee definition created")
	return helper.JsonCreated(c, "fee definition created", dto.ToFeeDefinitionResponse(m))
}

// PATCH /api/a/fees/:id
func (h *FeeDefinitionController) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	var in dto.FeeDefinitionUpdateDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := helper.Validator().Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}

	m, err := h.Catalog.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	in.Apply(m)
	if err := h.Catalog.Save(c.UserContext(), m); err != nil {
		return h.fail(c, err)
	}
	return helper.JsonUpdated(c, "fee definition updated", dto.ToFeeDefinitionResponse(*m))
}

// POST /api/a/fees/:id/versions
func (h *FeeDefinitionController) PublishVersion(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	cur, err := h.Catalog.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}

	var in dto.FeeDefinitionVersionDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	// code selalu ikut versi berjalan
	in.Code = cur.FeeDefinitionCode
	if strings.TrimSpace(in.Currency) == "" {
		in.Currency = cur.FeeDefinitionCurrency
	}
	if err := helper.Validator().Struct(in); err != nil {
		return helper.ValidationError(c, err)
	}

	next := in.ToModel(h.DefaultCurrency)
	next.FeeDefinitionValidUntil = nil
	if err := h.Catalog.PublishVersion(c.UserContext(), id, &next, in.EffectiveFrom); err != nil {
		return h.fail(c, err)
	}
	h.Log.Info().
		Str("code", next.FeeDefinitionCode).
		Int("version", next.FeeDefinitionVersion).
		Time("effective_from", in.EffectiveFrom).
		Msg("fee definition version published")
	return helper.JsonCreated(c, "fee definition version published", dto.ToFeeDefinitionResponse(next))
}

// DELETE /api/a/fees/:id (soft delete)
func (h *FeeDefinitionController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	if err := h.Catalog.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return helper.JsonDeleted(c, "fee definition deleted", fiber.Map{"id": id})
}
