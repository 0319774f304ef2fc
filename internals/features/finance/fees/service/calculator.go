// file: internals/features/finance/fees/service/calculator.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"napps_backend/internals/features/finance/fees/model"
)

// MaxMultiplier membatasi pengali biaya pendaftaran (mis. jumlah cabang sekolah).
const MaxMultiplier = 10

var hundred = decimal.NewFromInt(100)

// Resolver mengembalikan definisi aktif untuk sebuah kode pada waktu tertentu.
type Resolver interface {
	ResolveActive(ctx context.Context, code string, at time.Time) (*model.FeeDefinition, error)
}

// Selection: satu atau beberapa kode fee (bundle). Kode pertama = primary.
type Selection struct {
	Codes          []string
	OverrideAmount *decimal.Decimal
	Multiplier     int
}

type Quote struct {
	model.Breakdown
	Codes          []string
	PrimaryCode    string
	Currency       string
	GatewaySplitID *string
	Multiplier     int
}

type Calculator struct {
	resolver Resolver
	now      func() time.Time
}

func NewCalculator(r Resolver) *Calculator {
	return &Calculator{resolver: r, now: time.Now}
}

// WithClock dipakai test untuk mengunci "sekarang".
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	c.now = now
	return c
}

/* ==========================================================
   Pure arithmetic
========================================================== */

// ToMinor converts a major-unit amount to minor units, rounding half-up.
func ToMinor(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func percentOf(minor int64, pct decimal.Decimal) int64 {
	if pct.IsZero() || minor == 0 {
		return 0
	}
	return decimal.NewFromInt(minor).Mul(pct).Div(hundred).Round(0).IntPart()
}

// ComputeBreakdown rounds every component on its own; the total is never rounded.
func ComputeBreakdown(s model.FeeStructure, baseMinor int64) model.Breakdown {
	processing := percentOf(baseMinor, s.ProcessingFeePercent)
	if s.ProcessingFeeCap != nil && *s.ProcessingFeeCap > 0 && processing > *s.ProcessingFeeCap {
		processing = *s.ProcessingFeeCap
	}
	return model.Breakdown{
		BaseMinor:        baseMinor,
		PlatformFee:      s.PlatformFeeFixed + percentOf(baseMinor, s.PlatformFeePercent),
		ProcessingFee:    processing,
		BeneficiaryShare: s.BeneficiaryShareFixed + percentOf(baseMinor, s.BeneficiarySharePercent),
	}
}

/* ==========================================================
   Catalog-backed calculation
========================================================== */

func (c *Calculator) Calculate(ctx context.Context, code string, override *decimal.Decimal) (Quote, error) {
	return c.CalculateSelection(ctx, Selection{Codes: []string{code}, OverrideAmount: override})
}

func (c *Calculator) CalculateSelection(ctx context.Context, sel Selection) (Quote, error) {
	codes, err := normalizeCodes(sel.Codes)
	if err != nil {
		return Quote{}, err
	}
	if sel.OverrideAmount != nil {
		if len(codes) > 1 {
			return Quote{}, feeErr("", ErrInvalidSelection, "override amount is only allowed for a single fee code")
		}
		if sel.OverrideAmount.IsNegative() {
			return Quote{}, feeErr(codes[0], ErrInvalidSelection, "override amount must not be negative")
		}
	}

	mult := sel.Multiplier
	if mult == 0 {
		mult = 1
	}
	if mult < 1 || mult > MaxMultiplier {
		return Quote{}, feeErr("", ErrInvalidSelection, "multiplier must be between 1 and 10")
	}

	now := c.now()
	var primary *model.FeeDefinition
	base := decimal.Zero
	for _, code := range codes {
		def, err := c.resolver.ResolveActive(ctx, code, now)
		if err != nil {
			return Quote{}, err
		}
		if primary == nil {
			primary = def
		} else if def.FeeDefinitionCurrency != primary.FeeDefinitionCurrency {
			return Quote{}, feeErr(code, ErrInvalidSelection, "currency differs from "+primary.FeeDefinitionCode)
		}

		amount := def.FeeDefinitionBaseAmount
		if sel.OverrideAmount != nil {
			amount = *sel.OverrideAmount
		}
		// batas min/max dicek sebelum dikali multiplier
		if !def.InRange(amount) {
			return Quote{}, feeErr(code, ErrAmountOutOfRange, "amount "+amount.StringFixed(2))
		}
		base = base.Add(amount)
	}

	bd := ComputeBreakdown(primary.Structure(), ToMinor(base)*int64(mult))
	return Quote{
		Breakdown:      bd,
		Codes:          codes,
		PrimaryCode:    primary.FeeDefinitionCode,
		Currency:       primary.FeeDefinitionCurrency,
		GatewaySplitID: primary.FeeDefinitionGatewaySplitID,
		Multiplier:     mult,
	}, nil
}

func normalizeCodes(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, feeErr("", ErrInvalidSelection, "at least one fee code is required")
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		code := strings.ToLower(strings.TrimSpace(raw))
		if code == "" {
			return nil, feeErr("", ErrInvalidSelection, "empty fee code")
		}
		if _, dup := seen[code]; dup {
			return nil, feeErr(code, ErrInvalidSelection, "duplicate fee code")
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}
