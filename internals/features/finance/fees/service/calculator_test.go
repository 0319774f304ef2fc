package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"napps_backend/internals/features/finance/fees/model"
)

type stubResolver struct {
	defs map[string]*model.FeeDefinition
}

func (s *stubResolver) ResolveActive(_ context.Context, code string, at time.Time) (*model.FeeDefinition, error) {
	d, ok := s.defs[code]
	if !ok || !d.ActiveAt(at) {
		return nil, feeErr(code, ErrFeeNotFound, "")
	}
	return d, nil
}

func i64(v int64) *int64 { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func annualDues() *model.FeeDefinition {
	return &model.FeeDefinition{
		FeeDefinitionCode:                 "annual_dues",
		FeeDefinitionBaseAmount:           dec("25000"),
		FeeDefinitionCurrency:             "NGN",
		FeeDefinitionProcessingFeePercent: dec("1.5"),
		FeeDefinitionProcessingFeeCap:     i64(200000),
		FeeDefinitionIsActive:             true,
	}
}

func newTestCalculator(defs ...*model.FeeDefinition) *Calculator {
	r := &stubResolver{defs: map[string]*model.FeeDefinition{}}
	for _, d := range defs {
		r.defs[d.FeeDefinitionCode] = d
	}
	return NewCalculator(r)
}

func TestCalculate_AnnualDuesScenario(t *testing.T) {
	calc := newTestCalculator(annualDues())

	q, err := calc.Calculate(context.Background(), "annual_dues", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(2500000), q.BaseMinor)
	assert.Equal(t, int64(37500), q.ProcessingFee)
	assert.Equal(t, int64(0), q.PlatformFee)
	assert.Equal(t, int64(0), q.BeneficiaryShare)
	assert.Equal(t, int64(2537500), q.Total())
	assert.Equal(t, "NGN", q.Currency)
	assert.Equal(t, 1, q.Multiplier)
}

func TestComputeBreakdown_CapApplies(t *testing.T) {
	s := annualDues().Structure()
	bd := ComputeBreakdown(s, ToMinor(dec("200000")))
	assert.Equal(t, int64(200000), bd.ProcessingFee)
}

func TestComputeBreakdown_ZeroCapIsUncapped(t *testing.T) {
	s := annualDues().Structure()
	s.ProcessingFeeCap = i64(0)
	bd := ComputeBreakdown(s, ToMinor(dec("200000")))
	assert.Equal(t, int64(300000), bd.ProcessingFee)
}

func TestComputeBreakdown_RoundsEachComponentHalfUp(t *testing.T) {
	s := model.FeeStructure{
		PlatformFeePercent:      dec("1.5"),
		PlatformFeeFixed:        10,
		ProcessingFeePercent:    dec("2.5"),
		BeneficiarySharePercent: dec("0.5"),
		BeneficiaryShareFixed:   5,
	}
	bd := ComputeBreakdown(s, 100)

	assert.Equal(t, int64(12), bd.PlatformFee)     // 10 + round(1.5)
	assert.Equal(t, int64(3), bd.ProcessingFee)    // round(2.5)
	assert.Equal(t, int64(6), bd.BeneficiaryShare) // 5 + round(0.5)
	assert.Equal(t, int64(121), bd.Total())
}

func TestComputeBreakdown_ConservationAndCap(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		s := model.FeeStructure{
			PlatformFeePercent:      decimal.New(rng.Int63n(10001), -2),
			PlatformFeeFixed:        rng.Int63n(50000),
			ProcessingFeePercent:    decimal.New(rng.Int63n(10001), -2),
			BeneficiarySharePercent: decimal.New(rng.Int63n(10001), -2),
			BeneficiaryShareFixed:   rng.Int63n(50000),
		}
		if rng.Intn(2) == 0 {
			s.ProcessingFeeCap = i64(rng.Int63n(300000))
		}
		base := rng.Int63n(100_000_000)

		bd := ComputeBreakdown(s, base)
		require.Equal(t, base+bd.PlatformFee+bd.ProcessingFee+bd.BeneficiaryShare, bd.Total())
		require.Equal(t, bd.Total(), bd.PayerShare())
		if s.ProcessingFeeCap != nil && *s.ProcessingFeeCap > 0 {
			require.LessOrEqual(t, bd.ProcessingFee, *s.ProcessingFeeCap)
		}
		require.GreaterOrEqual(t, bd.ProcessingFee, int64(0))
	}
}

func TestCalculate_OverrideAndRange(t *testing.T) {
	def := annualDues()
	lo, hi := dec("1000"), dec("50000")
	def.FeeDefinitionMinAmount = &lo
	def.FeeDefinitionMaxAmount = &hi
	calc := newTestCalculator(def)

	over := dec("30000.50")
	q, err := calc.Calculate(context.Background(), "annual_dues", &over)
	require.NoError(t, err)
	assert.Equal(t, int64(3000050), q.BaseMinor)

	tooBig := dec("60000")
	_, err = calc.Calculate(context.Background(), "annual_dues", &tooBig)
	assert.True(t, errors.Is(err, ErrAmountOutOfRange))

	var fe *FeeError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "annual_dues", fe.Code)
}

func TestCalculate_UnknownOrInactive(t *testing.T) {
	inactive := annualDues()
	inactive.FeeDefinitionCode = "old_levy"
	inactive.FeeDefinitionIsActive = false
	calc := newTestCalculator(annualDues(), inactive)

	_, err := calc.Calculate(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrFeeNotFound)

	_, err = calc.Calculate(context.Background(), "old_levy", nil)
	assert.ErrorIs(t, err, ErrFeeNotFound)
}

func TestCalculate_ValidityWindow(t *testing.T) {
	def := annualDues()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	def.FeeDefinitionValidFrom = &from
	def.FeeDefinitionValidUntil = &until

	calc := newTestCalculator(def)

	calc.WithClock(func() time.Time { return from.Add(24 * time.Hour) })
	_, err := calc.Calculate(context.Background(), "annual_dues", nil)
	require.NoError(t, err)

	calc.WithClock(func() time.Time { return until })
	_, err = calc.Calculate(context.Background(), "annual_dues", nil)
	assert.ErrorIs(t, err, ErrFeeNotFound)
}

func TestCalculateSelection_BundleUsesPrimaryStructure(t *testing.T) {
	reg := &model.FeeDefinition{
		FeeDefinitionCode:                    "registration",
		FeeDefinitionBaseAmount:              dec("5000"),
		FeeDefinitionCurrency:                "NGN",
		FeeDefinitionPlatformFeePercent:      dec("99"),
		FeeDefinitionBeneficiarySharePercent: dec("50"),
		FeeDefinitionIsActive:                true,
	}
	calc := newTestCalculator(annualDues(), reg)

	q, err := calc.CalculateSelection(context.Background(), Selection{Codes: []string{"annual_dues", "registration"}})
	require.NoError(t, err)

	assert.Equal(t, int64(3000000), q.BaseMinor)
	assert.Equal(t, int64(45000), q.ProcessingFee)
	assert.Equal(t, int64(0), q.PlatformFee)
	assert.Equal(t, "annual_dues", q.PrimaryCode)
	assert.Equal(t, []string{"annual_dues", "registration"}, q.Codes)
}

func TestCalculateSelection_Multiplier(t *testing.T) {
	def := annualDues()
	hi := dec("25000")
	def.FeeDefinitionMaxAmount = &hi
	calc := newTestCalculator(def)

	// bound dicek pada base sebelum dikali
	q, err := calc.CalculateSelection(context.Background(), Selection{Codes: []string{"annual_dues"}, Multiplier: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(7500000), q.BaseMinor)
	assert.Equal(t, int64(112500), q.ProcessingFee)
	assert.Equal(t, 3, q.Multiplier)

	_, err = calc.CalculateSelection(context.Background(), Selection{Codes: []string{"annual_dues"}, Multiplier: MaxMultiplier + 1})
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestCalculateSelection_Rejects(t *testing.T) {
	usd := annualDues()
	usd.FeeDefinitionCode = "conference"
	usd.FeeDefinitionCurrency = "USD"
	calc := newTestCalculator(annualDues(), usd)
	ctx := context.Background()

	_, err := calc.CalculateSelection(ctx, Selection{})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	_, err = calc.CalculateSelection(ctx, Selection{Codes: []string{"annual_dues", " ANNUAL_DUES "}})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	_, err = calc.CalculateSelection(ctx, Selection{Codes: []string{"annual_dues", "conference"}})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	over := dec("100")
	_, err = calc.CalculateSelection(ctx, Selection{Codes: []string{"annual_dues", "conference"}, OverrideAmount: &over})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	neg := dec("-1")
	_, err = calc.CalculateSelection(ctx, Selection{Codes: []string{"annual_dues"}, OverrideAmount: &neg})
	assert.ErrorIs(t, err, ErrInvalidSelection)
}
