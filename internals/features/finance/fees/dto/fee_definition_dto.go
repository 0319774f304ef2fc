// File: internals/features/finance/fees/dto/fee_definition_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"napps_backend/internals/features/finance/fees/model"
	feeSvc "napps_backend/internals/features/finance/fees/service"
)

/* =========================================================
   CREATE
========================================================= */

type FeeDefinitionCreateDTO struct {
	Code        string          `json:"code" validate:"required,min=2,max=60"`
	Name        string          `json:"name" validate:"required,max=160"`
	Description *string         `json:"description" validate:"omitempty"`
	BaseAmount  decimal.Decimal `json:"base_amount" validate:"gte=0"`
	Currency    string          `json:"currency" validate:"omitempty,len=3,alpha"`

	PlatformFeePercent      decimal.Decimal `json:"platform_fee_percent" validate:"gte=0,lte=100"`
	PlatformFeeFixed        int64           `json:"platform_fee_fixed" validate:"gte=0"`
	ProcessingFeePercent    decimal.Decimal `json:"processing_fee_percent" validate:"gte=0,lte=100"`
	ProcessingFeeCap        *int64          `json:"processing_fee_cap" validate:"omitempty,gte=0"`
	BeneficiarySharePercent decimal.Decimal `json:"beneficiary_share_percent" validate:"gte=0,lte=100"`
	BeneficiaryShareFixed   int64           `json:"beneficiary_share_fixed" validate:"gte=0"`

	GatewaySplitID *string    `json:"gateway_split_id" validate:"omitempty,max=80"`
	IsActive       *bool      `json:"is_active"`
	ValidFrom      *time.Time `json:"valid_from"`
	ValidUntil     *time.Time `json:"valid_until"`

	MinAmount *decimal.Decimal `json:"min_amount" validate:"omitempty,gte=0"`
	MaxAmount *decimal.Decimal `json:"max_amount" validate:"omitempty,gte=0"`
}

// ToModel: currency kosong → defaultCurrency, is_active default true.
func (in FeeDefinitionCreateDTO) ToModel(defaultCurrency string) model.FeeDefinition {
	cur := strings.ToUpper(strings.TrimSpace(in.Currency))
	if cur == "" {
		cur = defaultCurrency
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return model.FeeDefinition{
		FeeDefinitionCode:                    strings.ToLower(strings.TrimSpace(in.Code)),
		FeeDefinitionName:                    strings.TrimSpace(in.Name),
		FeeDefinitionDescription:             in.Description,
		FeeDefinitionBaseAmount:              in.BaseAmount,
		FeeDefinitionCurrency:                cur,
		FeeDefinitionPlatformFeePercent:      in.PlatformFeePercent,
		FeeDefinitionPlatformFeeFixed:        in.PlatformFeeFixed,
		FeeDefinitionProcessingFeePercent:    in.ProcessingFeePercent,
		FeeDefinitionProcessingFeeCap:        in.ProcessingFeeCap,
		FeeDefinitionBeneficiarySharePercent: in.BeneficiarySharePercent,
		FeeDefinitionBeneficiaryShareFixed:   in.BeneficiaryShareFixed,
		FeeDefinitionGatewaySplitID:          in.GatewaySplitID,
		FeeDefinitionIsActive:                active,
		FeeDefinitionValidFrom:               in.ValidFrom,
		FeeDefinitionValidUntil:              in.ValidUntil,
		FeeDefinitionMinAmount:               in.MinAmount,
		FeeDefinitionMaxAmount:               in.MaxAmount,
	}
}

/* =========================================================
   UPDATE (PATCH, semua optional)
========================================================= */

type FeeDefinitionUpdateDTO struct {
	Name        *string          `json:"name" validate:"omitempty,max=160"`
	Description *string          `json:"description"`
	BaseAmount  *decimal.Decimal `json:"base_amount" validate:"omitempty,gte=0"`

	PlatformFeePercent      *decimal.Decimal `json:"platform_fee_percent" validate:"omitempty,gte=0,lte=100"`
	PlatformFeeFixed        *int64           `json:"platform_fee_fixed" validate:"omitempty,gte=0"`
	ProcessingFeePercent    *decimal.Decimal `json:"processing_fee_percent" validate:"omitempty,gte=0,lte=100"`
	ProcessingFeeCap        *int64           `json:"processing_fee_cap" validate:"omitempty,gte=0"`
	BeneficiarySharePercent *decimal.Decimal `json:"beneficiary_share_percent" validate:"omitempty,gte=0,lte=100"`
	BeneficiaryShareFixed   *int64           `json:"beneficiary_share_fixed" validate:"omitempty,gte=0"`

	GatewaySplitID *string    `json:"gateway_split_id" validate:"omitempty,max=80"`
	IsActive       *bool      `json:"is_active"`
	ValidFrom      *time.Time `json:"valid_from"`
	ValidUntil     *time.Time `json:"valid_until"`

	MinAmount *decimal.Decimal `json:"min_amount" validate:"omitempty,gte=0"`
	MaxAmount *decimal.Decimal `json:"max_amount" validate:"omitempty,gte=0"`
}

func (in FeeDefinitionUpdateDTO) Apply(m *model.FeeDefinition) {
	if in.Name != nil {
		m.FeeDefinitionName = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		m.FeeDefinitionDescription = in.Description
	}
	if in.BaseAmount != nil {
		m.FeeDefinitionBaseAmount = *in.BaseAmount
	}
	if in.PlatformFeePercent != nil {
		m.FeeDefinitionPlatformFeePercent = *in.PlatformFeePercent
	}
	if in.PlatformFeeFixed != nil {
		m.FeeDefinitionPlatformFeeFixed = *in.PlatformFeeFixed
	}
	if in.ProcessingFeePercent != nil {
		m.FeeDefinitionProcessingFeePercent = *in.ProcessingFeePercent
	}
	if in.ProcessingFeeCap != nil {
		m.FeeDefinitionProcessingFeeCap = in.ProcessingFeeCap
	}
	if in.BeneficiarySharePercent != nil {
		m.FeeDefinitionBeneficiarySharePercent = *in.BeneficiarySharePercent
	}
	if in.BeneficiaryShareFixed != nil {
		m.FeeDefinitionBeneficiaryShareFixed = *in.BeneficiaryShareFixed
	}
	if in.GatewaySplitID != nil {
		m.FeeDefinitionGatewaySplitID = in.GatewaySplitID
	}
	if in.IsActive != nil {
		m.FeeDefinitionIsActive = *in.IsActive
	}
	if in.ValidFrom != nil {
		m.FeeDefinitionValidFrom = in.ValidFrom
	}
	if in.ValidUntil != nil {
		m.FeeDefinitionValidUntil = in.ValidUntil
	}
	if in.MinAmount != nil {
		m.FeeDefinitionMinAmount = in.MinAmount
	}
	if in.MaxAmount != nil {
		m.FeeDefinitionMaxAmount = in.MaxAmount
	}
}

// Versi baru: definisi lengkap + tanggal berlaku. Code diambil dari versi berjalan.
type FeeDefinitionVersionDTO struct {
	FeeDefinitionCreateDTO
	EffectiveFrom time.Time `json:"effective_from" validate:"required"`
}

/* =========================================================
   QUOTE
========================================================= */

type FeeQuoteRequest struct {
	Codes          []string         `json:"codes" validate:"required,min=1,max=10,dive,required,max=60"`
	OverrideAmount *decimal.Decimal `json:"override_amount" validate:"omitempty,gte=0"`
	Multiplier     int              `json:"multiplier" validate:"omitempty,gte=1,lte=10"`
}

func (r FeeQuoteRequest) Selection() feeSvc.Selection {
	return feeSvc.Selection{Codes: r.Codes, OverrideAmount: r.OverrideAmount, Multiplier: r.Multiplier}
}

type FeeQuoteResponse struct {
	Codes            []string `json:"codes"`
	PrimaryCode      string   `json:"primary_code"`
	Currency         string   `json:"currency"`
	Multiplier       int      `json:"multiplier"`
	BaseMinor        int64    `json:"base_minor"`
	PlatformFee      int64    `json:"platform_fee"`
	ProcessingFee    int64    `json:"processing_fee"`
	BeneficiaryShare int64    `json:"beneficiary_share"`
	PayerShare       int64    `json:"payer_share"`
	Total            int64    `json:"total"`
	GatewaySplitID   *string  `json:"gateway_split_id,omitempty"`
}

func ToFeeQuoteResponse(q feeSvc.Quote) FeeQuoteResponse {
	return FeeQuoteResponse{
		Codes:            q.Codes,
		PrimaryCode:      q.PrimaryCode,
		Currency:         q.Currency,
		Multiplier:       q.Multiplier,
		BaseMinor:        q.BaseMinor,
		PlatformFee:      q.PlatformFee,
		ProcessingFee:    q.ProcessingFee,
		BeneficiaryShare: q.BeneficiaryShare,
		PayerShare:       q.PayerShare(),
		Total:            q.Total(),
		GatewaySplitID:   q.GatewaySplitID,
	}
}

/* =========================================================
   RESPONSE
========================================================= */

type FeeDefinitionResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Version     int       `json:"version"`
	BaseAmount  string    `json:"base_amount"`
	Currency    string    `json:"currency"`

	PlatformFeePercent      string `json:"platform_fee_percent"`
	PlatformFeeFixed        int64  `json:"platform_fee_fixed"`
	ProcessingFeePercent    string `json:"processing_fee_percent"`
	ProcessingFeeCap        *int64 `json:"processing_fee_cap,omitempty"`
	BeneficiarySharePercent string `json:"beneficiary_share_percent"`
	BeneficiaryShareFixed   int64  `json:"beneficiary_share_fixed"`

	GatewaySplitID *string    `json:"gateway_split_id,omitempty"`
	IsActive       bool       `json:"is_active"`
	ValidFrom      *time.Time `json:"valid_from,omitempty"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	MinAmount      *string    `json:"min_amount,omitempty"`
	MaxAmount      *string    `json:"max_amount,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func decPtrStr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func ToFeeDefinitionResponse(m model.FeeDefinition) FeeDefinitionResponse {
	return FeeDefinitionResponse{
		ID:                      m.FeeDefinitionID,
		Code:                    m.FeeDefinitionCode,
		Name:                    m.FeeDefinitionName,
		Description:             m.FeeDefinitionDescription,
		Version:                 m.FeeDefinitionVersion,
		BaseAmount:              m.FeeDefinitionBaseAmount.StringFixed(2),
		Currency:                m.FeeDefinitionCurrency,
		PlatformFeePercent:      m.FeeDefinitionPlatformFeePercent.String(),
		PlatformFeeFixed:        m.FeeDefinitionPlatformFeeFixed,
		ProcessingFeePercent:    m.FeeDefinitionProcessingFeePercent.String(),
		ProcessingFeeCap:        m.FeeDefinitionProcessingFeeCap,
		BeneficiarySharePercent: m.FeeDefinitionBeneficiarySharePercent.String(),
		BeneficiaryShareFixed:   m.FeeDefinitionBeneficiaryShareFixed,
		GatewaySplitID:          m.FeeDefinitionGatewaySplitID,
		IsActive:                m.FeeDefinitionIsActive,
		ValidFrom:               m.FeeDefinitionValidFrom,
		ValidUntil:              m.FeeDefinitionValidUntil,
		MinAmount:               decPtrStr(m.FeeDefinitionMinAmount),
		MaxAmount:               decPtrStr(m.FeeDefinitionMaxAmount),
		CreatedAt:               m.FeeDefinitionCreatedAt,
		UpdatedAt:               m.FeeDefinitionUpdatedAt,
	}
}

func ToFeeDefinitionResponses(rows []model.FeeDefinition) []FeeDefinitionResponse {
	out := make([]FeeDefinitionResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToFeeDefinitionResponse(r))
	}
	return out
}
