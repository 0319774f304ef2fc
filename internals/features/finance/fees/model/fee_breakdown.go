// file: internals/features/finance/fees/model/fee_breakdown.go
package model

import "github.com/shopspring/decimal"

// FeeStructure is the pricing part of a definition, detached from catalog metadata.
type FeeStructure struct {
	PlatformFeePercent      decimal.Decimal `json:"platform_fee_percent"`
	PlatformFeeFixed        int64           `json:"platform_fee_fixed"`
	ProcessingFeePercent    decimal.Decimal `json:"processing_fee_percent"`
	ProcessingFeeCap        *int64          `json:"processing_fee_cap,omitempty"` // nil/0 = tanpa cap
	BeneficiarySharePercent decimal.Decimal `json:"beneficiary_share_percent"`
	BeneficiaryShareFixed   int64           `json:"beneficiary_share_fixed"`
}

// Breakdown: semua komponen dalam minor unit (kobo).
type Breakdown struct {
	BaseMinor        int64 `json:"base_minor"`
	PlatformFee      int64 `json:"platform_fee"`
	ProcessingFee    int64 `json:"processing_fee"`
	BeneficiaryShare int64 `json:"beneficiary_share"`
}

func (b Breakdown) Total() int64 {
	return b.BaseMinor + b.PlatformFee + b.ProcessingFee + b.BeneficiaryShare
}

// PayerShare: payer menanggung seluruh total.
func (b Breakdown) PayerShare() int64 { return b.Total() }
