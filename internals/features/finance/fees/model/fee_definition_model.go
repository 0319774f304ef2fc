// file: internals/features/finance/fees/model/fee_definition_model.go
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// --- MODEL fee_definitions ---------------------------------------------------
type FeeDefinition struct {
	FeeDefinitionID uuid.UUID `json:"fee_definition_id" gorm:"column:fee_definition_id;type:uuid;primaryKey"`

	// Kode unik per versi (annual_dues, registration, ...)
	FeeDefinitionCode        string  `json:"fee_definition_code" gorm:"column:fee_definition_code;type:varchar(60);not null;index:ix_fee_definitions_code_from,priority:1"`
	FeeDefinitionName        string  `json:"fee_definition_name" gorm:"column:fee_definition_name;type:varchar(160);not null"`
	FeeDefinitionDescription *string `json:"fee_definition_description,omitempty" gorm:"column:fee_definition_description;type:text"`
	FeeDefinitionVersion     int     `json:"fee_definition_version" gorm:"column:fee_definition_version;type:int;not null"`

	// Nominal dasar (major unit, mis. Naira)
	FeeDefinitionBaseAmount decimal.Decimal `json:"fee_definition_base_amount" gorm:"column:fee_definition_base_amount;type:numeric(14,2);not null"`
	FeeDefinitionCurrency   string          `json:"fee_definition_currency" gorm:"column:fee_definition_currency;type:varchar(3);not null"`

	// Fee structure (fixed & cap dalam minor unit)
	FeeDefinitionPlatformFeePercent      decimal.Decimal `json:"fee_definition_platform_fee_percent" gorm:"column:fee_definition_platform_fee_percent;type:numeric(6,3);not null"`
	FeeDefinitionPlatformFeeFixed        int64           `json:"fee_definition_platform_fee_fixed" gorm:"column:fee_definition_platform_fee_fixed;type:bigint;not null"`
	FeeDefinitionProcessingFeePercent    decimal.Decimal `json:"fee_definition_processing_fee_percent" gorm:"column:fee_definition_processing_fee_percent;type:numeric(6,3);not null"`
	FeeDefinitionProcessingFeeCap        *int64          `json:"fee_definition_processing_fee_cap,omitempty" gorm:"column:fee_definition_processing_fee_cap;type:bigint"`
	FeeDefinitionBeneficiarySharePercent decimal.Decimal `json:"fee_definition_beneficiary_share_percent" gorm:"column:fee_definition_beneficiary_share_percent;type:numeric(6,3);not null"`
	FeeDefinitionBeneficiaryShareFixed   int64           `json:"fee_definition_beneficiary_share_fixed" gorm:"column:fee_definition_beneficiary_share_fixed;type:bigint;not null"`

	FeeDefinitionGatewaySplitID *string `json:"fee_definition_gateway_split_id,omitempty" gorm:"column:fee_definition_gateway_split_id;type:varchar(80)"`

	FeeDefinitionIsActive   bool       `json:"fee_definition_is_active" gorm:"column:fee_definition_is_active;not null"`
	FeeDefinitionValidFrom  *time.Time `json:"fee_definition_valid_from,omitempty" gorm:"column:fee_definition_valid_from;index:ix_fee_definitions_code_from,priority:2"`
	FeeDefinitionValidUntil *time.Time `json:"fee_definition_valid_until,omitempty" gorm:"column:fee_definition_valid_until"`

	FeeDefinitionMinAmount *decimal.Decimal `json:"fee_definition_min_amount,omitempty" gorm:"column:fee_definition_min_amount;type:numeric(14,2)"`
	FeeDefinitionMaxAmount *decimal.Decimal `json:"fee_definition_max_amount,omitempty" gorm:"column:fee_definition_max_amount;type:numeric(14,2)"`

	FeeDefinitionCreatedAt time.Time      `json:"fee_definition_created_at" gorm:"column:fee_definition_created_at;not null;autoCreateTime"`
	FeeDefinitionUpdatedAt time.Time      `json:"fee_definition_updated_at" gorm:"column:fee_definition_updated_at;not null;autoUpdateTime"`
	FeeDefinitionDeletedAt gorm.DeletedAt `json:"fee_definition_deleted_at,omitempty" gorm:"column:fee_definition_deleted_at;index"`
}

func (FeeDefinition) TableName() string { return "fee_definitions" }

// BeforeCreate: set ID jika kosong
func (f *FeeDefinition) BeforeCreate(tx *gorm.DB) error {
	if f.FeeDefinitionID == uuid.Nil {
		f.FeeDefinitionID = uuid.New()
	}
	if f.FeeDefinitionVersion <= 0 {
		f.FeeDefinitionVersion = 1
	}
	return nil
}

// BeforeSave: invariant tetap dijaga walau data masuk tanpa lewat DTO
func (f *FeeDefinition) BeforeSave(tx *gorm.DB) error {
	f.FeeDefinitionCode = strings.ToLower(strings.TrimSpace(f.FeeDefinitionCode))
	f.FeeDefinitionCurrency = strings.ToUpper(strings.TrimSpace(f.FeeDefinitionCurrency))
	return f.Validate()
}

var (
	ErrInvalidPercent = errors.New("percentage must be within [0,100]")
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// Validate checks the catalog invariants.
func (f *FeeDefinition) Validate() error {
	if strings.TrimSpace(f.FeeDefinitionCode) == "" {
		return fmt.Errorf("fee_definition_code is required")
	}
	if f.FeeDefinitionBaseAmount.IsNegative() {
		return fmt.Errorf("fee_definition_base_amount: %w", ErrNegativeAmount)
	}
	percents := map[string]decimal.Decimal{
		"platform_fee_percent":      f.FeeDefinitionPlatformFeePercent,
		"processing_fee_percent":    f.FeeDefinitionProcessingFeePercent,
		"beneficiary_share_percent": f.FeeDefinitionBeneficiarySharePercent,
	}
	for name, p := range percents {
		if p.IsNegative() || p.GreaterThan(hundred) {
			return fmt.Errorf("fee_definition_%s: %w", name, ErrInvalidPercent)
		}
	}
	if f.FeeDefinitionPlatformFeeFixed < 0 || f.FeeDefinitionBeneficiaryShareFixed < 0 {
		return fmt.Errorf("fixed fee components: %w", ErrNegativeAmount)
	}
	if f.FeeDefinitionProcessingFeeCap != nil && *f.FeeDefinitionProcessingFeeCap < 0 {
		return fmt.Errorf("fee_definition_processing_fee_cap: %w", ErrNegativeAmount)
	}
	if f.FeeDefinitionMinAmount != nil && f.FeeDefinitionMinAmount.IsNegative() {
		return fmt.Errorf("fee_definition_min_amount: %w", ErrNegativeAmount)
	}
	if f.FeeDefinitionMinAmount != nil && f.FeeDefinitionMaxAmount != nil &&
		f.FeeDefinitionMinAmount.GreaterThan(*f.FeeDefinitionMaxAmount) {
		return fmt.Errorf("fee_definition_min_amount must be <= fee_definition_max_amount")
	}
	if f.FeeDefinitionValidFrom != nil && f.FeeDefinitionValidUntil != nil &&
		!f.FeeDefinitionValidFrom.Before(*f.FeeDefinitionValidUntil) {
		return fmt.Errorf("fee_definition_valid_from must be before fee_definition_valid_until")
	}
	return nil
}

// ActiveAt reports whether the definition may be charged at t.
func (f *FeeDefinition) ActiveAt(t time.Time) bool {
	if !f.FeeDefinitionIsActive {
		return false
	}
	if f.FeeDefinitionValidFrom != nil && t.Before(*f.FeeDefinitionValidFrom) {
		return false
	}
	if f.FeeDefinitionValidUntil != nil && !t.Before(*f.FeeDefinitionValidUntil) {
		return false
	}
	return true
}

// InRange cek min/max (major unit) bila dikonfigurasi.
func (f *FeeDefinition) InRange(amount decimal.Decimal) bool {
	if f.FeeDefinitionMinAmount != nil && amount.LessThan(*f.FeeDefinitionMinAmount) {
		return false
	}
	if f.FeeDefinitionMaxAmount != nil && amount.GreaterThan(*f.FeeDefinitionMaxAmount) {
		return false
	}
	return true
}

func (f *FeeDefinition) Structure() FeeStructure {
	return FeeStructure{
		PlatformFeePercent:      f.FeeDefinitionPlatformFeePercent,
		PlatformFeeFixed:        f.FeeDefinitionPlatformFeeFixed,
		ProcessingFeePercent:    f.FeeDefinitionProcessingFeePercent,
		ProcessingFeeCap:        f.FeeDefinitionProcessingFeeCap,
		BeneficiarySharePercent: f.FeeDefinitionBeneficiarySharePercent,
		BeneficiaryShareFixed:   f.FeeDefinitionBeneficiaryShareFixed,
	}
}
