package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	feeModel "napps_backend/internals/features/finance/fees/model"
)

// Authorization: ringkasan instrumen bayar dari gateway (tanpa data kartu sensitif).
type Authorization struct {
	CardType string `json:"card_type,omitempty"`
	Bank     string `json:"bank,omitempty"`
	Last4    string `json:"last4,omitempty"`
	Brand    string `json:"brand,omitempty"`
}

/* ===================== Model ===================== */

type PaymentLedgerEntry struct {
	PaymentID uuid.UUID `gorm:"column:payment_id;type:uuid;primaryKey" json:"payment_id"`

	// Reference dibuat di sini, unik & immutable
	PaymentReference            string  `gorm:"column:payment_reference;type:varchar(64);not null;uniqueIndex:uq_payment_ledger_reference" json:"payment_reference"`
	PaymentGatewayTransactionID *string `gorm:"column:payment_gateway_transaction_id;type:varchar(64)" json:"payment_gateway_transaction_id,omitempty"`
	PaymentProvider             string  `gorm:"column:payment_provider;type:varchar(20);not null" json:"payment_provider"`

	// Payer
	PaymentProprietorID uuid.UUID  `gorm:"column:payment_proprietor_id;type:uuid;not null;index:ix_payment_ledger_proprietor" json:"payment_proprietor_id"`
	PaymentPayerEmail   string     `gorm:"column:payment_payer_email;type:varchar(255);not null" json:"payment_payer_email"`
	PaymentSchoolID     *uuid.UUID `gorm:"column:payment_school_id;type:uuid" json:"payment_school_id,omitempty"`

	// Nominal (minor unit), principal setelah multiplier
	PaymentAmountMinor int64  `gorm:"column:payment_amount_minor;type:bigint;not null" json:"payment_amount_minor"`
	PaymentCurrency    string `gorm:"column:payment_currency;type:varchar(3);not null" json:"payment_currency"`
	PaymentMultiplier  int    `gorm:"column:payment_multiplier;type:int;not null" json:"payment_multiplier"`

	// Snapshot breakdown
	PaymentFeeCode          string                      `gorm:"column:payment_fee_code;type:varchar(60);not null" json:"payment_fee_code"`
	PaymentFeeCodes         datatypes.JSONSlice[string] `gorm:"column:payment_fee_codes" json:"payment_fee_codes"`
	PaymentPlatformFee      int64                       `gorm:"column:payment_platform_fee;type:bigint;not null" json:"payment_platform_fee"`
	PaymentProcessingFee    int64                       `gorm:"column:payment_processing_fee;type:bigint;not null" json:"payment_processing_fee"`
	PaymentBeneficiaryShare int64                       `gorm:"column:payment_beneficiary_share;type:bigint;not null" json:"payment_beneficiary_share"`
	PaymentGatewaySplitID   *string                     `gorm:"column:payment_gateway_split_id;type:varchar(80)" json:"payment_gateway_split_id,omitempty"`

	PaymentStatus PaymentStatus `gorm:"column:payment_status;type:varchar(24);not null;index:ix_payment_ledger_status_created,priority:1" json:"payment_status"`

	// Info gateway
	PaymentChannel          *string                           `gorm:"column:payment_channel;type:varchar(40)" json:"payment_channel,omitempty"`
	PaymentGatewayResponse  *string                           `gorm:"column:payment_gateway_response" json:"payment_gateway_response,omitempty"`
	PaymentFailureReason    *string                           `gorm:"column:payment_failure_reason" json:"payment_failure_reason,omitempty"`
	PaymentAuthorizationURL *string                           `gorm:"column:payment_authorization_url" json:"payment_authorization_url,omitempty"`
	PaymentAccessCode       *string                           `gorm:"column:payment_access_code;type:varchar(80)" json:"payment_access_code,omitempty"`
	PaymentAuthorization    datatypes.JSONType[Authorization] `gorm:"column:payment_authorization" json:"payment_authorization"`
	PaymentMetadata         datatypes.JSONMap                 `gorm:"column:payment_metadata" json:"payment_metadata,omitempty"`
	PaymentSimulated        bool                              `gorm:"column:payment_simulated;not null" json:"payment_simulated"`
	PaymentWebhookReceived  bool                              `gorm:"column:payment_webhook_received;not null" json:"payment_webhook_received"`

	// Timestamps penting
	PaymentPaidAt         *time.Time `gorm:"column:payment_paid_at" json:"payment_paid_at,omitempty"`
	PaymentRefundedAmount int64      `gorm:"column:payment_refunded_amount;type:bigint;not null" json:"payment_refunded_amount"`
	PaymentRefundedAt     *time.Time `gorm:"column:payment_refunded_at" json:"payment_refunded_at,omitempty"`
	PaymentRefundReason   *string    `gorm:"column:payment_refund_reason" json:"payment_refund_reason,omitempty"`
	PaymentCancelledAt    *time.Time `gorm:"column:payment_cancelled_at" json:"payment_cancelled_at,omitempty"`

	PaymentRetryOfID *uuid.UUID `gorm:"column:payment_retry_of_id;type:uuid" json:"payment_retry_of_id,omitempty"`
	PaymentIsActive  bool       `gorm:"column:payment_is_active;not null" json:"payment_is_active"`

	PaymentCreatedAt time.Time `gorm:"column:payment_created_at;not null;autoCreateTime;index:ix_payment_ledger_status_created,priority:2" json:"payment_created_at"`
	PaymentUpdatedAt time.Time `gorm:"column:payment_updated_at;not null;autoUpdateTime" json:"payment_updated_at"`
}

func (PaymentLedgerEntry) TableName() string { return "payment_ledger_entries" }

func (p *PaymentLedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if p.PaymentID == uuid.Nil {
		p.PaymentID = uuid.New()
	}
	if p.PaymentMultiplier <= 0 {
		p.PaymentMultiplier = 1
	}
	return nil
}

func (p *PaymentLedgerEntry) Breakdown() feeModel.Breakdown {
	return feeModel.Breakdown{
		BaseMinor:        p.PaymentAmountMinor,
		PlatformFee:      p.PaymentPlatformFee,
		ProcessingFee:    p.PaymentProcessingFee,
		BeneficiaryShare: p.PaymentBeneficiaryShare,
	}
}

// TotalMinor: jumlah yang ditagih ke gateway. Tidak disimpan.
func (p *PaymentLedgerEntry) TotalMinor() int64 { return p.Breakdown().Total() }

func (p *PaymentLedgerEntry) PayerShare() int64 { return p.Breakdown().PayerShare() }
