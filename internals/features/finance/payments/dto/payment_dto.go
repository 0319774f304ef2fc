// file: internals/features/finance/payments/dto/payment_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	feeSvc "napps_backend/internals/features/finance/fees/service"
	"napps_backend/internals/features/finance/payments/model"
	paySvc "napps_backend/internals/features/finance/payments/service"
)

/* =========================================================
   REQUEST
========================================================= */

// CreatePaymentRequest: pilihan fee + data checkout. Email kosong = email proprietor.
type CreatePaymentRequest struct {
	Codes          []string         `json:"codes" validate:"required,min=1,max=10,dive,required,max=60"`
	OverrideAmount *decimal.Decimal `json:"override_amount" validate:"omitempty,gte=0"`
	Multiplier     int              `json:"multiplier" validate:"omitempty,gte=1,lte=10"`

	Email       string         `json:"email" validate:"omitempty,email,max=255"`
	CallbackURL string         `json:"callback_url" validate:"omitempty,url,max=500"`
	Metadata    map[string]any `json:"metadata"`
}

func (r *CreatePaymentRequest) Normalize() {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.CallbackURL = strings.TrimSpace(r.CallbackURL)
	for i := range r.Codes {
		r.Codes[i] = strings.TrimSpace(r.Codes[i])
	}
}

func (r CreatePaymentRequest) ToInput(proprietorID uuid.UUID) paySvc.InitializeInput {
	return paySvc.InitializeInput{
		ProprietorID: proprietorID,
		Selection: feeSvc.Selection{
			Codes:          r.Codes,
			OverrideAmount: r.OverrideAmount,
			Multiplier:     r.Multiplier,
		},
		Email:       r.Email,
		CallbackURL: r.CallbackURL,
		Metadata:    r.Metadata,
	}
}

type RetryPaymentRequest struct {
	CallbackURL string `json:"callback_url" validate:"omitempty,url,max=500"`
}

// RefundPaymentRequest: amount_minor kosong = refund penuh.
type RefundPaymentRequest struct {
	AmountMinor *int64 `json:"amount_minor" validate:"omitempty,gt=0"`
	Reason      string `json:"reason" validate:"omitempty,max=500"`
}

/* =========================================================
   RESPONSE
========================================================= */

type PaymentResponse struct {
	PaymentID        uuid.UUID           `json:"payment_id"`
	PaymentReference string              `json:"payment_reference"`
	PaymentProvider  string              `json:"payment_provider"`
	PaymentStatus    model.PaymentStatus `json:"payment_status"`

	PaymentProprietorID uuid.UUID `json:"payment_proprietor_id"`
	PaymentPayerEmail   string    `json:"payment_payer_email"`

	PaymentCurrency         string   `json:"payment_currency"`
	PaymentFeeCode          string   `json:"payment_fee_code"`
	PaymentFeeCodes         []string `json:"payment_fee_codes"`
	PaymentMultiplier       int      `json:"payment_multiplier"`
	PaymentAmountMinor      int64    `json:"payment_amount_minor"`
	PaymentPlatformFee      int64    `json:"payment_platform_fee"`
	PaymentProcessingFee    int64    `json:"payment_processing_fee"`
	PaymentBeneficiaryShare int64    `json:"payment_beneficiary_share"`
	PaymentPayerShare       int64    `json:"payment_payer_share"`
	PaymentTotalMinor       int64    `json:"payment_total_minor"`

	PaymentGatewayTransactionID *string              `json:"payment_gateway_transaction_id,omitempty"`
	PaymentChannel              *string              `json:"payment_channel,omitempty"`
	PaymentGatewayResponse      *string              `json:"payment_gateway_response,omitempty"`
	PaymentFailureReason        *string              `json:"payment_failure_reason,omitempty"`
	PaymentAuthorizationURL     *string              `json:"payment_authorization_url,omitempty"`
	PaymentAuthorization        *model.Authorization `json:"payment_authorization,omitempty"`
	PaymentSimulated            bool                 `json:"payment_simulated"`
	PaymentWebhookReceived      bool                 `json:"payment_webhook_received"`

	PaymentPaidAt         *time.Time `json:"payment_paid_at,omitempty"`
	PaymentRefundedAmount int64      `json:"payment_refunded_amount"`
	PaymentRefundedAt     *time.Time `json:"payment_refunded_at,omitempty"`
	PaymentCancelledAt    *time.Time `json:"payment_cancelled_at,omitempty"`
	PaymentRetryOfID      *uuid.UUID `json:"payment_retry_of_id,omitempty"`
	PaymentIsActive       bool       `json:"payment_is_active"`

	PaymentCreatedAt time.Time `json:"payment_created_at"`
	PaymentUpdatedAt time.Time `json:"payment_updated_at"`
}

func FromModel(m *model.PaymentLedgerEntry) PaymentResponse {
	out := PaymentResponse{
		PaymentID:                   m.PaymentID,
		PaymentReference:            m.PaymentReference,
		PaymentProvider:             m.PaymentProvider,
		PaymentStatus:               m.PaymentStatus,
		PaymentProprietorID:         m.PaymentProprietorID,
		PaymentPayerEmail:           m.PaymentPayerEmail,
		PaymentCurrency:             m.PaymentCurrency,
		PaymentFeeCode:              m.PaymentFeeCode,
		PaymentFeeCodes:             []string(m.PaymentFeeCodes),
		PaymentMultiplier:           m.PaymentMultiplier,
		PaymentAmountMinor:          m.PaymentAmountMinor,
		PaymentPlatformFee:          m.PaymentPlatformFee,
		PaymentProcessingFee:        m.PaymentProcessingFee,
		PaymentBeneficiaryShare:     m.PaymentBeneficiaryShare,
		PaymentPayerShare:           m.PayerShare(),
		PaymentTotalMinor:           m.TotalMinor(),
		PaymentGatewayTransactionID: m.PaymentGatewayTransactionID,
		PaymentChannel:              m.PaymentChannel,
		PaymentGatewayResponse:      m.PaymentGatewayResponse,
		PaymentFailureReason:        m.PaymentFailureReason,
		PaymentAuthorizationURL:     m.PaymentAuthorizationURL,
		PaymentSimulated:            m.PaymentSimulated,
		PaymentWebhookReceived:      m.PaymentWebhookReceived,
		PaymentPaidAt:               m.PaymentPaidAt,
		PaymentRefundedAmount:       m.PaymentRefundedAmount,
		PaymentRefundedAt:           m.PaymentRefundedAt,
		PaymentCancelledAt:          m.PaymentCancelledAt,
		PaymentRetryOfID:            m.PaymentRetryOfID,
		PaymentIsActive:             m.PaymentIsActive,
		PaymentCreatedAt:            m.PaymentCreatedAt,
		PaymentUpdatedAt:            m.PaymentUpdatedAt,
	}
	if out.PaymentFeeCodes == nil {
		out.PaymentFeeCodes = []string{}
	}
	// authorization kosong tidak ditampilkan
	if a := m.PaymentAuthorization.Data(); a != (model.Authorization{}) {
		out.PaymentAuthorization = &a
	}
	return out
}

func FromModels(rows []model.PaymentLedgerEntry) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

type InitializePaymentResponse struct {
	Reference        string          `json:"reference"`
	AuthorizationURL string          `json:"authorization_url"`
	AccessCode       string          `json:"access_code,omitempty"`
	Payment          PaymentResponse `json:"payment"`
}

func FromInitializeResult(r *paySvc.InitializeResult) InitializePaymentResponse {
	return InitializePaymentResponse{
		Reference:        r.Reference,
		AuthorizationURL: r.AuthorizationURL,
		AccessCode:       r.AccessCode,
		Payment:          FromModel(r.Entry),
	}
}
