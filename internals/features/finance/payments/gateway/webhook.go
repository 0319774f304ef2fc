// file: internals/features/finance/payments/gateway/webhook.go
package gateway

import (
	"encoding/json"
	"strings"

	"github.com/bytedance/sonic"

	helper "napps_backend/internals/helpers"
)

/* =========================================================
   Paystack webhook payloads (typed)
========================================================= */

type WebhookEnvelope struct {
	Event string          `json:"event" validate:"required"`
	Data  json.RawMessage `json:"data" validate:"required"`
}

// ChargeEventData: bentuk sama dengan data di /transaction/verify.
type ChargeEventData struct {
	ID              int64                  `json:"id"`
	Reference       string                 `json:"reference" validate:"required,max=64"`
	Status          string                 `json:"status" validate:"required"`
	Amount          int64                  `json:"amount" validate:"gte=0"`
	Currency        string                 `json:"currency"`
	Channel         string                 `json:"channel"`
	GatewayResponse string                 `json:"gateway_response"`
	PaidAt          *string                `json:"paid_at"`
	Authorization   *paystackAuthorization `json:"authorization"`
}

type TransferEventData struct {
	Reference    string `json:"reference" validate:"required"`
	TransferCode string `json:"transfer_code"`
	Amount       int64  `json:"amount"`
	Status       string `json:"status"`
}

type paystackAuthorization struct {
	CardType string `json:"card_type"`
	Bank     string `json:"bank"`
	Last4    string `json:"last4"`
	Brand    string `json:"brand"`
}

// ParsePaystackWebhook decodes {event, data} and normalizes charge events.
func ParsePaystackWebhook(raw []byte) (*WebhookEvent, error) {
	var env WebhookEnvelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, &Error{Op: "parse webhook", Message: err.Error(), Err: ErrMalformedWebhook}
	}
	if err := helper.Validator().Struct(env); err != nil {
		return nil, &Error{Op: "parse webhook", Message: err.Error(), Err: ErrMalformedWebhook}
	}

	ev := &WebhookEvent{Event: env.Event}
	switch {
	case strings.HasPrefix(env.Event, "charge."):
		var d ChargeEventData
		if err := decodeData(env.Data, &d); err != nil {
			return nil, err
		}
		ev.Kind = EventKindCharge
		ev.Reference = d.Reference
		res := d.toResult()
		ev.Result = &res

	case strings.HasPrefix(env.Event, "transfer."):
		var d TransferEventData
		if err := decodeData(env.Data, &d); err != nil {
			return nil, err
		}
		ev.Kind = EventKindTransfer
		ev.Reference = d.Reference

	default:
		ev.Kind = EventKindOther
	}
	return ev, nil
}

func decodeData(raw json.RawMessage, out any) error {
	if err := sonic.Unmarshal(raw, out); err != nil {
		return &Error{Op: "parse webhook data", Message: err.Error(), Err: ErrMalformedWebhook}
	}
	if err := helper.Validator().Struct(out); err != nil {
		return &Error{Op: "parse webhook data", Message: err.Error(), Err: ErrMalformedWebhook}
	}
	return nil
}
