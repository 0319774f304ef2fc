package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"napps_backend/internals/features/finance/payments/model"
	paySvc "napps_backend/internals/features/finance/payments/service"
)

type PaymentGatewayEventResponse struct {
	GatewayEventID        uuid.UUID                `json:"gateway_event_id"`
	GatewayEventPaymentID *uuid.UUID               `json:"gateway_event_payment_id,omitempty"`
	GatewayEventProvider  string                   `json:"gateway_event_provider"`
	GatewayEventType      *string                  `json:"gateway_event_type,omitempty"`
	GatewayEventReference *string                  `json:"gateway_event_reference,omitempty"`
	GatewayEventPayload   datatypes.JSON           `json:"gateway_event_payload,omitempty"`
	GatewayEventStatus    model.GatewayEventStatus `json:"gateway_event_status"`
	GatewayEventError     *string                  `json:"gateway_event_error,omitempty"`

	GatewayEventReceivedAt  time.Time  `json:"gateway_event_received_at"`
	GatewayEventProcessedAt *time.Time `json:"gateway_event_processed_at,omitempty"`
}

// signature tidak pernah dikirim balik
func FromGatewayEvent(m *model.PaymentGatewayEvent) PaymentGatewayEventResponse {
	return PaymentGatewayEventResponse{
		GatewayEventID:          m.GatewayEventID,
		GatewayEventPaymentID:   m.GatewayEventPaymentID,
		GatewayEventProvider:    m.GatewayEventProvider,
		GatewayEventType:        m.GatewayEventType,
		GatewayEventReference:   m.GatewayEventReference,
		GatewayEventPayload:     m.GatewayEventPayload,
		GatewayEventStatus:      m.GatewayEventStatus,
		GatewayEventError:       m.GatewayEventError,
		GatewayEventReceivedAt:  m.GatewayEventReceivedAt,
		GatewayEventProcessedAt: m.GatewayEventProcessedAt,
	}
}

func FromGatewayEvents(rows []model.PaymentGatewayEvent) []PaymentGatewayEventResponse {
	out := make([]PaymentGatewayEventResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromGatewayEvent(&rows[i]))
	}
	return out
}

type WebhookAckResponse struct {
	Status        model.GatewayEventStatus `json:"status"`
	Event         string                   `json:"event"`
	Reference     string                   `json:"reference,omitempty"`
	PaymentStatus model.PaymentStatus      `json:"payment_status,omitempty"`
}

func FromWebhookOutcome(o *paySvc.WebhookOutcome) WebhookAckResponse {
	out := WebhookAckResponse{Status: o.Status, Event: o.Event, Reference: o.Reference}
	if o.Payment != nil {
		out.PaymentStatus = o.Payment.PaymentStatus
	}
	return out
}
