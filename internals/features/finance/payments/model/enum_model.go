package model

type PaymentStatus string
type GatewayEventStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusProcessing        PaymentStatus = "processing"
	PaymentStatusSuccess           PaymentStatus = "success"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusCancelled         PaymentStatus = "cancelled"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

const (
	PaymentProviderPaystack  = "paystack"
	PaymentProviderMidtrans  = "midtrans"
	PaymentProviderSimulated = "simulated"
)

const ChannelSimulated = "simulated"

const (
	GatewayEventStatusReceived   GatewayEventStatus = "received"
	GatewayEventStatusProcessing GatewayEventStatus = "processing"
	GatewayEventStatusSuccess    GatewayEventStatus = "success"
	GatewayEventStatusFailed     GatewayEventStatus = "failed"
	GatewayEventStatusIgnored    GatewayEventStatus = "ignored"
)

/* ===================== State machine ===================== */

// transitionSources: status tujuan → status asal yang sah. Tidak ada transisi mundur.
var transitionSources = map[PaymentStatus][]PaymentStatus{
	PaymentStatusProcessing:        {PaymentStatusPending},
	PaymentStatusSuccess:           {PaymentStatusPending, PaymentStatusProcessing},
	PaymentStatusFailed:            {PaymentStatusPending, PaymentStatusProcessing},
	PaymentStatusCancelled:         {PaymentStatusPending, PaymentStatusProcessing},
	PaymentStatusRefunded:          {PaymentStatusSuccess},
	PaymentStatusPartiallyRefunded: {PaymentStatusSuccess},
}

// SourcesFor returns the statuses from which to is reachable.
func SourcesFor(to PaymentStatus) []PaymentStatus {
	return append([]PaymentStatus(nil), transitionSources[to]...)
}

func CanTransition(from, to PaymentStatus) bool {
	for _, s := range transitionSources[to] {
		if s == from {
			return true
		}
	}
	return false
}

// IsTerminal: verify/webhook tidak lagi mengubah entry dengan status ini.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing:
		return false
	default:
		return true
	}
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusSuccess, PaymentStatusFailed,
		PaymentStatusCancelled, PaymentStatusRefunded, PaymentStatusPartiallyRefunded:
		return true
	}
	return false
}
