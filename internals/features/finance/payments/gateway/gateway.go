// file: internals/features/finance/payments/gateway/gateway.go
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"napps_backend/internals/configs"
	"napps_backend/internals/features/finance/payments/model"
)

var (
	ErrUnavailable      = errors.New("payment gateway unavailable")
	ErrRejected         = errors.New("payment gateway rejected the request")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedWebhook = errors.New("malformed webhook payload")
	ErrNotSupported     = errors.New("operation not supported by gateway")
)

// Error membawa konteks panggilan gateway. Unwrap → salah satu sentinel di atas.
type Error struct {
	Op         string
	HTTPStatus int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s (http %d): %s", e.Op, e.HTTPStatus, msg)
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

func unavailable(op string, status int, msg string) error {
	return &Error{Op: op, HTTPStatus: status, Message: msg, Err: ErrUnavailable}
}

func rejected(op string, status int, msg string) error {
	return &Error{Op: op, HTTPStatus: status, Message: msg, Err: ErrRejected}
}

/* =========================================================
   Request / result types
========================================================= */

type SessionRequest struct {
	Email       string
	AmountMinor int64
	Reference   string
	Currency    string
	CallbackURL string
	SplitCode   *string
	Metadata    map[string]any
}

type Session struct {
	AuthorizationURL string
	AccessCode       string
}

type ResultStatus string

const (
	ResultSuccess    ResultStatus = "success"
	ResultFailed     ResultStatus = "failed"
	ResultProcessing ResultStatus = "processing"
)

const ReasonUnrecognizedStatus = "unrecognized_status"

type TransactionResult struct {
	Reference       string
	Status          ResultStatus
	RemoteStatus    string
	FailureReason   string
	TransactionID   string
	Channel         string
	Authorization   model.Authorization
	GatewayResponse string
	PaidAt          *time.Time
	AmountMinor     int64
	Currency        string
	Simulated       bool
}

type RefundRequest struct {
	TransactionID string
	Reference     string
	AmountMinor   int64
	Note          string
}

type RefundResult struct {
	RefundID string
	Status   string
}

/* =========================================================
   Webhook (normalized)
========================================================= */

type EventKind string

const (
	EventKindCharge   EventKind = "charge"
	EventKindTransfer EventKind = "transfer"
	EventKindOther    EventKind = "other"
)

type WebhookEvent struct {
	Event     string
	Kind      EventKind
	Reference string
	Result    *TransactionResult // hanya untuk charge
}

/* =========================================================
   Gateway
========================================================= */

type Gateway interface {
	Provider() string
	Mode() configs.GatewayMode
	InitializeSession(ctx context.Context, req SessionRequest) (*Session, error)
	VerifyByReference(ctx context.Context, reference string) (*TransactionResult, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
	VerifyWebhookSignature(raw []byte, header string) error
	ParseWebhook(raw []byte) (*WebhookEvent, error)
}
