package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrPayerNotFound      = errors.New("payer not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayRejected    = errors.New("payment gateway rejected the request")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrInvalidState       = errors.New("invalid payment state")
	ErrReferenceConflict  = errors.New("payment reference conflict")
	ErrNotAllowed         = errors.New("operation not allowed")
)

// PaymentError membawa operasi dan reference yang gagal. Kind selalu salah satu sentinel di atas.
type PaymentError struct {
	Op        string
	Kind      error
	Reference string
	Err       error
}

func (e *PaymentError) Error() string {
	msg := e.Op
	if e.Reference != "" {
		msg += " " + e.Reference
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil && e.Err != e.Kind {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PaymentError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func (e *PaymentError) Is(target error) bool { return target == e.Kind }

func payErr(op string, kind error, ref string, err error) error {
	return &PaymentError{Op: op, Kind: kind, Reference: ref, Err: err}
}

func payErrf(op string, kind error, ref string, format string, args ...any) error {
	return &PaymentError{Op: op, Kind: kind, Reference: ref, Err: fmt.Errorf(format, args...)}
}
