package service

import (
	"errors"
	"fmt"
)

var (
	ErrFeeNotFound         = errors.New("fee definition not found")
	ErrAmountOutOfRange    = errors.New("amount out of range")
	ErrInvalidSelection    = errors.New("invalid fee selection")
	ErrDuplicateDefinition = errors.New("fee definition already exists for this code and validity start")
)

// FeeError carries the offending fee code.
type FeeError struct {
	Code string
	Err  error
	Msg  string
}

func (e *FeeError) Error() string {
	switch {
	case e.Code != "" && e.Msg != "":
		return fmt.Sprintf("fee %q: %s: %v", e.Code, e.Msg, e.Err)
	case e.Code != "":
		return fmt.Sprintf("fee %q: %v", e.Code, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *FeeError) Unwrap() error { return e.Err }

func feeErr(code string, err error, msg string) error {
	return &FeeError{Code: code, Err: err, Msg: msg}
}
