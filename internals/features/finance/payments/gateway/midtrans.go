// file: internals/features/finance/payments/gateway/midtrans.go
package gateway

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/rs/zerolog"

	"napps_backend/internals/configs"
	"napps_backend/internals/features/finance/payments/model"
	helper "napps_backend/internals/helpers"
)

/* =========================================================
   Midtrans Client (Snap + Core API)
========================================================= */

type Midtrans struct {
	serverKey string
	snap      snap.Client
	core      coreapi.Client
	log       zerolog.Logger
}

func NewMidtrans(cfg configs.GatewayConfig, l zerolog.Logger) *Midtrans {
	env := midtrans.Sandbox
	if cfg.MidtransUseProd {
		env = midtrans.Production
	}
	m := &Midtrans{serverKey: cfg.MidtransServerKey, log: l}
	m.snap.New(cfg.MidtransServerKey, env)
	m.core.New(cfg.MidtransServerKey, env)
	return m
}

func (m *Midtrans) Provider() string          { return model.PaymentProviderMidtrans }
func (m *Midtrans) Mode() configs.GatewayMode { return configs.GatewayModeLive }

// Midtrans bekerja dengan major unit; pecahan dibulatkan ke atas supaya tidak kurang bayar.
func toMajor(minor int64) int64 { return (minor + 99) / 100 }

func parseGross(s string) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int64(f*100 + 0.5)
}

func midtransErr(op string, e *midtrans.Error) error {
	if e.StatusCode == 0 || e.StatusCode >= 500 {
		return unavailable(op, e.StatusCode, e.Message)
	}
	return rejected(op, e.StatusCode, e.Message)
}

// MapMidtransStatus mengonversi transaction_status/fraud_status Midtrans.
func MapMidtransStatus(transactionStatus, fraudStatus string) (ResultStatus, string) {
	ts := strings.ToLower(strings.TrimSpace(transactionStatus))
	fraud := strings.ToLower(strings.TrimSpace(fraudStatus))

	switch ts {
	case "capture":
		switch fraud {
		case "", "accept":
			return ResultSuccess, ""
		case "challenge":
			return ResultProcessing, ""
		}
		return ResultFailed, "fraud_" + fraud
	case "settlement":
		return ResultSuccess, ""
	case "pending", "authorize":
		return ResultProcessing, ""
	case "deny", "cancel", "expire", "failure":
		return ResultFailed, ts
	}
	return ResultFailed, ReasonUnrecognizedStatus
}

func (m *Midtrans) InitializeSession(_ context.Context, req SessionRequest) (*Session, error) {
	gross := toMajor(req.AmountMinor)
	sr := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.Reference,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			Email: req.Email,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:       req.Reference,
			Price:    gross,
			Qty:      1,
			Name:     "NAPPS dues",
			Category: "dues",
		}},
	}
	if req.CallbackURL != "" {
		sr.Callbacks = &snap.Callbacks{Finish: req.CallbackURL}
	}

	resp, merr := m.snap.CreateTransaction(sr)
	if merr != nil {
		return nil, midtransErr("initialize transaction", merr)
	}
	return &Session{AuthorizationURL: resp.RedirectURL, AccessCode: resp.Token}, nil
}

func (m *Midtrans) VerifyByReference(_ context.Context, reference string) (*TransactionResult, error) {
	resp, merr := m.core.CheckTransaction(reference)
	if merr != nil {
		return nil, midtransErr("verify transaction", merr)
	}
	status, reason := MapMidtransStatus(resp.TransactionStatus, resp.FraudStatus)
	res := &TransactionResult{
		Reference:       reference,
		Status:          status,
		RemoteStatus:    resp.TransactionStatus,
		FailureReason:   reason,
		TransactionID:   resp.TransactionID,
		Channel:         resp.PaymentType,
		GatewayResponse: resp.StatusMessage,
		AmountMinor:     parseGross(resp.GrossAmount),
		Currency:        resp.Currency,
		Authorization: model.Authorization{
			CardType: resp.CardType,
			Bank:     resp.Bank,
			Last4:    last4(resp.MaskedCard),
		},
	}
	if status == ResultSuccess {
		res.PaidAt = parseMidtransTime(resp.SettlementTime, resp.TransactionTime)
	}
	return res, nil
}

func (m *Midtrans) Refund(_ context.Context, req RefundRequest) (*RefundResult, error) {
	key := req.Reference + "-refund-" + strconv.FormatInt(time.Now().Unix(), 10)
	resp, merr := m.core.RefundTransaction(req.Reference, &coreapi.RefundReq{
		RefundKey: key,
		Amount:    toMajor(req.AmountMinor),
		Reason:    req.Note,
	})
	if merr != nil {
		return nil, midtransErr("refund transaction", merr)
	}
	return &RefundResult{RefundID: key, Status: resp.TransactionStatus}, nil
}

/* =========================================================
   Webhook (notification)
========================================================= */

type midtransNotification struct {
	OrderID           string `json:"order_id" validate:"required"`
	StatusCode        string `json:"status_code" validate:"required"`
	GrossAmount       string `json:"gross_amount" validate:"required"`
	SignatureKey      string `json:"signature_key" validate:"required"`
	TransactionStatus string `json:"transaction_status" validate:"required"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
	PaymentType       string `json:"payment_type"`
	StatusMessage     string `json:"status_message"`
	Currency          string `json:"currency"`
	SettlementTime    string `json:"settlement_time"`
	TransactionTime   string `json:"transaction_time"`
}

func sha512sum(s string) string {
	h := sha512.Sum512([]byte(s))
	return hex.EncodeToString(h[:])
}

func (m *Midtrans) decodeNotification(raw []byte) (*midtransNotification, error) {
	var n midtransNotification
	if err := sonic.Unmarshal(raw, &n); err != nil {
		return nil, &Error{Op: "parse webhook", Message: err.Error(), Err: ErrMalformedWebhook}
	}
	if err := helper.Validator().Struct(n); err != nil {
		return nil, &Error{Op: "parse webhook", Message: err.Error(), Err: ErrMalformedWebhook}
	}
	return &n, nil
}

// VerifyWebhookSignature: SHA512(order_id+status_code+gross_amount+server_key), signature ada di body.
func (m *Midtrans) VerifyWebhookSignature(raw []byte, _ string) error {
	n, err := m.decodeNotification(raw)
	if err != nil {
		return &Error{Op: "verify webhook", Message: "unreadable notification", Err: ErrInvalidSignature}
	}
	want := sha512sum(n.OrderID + n.StatusCode + n.GrossAmount + m.serverKey)
	got := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return &Error{Op: "verify webhook", Message: "signature mismatch", Err: ErrInvalidSignature}
	}
	return nil
}

func (m *Midtrans) ParseWebhook(raw []byte) (*WebhookEvent, error) {
	n, err := m.decodeNotification(raw)
	if err != nil {
		return nil, err
	}
	status, reason := MapMidtransStatus(n.TransactionStatus, n.FraudStatus)
	res := &TransactionResult{
		Reference:       n.OrderID,
		Status:          status,
		RemoteStatus:    n.TransactionStatus,
		FailureReason:   reason,
		TransactionID:   n.TransactionID,
		Channel:         n.PaymentType,
		GatewayResponse: n.StatusMessage,
		AmountMinor:     parseGross(n.GrossAmount),
		Currency:        n.Currency,
	}
	if status == ResultSuccess {
		res.PaidAt = parseMidtransTime(n.SettlementTime, n.TransactionTime)
	}
	event := "charge.success"
	if status != ResultSuccess {
		event = "charge." + strings.ToLower(n.TransactionStatus)
	}
	return &WebhookEvent{Event: event, Kind: EventKindCharge, Reference: n.OrderID, Result: res}, nil
}

/* =========================================================
   Utils
========================================================= */

// Midtrans mengirim waktu WIB tanpa zona: "2006-01-02 15:04:05".
var wib = time.FixedZone("WIB", 7*3600)

func parseMidtransTime(candidates ...string) *time.Time {
	for _, s := range candidates {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, wib); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

func last4(masked string) string {
	masked = strings.TrimSpace(masked)
	if len(masked) < 4 {
		return ""
	}
	return masked[len(masked)-4:]
}
