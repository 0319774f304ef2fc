// file: internals/features/finance/payments/gateway/paystack.go
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"napps_backend/internals/configs"
	"napps_backend/internals/features/finance/payments/model"
)

const maxResponseBytes = 1 << 20

/* =========================================================
   Status mapping
========================================================= */

// MapPaystackStatus mengonversi status Paystack menjadi status hasil internal.
func MapPaystackStatus(remote string) (ResultStatus, string) {
	switch strings.ToLower(strings.TrimSpace(remote)) {
	case "success":
		return ResultSuccess, ""
	case "failed", "reversed", "abandoned":
		return ResultFailed, strings.ToLower(strings.TrimSpace(remote))
	case "ongoing", "pending", "processing", "queued", "send_otp", "send_birthday":
		return ResultProcessing, ""
	default:
		return ResultFailed, ReasonUnrecognizedStatus
	}
}

func parsePaidAt(s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func (d ChargeEventData) toResult() TransactionResult {
	status, reason := MapPaystackStatus(d.Status)
	res := TransactionResult{
		Reference:       d.Reference,
		Status:          status,
		RemoteStatus:    d.Status,
		FailureReason:   reason,
		Channel:         d.Channel,
		GatewayResponse: d.GatewayResponse,
		AmountMinor:     d.Amount,
		Currency:        d.Currency,
	}
	if d.ID > 0 {
		res.TransactionID = strconv.FormatInt(d.ID, 10)
	}
	if status == ResultSuccess {
		res.PaidAt = parsePaidAt(d.PaidAt)
	}
	if d.Authorization != nil {
		res.Authorization = model.Authorization{
			CardType: strings.TrimSpace(d.Authorization.CardType),
			Bank:     d.Authorization.Bank,
			Last4:    d.Authorization.Last4,
			Brand:    d.Authorization.Brand,
		}
	}
	return res
}

/* =========================================================
   Paystack client
========================================================= */

type Paystack struct {
	baseURL   string
	secretKey string
	client    *http.Client
	verifier  hmacVerifier
	log       zerolog.Logger
}

func NewPaystack(cfg configs.GatewayConfig, l zerolog.Logger) *Paystack {
	return &Paystack{
		baseURL:   strings.TrimRight(cfg.PaystackBaseURL, "/"),
		secretKey: cfg.PaystackSecretKey,
		client:    &http.Client{Timeout: cfg.Timeout},
		verifier: hmacVerifier{
			secret:        cfg.WebhookSecret(),
			allowUnsigned: cfg.WebhookAllowUnsigned,
			log:           l,
		},
		log: l,
	}
}

func (p *Paystack) Provider() string          { return model.PaymentProviderPaystack }
func (p *Paystack) Mode() configs.GatewayMode { return configs.GatewayModeLive }

type paystackEnvelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type initializeBody struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"`
	Reference   string         `json:"reference"`
	Currency    string         `json:"currency,omitempty"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	SplitCode   string         `json:"split_code,omitempty"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type refundBody struct {
	Transaction  string `json:"transaction"`
	Amount       int64  `json:"amount,omitempty"`
	MerchantNote string `json:"merchant_note,omitempty"`
}

type refundData struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func (p *Paystack) InitializeSession(ctx context.Context, req SessionRequest) (*Session, error) {
	body := initializeBody{
		Email:       req.Email,
		Amount:      req.AmountMinor,
		Reference:   req.Reference,
		Currency:    req.Currency,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	}
	if req.SplitCode != nil {
		body.SplitCode = *req.SplitCode
	}

	var env paystackEnvelope[initializeData]
	if err := p.do(ctx, "initialize transaction", http.MethodPost, "/transaction/initialize", body, &env); err != nil {
		return nil, err
	}
	if env.Data.AuthorizationURL == "" {
		return nil, unavailable("initialize transaction", 0, "missing authorization_url")
	}
	return &Session{AuthorizationURL: env.Data.AuthorizationURL, AccessCode: env.Data.AccessCode}, nil
}

func (p *Paystack) VerifyByReference(ctx context.Context, reference string) (*TransactionResult, error) {
	var env paystackEnvelope[ChargeEventData]
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := p.do(ctx, "verify transaction", http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	res := env.Data.toResult()
	if res.Reference == "" {
		res.Reference = reference
	}
	return &res, nil
}

func (p *Paystack) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	tx := req.TransactionID
	if tx == "" {
		tx = req.Reference
	}
	var env paystackEnvelope[refundData]
	body := refundBody{Transaction: tx, Amount: req.AmountMinor, MerchantNote: req.Note}
	if err := p.do(ctx, "refund transaction", http.MethodPost, "/refund", body, &env); err != nil {
		return nil, err
	}
	out := &RefundResult{Status: env.Data.Status}
	if env.Data.ID > 0 {
		out.RefundID = strconv.FormatInt(env.Data.ID, 10)
	}
	return out, nil
}

func (p *Paystack) VerifyWebhookSignature(raw []byte, header string) error {
	return p.verifier.verify(raw, header)
}

func (p *Paystack) ParseWebhook(raw []byte) (*WebhookEvent, error) {
	return ParsePaystackWebhook(raw)
}

// do: network error/5xx → ErrUnavailable; 4xx atau status:false → ErrRejected.
func (p *Paystack) do(ctx context.Context, op, method, path string, in any, out interface{ ok() (bool, string) }) error {
	var rdr io.Reader
	if in != nil {
		b, err := sonic.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn().Err(err).Str("op", op).Dur("elapsed", time.Since(start)).Msg("paystack request failed")
		return unavailable(op, 0, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return unavailable(op, resp.StatusCode, "read response: "+err.Error())
	}
	p.log.Debug().Str("op", op).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("paystack response")

	if resp.StatusCode >= 500 {
		return unavailable(op, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	decodeErr := sonic.Unmarshal(raw, out)
	if resp.StatusCode >= 400 {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil {
			if _, m := out.ok(); m != "" {
				msg = m
			}
		}
		return rejected(op, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return unavailable(op, resp.StatusCode, "decode response: "+decodeErr.Error())
	}
	if ok, m := out.ok(); !ok {
		return rejected(op, resp.StatusCode, m)
	}
	return nil
}

func (e *paystackEnvelope[T]) ok() (bool, string) { return e.Status, e.Message }
