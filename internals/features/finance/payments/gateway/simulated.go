package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"napps_backend/internals/configs"
	"napps_backend/internals/features/finance/payments/model"
)

// Simulated tidak pernah menyentuh jaringan. Webhook memakai format Paystack.
type Simulated struct {
	publicBaseURL string
	verifier      hmacVerifier
	now           func() time.Time
	log           zerolog.Logger
}

func NewSimulated(publicBaseURL string, cfg configs.GatewayConfig, l zerolog.Logger) *Simulated {
	return &Simulated{
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		verifier: hmacVerifier{
			secret:        cfg.WebhookSecret(),
			allowUnsigned: cfg.WebhookAllowUnsigned,
			log:           l,
		},
		now: time.Now,
		log: l,
	}
}

func (s *Simulated) Provider() string          { return model.PaymentProviderSimulated }
func (s *Simulated) Mode() configs.GatewayMode { return configs.GatewayModeSimulated }

// SimulateURL: <PUBLIC_BASE_URL>/api/public/payments/simulate/<reference>
func (s *Simulated) SimulateURL(reference string) string {
	return s.publicBaseURL + "/api/public/payments/simulate/" + url.PathEscape(reference)
}

func (s *Simulated) InitializeSession(_ context.Context, req SessionRequest) (*Session, error) {
	if req.Reference == "" {
		return nil, rejected("initialize transaction", 0, "reference is required")
	}
	s.log.Info().Str("reference", req.Reference).Int64("amount", req.AmountMinor).Msg("simulated session initialized")
	return &Session{
		AuthorizationURL: s.SimulateURL(req.Reference),
		AccessCode:       "sim_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
	}, nil
}

// VerifyByReference selalu mensintesis transaksi sukses.
func (s *Simulated) VerifyByReference(_ context.Context, reference string) (*TransactionResult, error) {
	now := s.now().UTC()
	return &TransactionResult{
		Reference:       reference,
		Status:          ResultSuccess,
		RemoteStatus:    "success",
		TransactionID:   fmt.Sprintf("sim-%d", now.UnixNano()),
		Channel:         model.ChannelSimulated,
		GatewayResponse: "Simulated payment approved",
		PaidAt:          &now,
		Simulated:       true,
	}, nil
}

func (s *Simulated) Refund(_ context.Context, req RefundRequest) (*RefundResult, error) {
	return &RefundResult{RefundID: "sim-refund-" + req.Reference, Status: "processed"}, nil
}

func (s *Simulated) VerifyWebhookSignature(raw []byte, header string) error {
	return s.verifier.verify(raw, header)
}

func (s *Simulated) ParseWebhook(raw []byte) (*WebhookEvent, error) {
	ev, err := ParsePaystackWebhook(raw)
	if err != nil {
		return nil, err
	}
	if ev.Result != nil {
		ev.Result.Simulated = true
	}
	return ev, nil
}
