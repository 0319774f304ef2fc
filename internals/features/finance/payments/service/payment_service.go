// file: internals/features/finance/payments/service/payment_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"napps_backend/internals/configs"
	database "napps_backend/internals/databases"
	feeService "napps_backend/internals/features/finance/fees/service"
	"napps_backend/internals/features/finance/payments/gateway"
	"napps_backend/internals/features/finance/payments/model"
	propService "napps_backend/internals/features/proprietors/service"
	helper "napps_backend/internals/helpers"
)

const (
	ReasonAmountMismatch = "amount_mismatch"
	defaultLockWait      = 10 * time.Second
)

// BalanceStore: kolaborator proprietor. SetProprietorCleared dipanggil di dalam transaksi ctx.
type BalanceStore interface {
	GetProprietorBalance(ctx context.Context, id uuid.UUID) (*propService.Balance, error)
	SetProprietorCleared(ctx context.Context, id uuid.UUID, paidAt time.Time) error
}

type FeeQuoter interface {
	CalculateSelection(ctx context.Context, sel feeService.Selection) (feeService.Quote, error)
}

// SettledHook dipanggil sekali setelah commit, hanya oleh writer yang memenangkan transisi ke success.
type SettledHook func(ctx context.Context, e model.PaymentLedgerEntry)

type Deps struct {
	DB       *gorm.DB
	Fees     FeeQuoter
	Balances BalanceStore
	Gateway  gateway.Gateway
	Locker   Locker
	Log      zerolog.Logger
}

type PaymentService struct {
	db       *gorm.DB
	ledger   *LedgerRepository
	events   *EventRepository
	fees     FeeQuoter
	balances BalanceStore
	gw       gateway.Gateway
	locker   Locker
	log      zerolog.Logger
	now      func() time.Time
	lockWait time.Duration
	settled  []SettledHook
}

func NewPaymentService(d Deps) *PaymentService {
	locker := d.Locker
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &PaymentService{
		db:       d.DB,
		ledger:   NewLedgerRepository(d.DB),
		events:   NewEventRepository(d.DB),
		fees:     d.Fees,
		balances: d.Balances,
		gw:       d.Gateway,
		locker:   locker,
		log:      d.Log,
		now:      time.Now,
		lockWait: defaultLockWait,
	}
}

func (s *PaymentService) WithClock(now func() time.Time) *PaymentService {
	s.now = now
	return s
}

func (s *PaymentService) OnSettled(h SettledHook) { s.settled = append(s.settled, h) }

func (s *PaymentService) Mode() configs.GatewayMode { return s.gw.Mode() }

/* =========================================================
   Initialize
========================================================= */

type InitializeInput struct {
	ProprietorID uuid.UUID
	Selection    feeService.Selection
	Email        string
	CallbackURL  string
	Metadata     map[string]any
}

type InitializeResult struct {
	Reference        string                    `json:"reference"`
	AuthorizationURL string                    `json:"authorization_url"`
	AccessCode       string                    `json:"access_code,omitempty"`
	Entry            *model.PaymentLedgerEntry `json:"payment"`
}

func (s *PaymentService) InitializePayment(ctx context.Context, in InitializeInput) (*InitializeResult, error) {
	const op = "initialize payment"

	bal, err := s.balances.GetProprietorBalance(ctx, in.ProprietorID)
	if err != nil {
		if errors.Is(err, propService.ErrProprietorNotFound) {
			return nil, payErr(op, ErrPayerNotFound, "", err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	quote, err := s.fees.CalculateSelection(ctx, in.Selection)
	if err != nil {
		var fe *feeService.FeeError
		if errors.As(err, &fe) {
			return nil, payErr(op, ErrValidation, "", err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = bal.Email
	}
	if err := helper.Validator().Var(email, "required,email"); err != nil {
		return nil, payErrf(op, ErrValidation, "", "payer email %q is not valid", email)
	}

	e := &model.PaymentLedgerEntry{
		PaymentReference:        NewReference(s.now()),
		PaymentProvider:         s.gw.Provider(),
		PaymentProprietorID:     bal.ProprietorID,
		PaymentPayerEmail:       email,
		PaymentSchoolID:         bal.SchoolID,
		PaymentAmountMinor:      quote.BaseMinor,
		PaymentCurrency:         quote.Currency,
		PaymentMultiplier:       quote.Multiplier,
		PaymentFeeCode:          quote.PrimaryCode,
		PaymentFeeCodes:         datatypes.JSONSlice[string](quote.Codes),
		PaymentPlatformFee:      quote.PlatformFee,
		PaymentProcessingFee:    quote.ProcessingFee,
		PaymentBeneficiaryShare: quote.BeneficiaryShare,
		PaymentGatewaySplitID:   quote.GatewaySplitID,
		PaymentStatus:           model.PaymentStatusPending,
		PaymentMetadata:         datatypes.JSONMap(in.Metadata),
		PaymentSimulated:        s.gw.Mode() == configs.GatewayModeSimulated,
		PaymentIsActive:         true,
	}
	return s.openSession(ctx, op, e, in.CallbackURL, nil)
}

// openSession menyimpan entry pending lalu membuka sesi gateway. Gateway gagal → entry failed.
func (s *PaymentService) openSession(ctx context.Context, op string, e *model.PaymentLedgerEntry, callbackURL string, before func(ctx context.Context) error) (*InitializeResult, error) {
	err := database.RunInTx(ctx, s.db, func(ctx context.Context) error {
		if before != nil {
			if err := before(ctx); err != nil {
				return err
			}
		}
		return s.ledger.Create(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	l := s.log.With().Str("reference", e.PaymentReference).Logger()
	sess, gerr := s.gw.InitializeSession(ctx, gateway.SessionRequest{
		Email:       e.PaymentPayerEmail,
		AmountMinor: e.TotalMinor(),
		Reference:   e.PaymentReference,
		Currency:    e.PaymentCurrency,
		CallbackURL: callbackURL,
		SplitCode:   e.PaymentGatewaySplitID,
		Metadata:    sessionMetadata(e),
	})
	if gerr != nil {
		l.Warn().Err(gerr).Msg("gateway session failed, marking payment failed")
		reason := gerr.Error()
		if _, terr := s.ledger.Transition(ctx, e.PaymentReference, model.PaymentStatusFailed, map[string]any{
			"payment_failure_reason": reason,
		}); terr != nil {
			l.Error().Err(terr).Msg("mark payment failed")
		}
		return nil, s.gatewayErr(op, e.PaymentReference, gerr)
	}

	if err := s.ledger.Patch(ctx, e.PaymentReference, map[string]any{
		"payment_authorization_url": sess.AuthorizationURL,
		"payment_access_code":       sess.AccessCode,
	}); err != nil {
		return nil, err
	}
	e.PaymentAuthorizationURL = &sess.AuthorizationURL
	e.PaymentAccessCode = &sess.AccessCode

	l.Info().
		Str("proprietor_id", e.PaymentProprietorID.String()).
		Str("fee_code", e.PaymentFeeCode).
		Int64("total_minor", e.TotalMinor()).
		Bool("simulated", e.PaymentSimulated).
		Msg("payment initialized")

	return &InitializeResult{
		Reference:        e.PaymentReference,
		AuthorizationURL: sess.AuthorizationURL,
		AccessCode:       sess.AccessCode,
		Entry:            e,
	}, nil
}

func sessionMetadata(e *model.PaymentLedgerEntry) map[string]any {
	md := map[string]any{
		"proprietor_id":     e.PaymentProprietorID.String(),
		"fee_code":          e.PaymentFeeCode,
		"fee_codes":         []string(e.PaymentFeeCodes),
		"multiplier":        e.PaymentMultiplier,
		"base_minor":        e.PaymentAmountMinor,
		"platform_fee":      e.PaymentPlatformFee,
		"processing_fee":    e.PaymentProcessingFee,
		"beneficiary_share": e.PaymentBeneficiaryShare,
	}
	if e.PaymentRetryOfID != nil {
		md["retry_of"] = e.PaymentRetryOfID.String()
	}
	return md
}

func (s *PaymentService) gatewayErr(op, ref string, err error) error {
	switch {
	case errors.Is(err, gateway.ErrRejected):
		return payErr(op, ErrGatewayRejected, ref, err)
	case errors.Is(err, gateway.ErrInvalidSignature):
		return payErr(op, ErrInvalidSignature, ref, err)
	case errors.Is(err, gateway.ErrMalformedWebhook):
		return payErr(op, ErrValidation, ref, err)
	default:
		return payErr(op, ErrGatewayUnavailable, ref, err)
	}
}

/* =========================================================
   Verify / apply result
========================================================= */

func (s *PaymentService) lock(ctx context.Context, ref string) (func(), error) {
	lctx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	unlock, err := s.locker.Lock(lctx, ref)
	if err != nil {
		return nil, fmt.Errorf("acquire payment lock: %w", err)
	}
	return unlock, nil
}

// VerifyPayment idempotent: entry terminal dikembalikan apa adanya tanpa memanggil gateway.
func (s *PaymentService) VerifyPayment(ctx context.Context, ref string) (*model.PaymentLedgerEntry, error) {
	const op = "verify payment"
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, payErrf(op, ErrValidation, "", "reference is required")
	}

	unlock, err := s.lock(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer unlock()

	e, err := s.ledger.ByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if e.PaymentStatus.IsTerminal() {
		return e, nil
	}

	res, gerr := s.gw.VerifyByReference(ctx, ref)
	if gerr != nil {
		if !errors.Is(gerr, gateway.ErrRejected) {
			s.log.Warn().Err(gerr).Str("reference", ref).Msg("verify: gateway unavailable, entry untouched")
			return nil, payErr(op, ErrGatewayUnavailable, ref, gerr)
		}
		// penolakan gateway dicatat di entry sebagai failed
		res = &gateway.TransactionResult{
			Reference:     ref,
			Status:        gateway.ResultFailed,
			FailureReason: gerr.Error(),
		}
	}
	return s.apply(ctx, e, res, false)
}

// apply menjalankan transisi CAS + efek saldo dalam satu transaksi.
func (s *PaymentService) apply(ctx context.Context, e *model.PaymentLedgerEntry, res *gateway.TransactionResult, fromWebhook bool) (*model.PaymentLedgerEntry, error) {
	ref := e.PaymentReference
	l := s.log.With().Str("reference", ref).Str("result", string(res.Status)).Bool("webhook", fromWebhook).Logger()

	status := res.Status
	reason := res.FailureReason
	if status == gateway.ResultSuccess && res.AmountMinor > 0 && res.AmountMinor < e.TotalMinor() {
		l.Warn().Int64("paid_minor", res.AmountMinor).Int64("expected_minor", e.TotalMinor()).Msg("underpaid transaction")
		status, reason = gateway.ResultFailed, ReasonAmountMismatch
	}

	var won bool
	var paidAt time.Time
	err := database.RunInTx(ctx, s.db, func(ctx context.Context) error {
		if fromWebhook {
			if err := s.ledger.Patch(ctx, ref, map[string]any{"payment_webhook_received": true}); err != nil {
				return err
			}
		}

		fields := gatewayFields(res)
		var err error
		switch status {
		case gateway.ResultSuccess:
			paidAt = s.now().UTC()
			if res.PaidAt != nil {
				paidAt = res.PaidAt.UTC()
			}
			fields["payment_paid_at"] = paidAt
			if res.Simulated {
				fields["payment_simulated"] = true
			}
			won, err = s.ledger.Transition(ctx, ref, model.PaymentStatusSuccess, fields)
			if err != nil || !won {
				return err
			}
			// satu-satunya efek samping ke proprietor
			return s.balances.SetProprietorCleared(ctx, e.PaymentProprietorID, paidAt)

		case gateway.ResultFailed:
			if reason == "" {
				reason = "failed"
			}
			fields["payment_failure_reason"] = reason
			won, err = s.ledger.Transition(ctx, ref, model.PaymentStatusFailed, fields)
			return err

		default:
			if e.PaymentStatus == model.PaymentStatusProcessing {
				return nil
			}
			won, err = s.ledger.Transition(ctx, ref, model.PaymentStatusProcessing, fields)
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	fresh, err := s.ledger.ByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !won {
		l.Debug().Str("status", string(fresh.PaymentStatus)).Msg("no transition, entry already decided")
		return fresh, nil
	}

	l.Info().Str("status", string(fresh.PaymentStatus)).Msg("payment transitioned")
	if fresh.PaymentStatus == model.PaymentStatusSuccess {
		for _, h := range s.settled {
			h(ctx, *fresh)
		}
	}
	return fresh, nil
}

func gatewayFields(res *gateway.TransactionResult) map[string]any {
	f := map[string]any{}
	if res.TransactionID != "" {
		f["payment_gateway_transaction_id"] = res.TransactionID
	}
	if res.Channel != "" {
		f["payment_channel"] = res.Channel
	}
	if res.GatewayResponse != "" {
		f["payment_gateway_response"] = res.GatewayResponse
	}
	if res.Authorization != (model.Authorization{}) {
		f["payment_authorization"] = datatypes.NewJSONType(res.Authorization)
	}
	return f
}

/* =========================================================
   Webhook
========================================================= */

type WebhookOutcome struct {
	EventID   uuid.UUID
	Event     string
	Reference string
	Status    model.GatewayEventStatus
	Payment   *model.PaymentLedgerEntry
}

// HandleWebhook: signature dulu, lalu lookup. Reference tak dikenal di-ack sebagai ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, raw []byte, signature string) (*WebhookOutcome, error) {
	const op = "handle webhook"

	ev := &model.PaymentGatewayEvent{
		GatewayEventProvider:   s.gw.Provider(),
		GatewayEventPayload:    payloadJSON(raw),
		GatewayEventReceivedAt: s.now(),
	}
	if sig := strings.TrimSpace(signature); sig != "" {
		ev.GatewayEventSignature = &sig
	}

	if err := s.gw.VerifyWebhookSignature(raw, signature); err != nil {
		s.log.Warn().Err(err).Int("bytes", len(raw)).Msg("webhook rejected: invalid signature")
		ev.GatewayEventStatus = model.GatewayEventStatusFailed
		msg := err.Error()
		ev.GatewayEventError = &msg
		s.recordEvent(ctx, ev)
		return nil, payErr(op, ErrInvalidSignature, "", err)
	}

	parsed, err := s.gw.ParseWebhook(raw)
	if err != nil {
		ev.GatewayEventStatus = model.GatewayEventStatusFailed
		msg := err.Error()
		ev.GatewayEventError = &msg
		s.recordEvent(ctx, ev)
		return nil, s.gatewayErr(op, "", err)
	}

	ev.GatewayEventType = &parsed.Event
	if parsed.Reference != "" {
		ev.GatewayEventReference = &parsed.Reference
	}
	ev.GatewayEventStatus = model.GatewayEventStatusProcessing
	s.recordEvent(ctx, ev)

	out := &WebhookOutcome{EventID: ev.GatewayEventID, Event: parsed.Event, Reference: parsed.Reference}
	l := s.log.With().Str("event", parsed.Event).Str("reference", parsed.Reference).Logger()

	if parsed.Kind != gateway.EventKindCharge || parsed.Result == nil {
		l.Info().Msg("webhook acknowledged without ledger change")
		out.Status = model.GatewayEventStatusIgnored
		s.finishEvent(ctx, ev, out.Status, nil, "")
		return out, nil
	}

	unlock, err := s.lock(ctx, parsed.Reference)
	if err != nil {
		s.finishEvent(ctx, ev, model.GatewayEventStatusFailed, nil, err.Error())
		return nil, err
	}
	defer unlock()

	e, err := s.ledger.ByReference(ctx, parsed.Reference)
	if errors.Is(err, ErrPaymentNotFound) {
		l.Warn().Msg("webhook for unknown reference, acknowledged")
		out.Status = model.GatewayEventStatusIgnored
		s.finishEvent(ctx, ev, out.Status, nil, "unknown reference")
		return out, nil
	}
	if err != nil {
		s.finishEvent(ctx, ev, model.GatewayEventStatusFailed, nil, err.Error())
		return nil, err
	}

	fresh, err := s.apply(ctx, e, parsed.Result, true)
	if err != nil {
		s.finishEvent(ctx, ev, model.GatewayEventStatusFailed, &e.PaymentID, err.Error())
		return nil, err
	}
	out.Status = model.GatewayEventStatusSuccess
	out.Payment = fresh
	s.finishEvent(ctx, ev, out.Status, &e.PaymentID, "")
	return out, nil
}

// payloadJSON: body yang bukan JSON valid disimpan sebagai string JSON.
func payloadJSON(raw []byte) datatypes.JSON {
	if sonic.Valid(raw) {
		return datatypes.JSON(append([]byte(nil), raw...))
	}
	b, _ := sonic.Marshal(string(raw))
	return datatypes.JSON(b)
}

func (s *PaymentService) recordEvent(ctx context.Context, ev *model.PaymentGatewayEvent) {
	if err := s.events.Record(ctx, ev); err != nil {
		s.log.Error().Err(err).Msg("record gateway event")
	}
}

func (s *PaymentService) finishEvent(ctx context.Context, ev *model.PaymentGatewayEvent, st model.GatewayEventStatus, paymentID *uuid.UUID, errText string) {
	if ev.GatewayEventID == uuid.Nil {
		return
	}
	if err := s.events.Finish(ctx, ev.GatewayEventID, st, paymentID, errText); err != nil {
		s.log.Error().Err(err).Msg("finish gateway event")
	}
}

/* =========================================================
   Refund / retry / cancel / simulate
========================================================= */

func (s *PaymentService) RefundPayment(ctx context.Context, id uuid.UUID, amountMinor int64, reason string) (*model.PaymentLedgerEntry, error) {
	const op = "refund payment"

	cur, err := s.ledger.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := cur.PaymentReference

	unlock, err := s.lock(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// baca ulang di bawah lock; refund lain bisa saja sudah selesai
	e, err := s.ledger.ByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if e.PaymentStatus != model.PaymentStatusSuccess {
		return nil, payErrf(op, ErrInvalidState, ref, "cannot refund a %s payment", e.PaymentStatus)
	}
	total := e.TotalMinor()
	if amountMinor <= 0 || amountMinor > total {
		return nil, payErrf(op, ErrValidation, ref, "refund amount must be between 1 and %d", total)
	}

	txID := ""
	if e.PaymentGatewayTransactionID != nil {
		txID = *e.PaymentGatewayTransactionID
	}
	rr, gerr := s.gw.Refund(ctx, gateway.RefundRequest{
		TransactionID: txID,
		Reference:     ref,
		AmountMinor:   amountMinor,
		Note:          reason,
	})
	if gerr != nil {
		return nil, s.gatewayErr(op, ref, gerr)
	}

	to := model.PaymentStatusPartiallyRefunded
	if amountMinor >= total {
		to = model.PaymentStatusRefunded
	}
	fields := map[string]any{
		"payment_refunded_amount": amountMinor,
		"payment_refunded_at":     s.now().UTC(),
	}
	if r := strings.TrimSpace(reason); r != "" {
		fields["payment_refund_reason"] = r
	}
	ok, err := s.ledger.Transition(ctx, ref, to, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, payErrf(op, ErrInvalidState, ref, "payment changed state during refund")
	}

	s.log.Info().Str("reference", ref).Str("refund_id", rr.RefundID).Int64("amount_minor", amountMinor).Str("status", string(to)).Msg("payment refunded")
	return s.ledger.ByReference(ctx, ref)
}

// RetryPayment membuat entry baru dengan snapshot breakdown yang sama. Entry lama dinonaktifkan.
func (s *PaymentService) RetryPayment(ctx context.Context, id uuid.UUID, callbackURL string) (*InitializeResult, error) {
	const op = "retry payment"

	cur, err := s.ledger.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, cur.PaymentReference)
	if err != nil {
		return nil, err
	}
	defer unlock()

	old, err := s.ledger.ByReference(ctx, cur.PaymentReference)
	if err != nil {
		return nil, err
	}
	if old.PaymentStatus != model.PaymentStatusFailed {
		return nil, payErrf(op, ErrInvalidState, old.PaymentReference, "only failed payments can be retried, got %s", old.PaymentStatus)
	}
	prev, err := s.ledger.RetryOf(ctx, old.PaymentID)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		return nil, payErrf(op, ErrInvalidState, old.PaymentReference, "already retried as %s", prev.PaymentReference)
	}

	oldID := old.PaymentID
	e := &model.PaymentLedgerEntry{
		PaymentReference:        NewReference(s.now()),
		PaymentProvider:         s.gw.Provider(),
		PaymentProprietorID:     old.PaymentProprietorID,
		PaymentPayerEmail:       old.PaymentPayerEmail,
		PaymentSchoolID:         old.PaymentSchoolID,
		PaymentAmountMinor:      old.PaymentAmountMinor,
		PaymentCurrency:         old.PaymentCurrency,
		PaymentMultiplier:       old.PaymentMultiplier,
		PaymentFeeCode:          old.PaymentFeeCode,
		PaymentFeeCodes:         old.PaymentFeeCodes,
		PaymentPlatformFee:      old.PaymentPlatformFee,
		PaymentProcessingFee:    old.PaymentProcessingFee,
		PaymentBeneficiaryShare: old.PaymentBeneficiaryShare,
		PaymentGatewaySplitID:   old.PaymentGatewaySplitID,
		PaymentStatus:           model.PaymentStatusPending,
		PaymentMetadata:         old.PaymentMetadata,
		PaymentSimulated:        s.gw.Mode() == configs.GatewayModeSimulated,
		PaymentRetryOfID:        &oldID,
		PaymentIsActive:         true,
	}
	return s.openSession(ctx, op, e, callbackURL, func(ctx context.Context) error {
		return s.ledger.Patch(ctx, old.PaymentReference, map[string]any{"payment_is_active": false})
	})
}

func (s *PaymentService) CancelPayment(ctx context.Context, ref string) (*model.PaymentLedgerEntry, error) {
	const op = "cancel payment"

	unlock, err := s.lock(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer unlock()

	e, err := s.ledger.ByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(e.PaymentStatus, model.PaymentStatusCancelled) {
		return nil, payErrf(op, ErrInvalidState, ref, "cannot cancel a %s payment", e.PaymentStatus)
	}
	ok, err := s.ledger.Transition(ctx, ref, model.PaymentStatusCancelled, map[string]any{
		"payment_cancelled_at": s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, payErrf(op, ErrInvalidState, ref, "payment changed state during cancel")
	}
	s.log.Info().Str("reference", ref).Msg("payment cancelled")
	return s.ledger.ByReference(ctx, ref)
}

// expirePayment memutus entry pending/processing menjadi failed. Entry yang sudah
// terminal dikembalikan apa adanya.
func (s *PaymentService) expirePayment(ctx context.Context, ref, reason string) (*model.PaymentLedgerEntry, error) {
	unlock, err := s.lock(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ok, err := s.ledger.Transition(ctx, ref, model.PaymentStatusFailed, map[string]any{"payment_failure_reason": reason})
	if err != nil {
		return nil, err
	}
	if ok {
		s.log.Warn().Str("reference", ref).Str("reason", reason).Msg("payment expired while still in flight")
	}
	return s.ledger.ByReference(ctx, ref)
}

// SimulatePayment memaksa verify sukses tanpa gateway. Hanya di GATEWAY_MODE=simulated.
func (s *PaymentService) SimulatePayment(ctx context.Context, ref string) (*model.PaymentLedgerEntry, error) {
	const op = "simulate payment"
	if s.gw.Mode() != configs.GatewayModeSimulated {
		return nil, payErrf(op, ErrNotAllowed, ref, "simulation is disabled in %s mode", s.gw.Mode())
	}

	unlock, err := s.lock(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer unlock()

	e, err := s.ledger.ByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if e.PaymentStatus.IsTerminal() {
		return e, nil
	}
	now := s.now().UTC()
	return s.apply(ctx, e, &gateway.TransactionResult{
		Reference:       ref,
		Status:          gateway.ResultSuccess,
		RemoteStatus:    "success",
		TransactionID:   fmt.Sprintf("sim-%d", now.UnixNano()),
		Channel:         model.ChannelSimulated,
		GatewayResponse: "Simulated payment approved",
		PaidAt:          &now,
		Simulated:       true,
	}, false)
}

/* =========================================================
   Reads
========================================================= */

func (s *PaymentService) GetPaymentsByPayer(ctx context.Context, proprietorID uuid.UUID) ([]model.PaymentLedgerEntry, error) {
	return s.ledger.ByPayer(ctx, proprietorID)
}

func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*model.PaymentLedgerEntry, error) {
	return s.ledger.ByID(ctx, id)
}

func (s *PaymentService) GetPaymentByReference(ctx context.Context, ref string) (*model.PaymentLedgerEntry, error) {
	return s.ledger.ByReference(ctx, ref)
}

func (s *PaymentService) ListPayments(ctx context.Context, f ListFilter) ([]model.PaymentLedgerEntry, int64, error) {
	return s.ledger.List(ctx, f)
}

func (s *PaymentService) ListGatewayEvents(ctx context.Context, f EventFilter) ([]model.PaymentGatewayEvent, int64, error) {
	return s.events.List(ctx, f)
}
