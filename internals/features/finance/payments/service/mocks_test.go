package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"napps_backend/internals/configs"
	feeModel "napps_backend/internals/features/finance/fees/model"
	feeService "napps_backend/internals/features/finance/fees/service"
	"napps_backend/internals/features/finance/payments/gateway"
	"napps_backend/internals/features/finance/payments/model"
	propModel "napps_backend/internals/features/proprietors/model"
	propService "napps_backend/internals/features/proprietors/service"
	"napps_backend/internals/testutil"
)

const testWebhookSecret = "whsec_test"

var fixedNow = time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)

/* ===================== Gateway stub ===================== */

type stubGateway struct {
	mu sync.Mutex

	mode      configs.GatewayMode
	initErr   error
	verifyRes *gateway.TransactionResult
	verifyErr error
	refundErr error
	// refundDelay menahan Refund supaya pemanggil paralel saling tumpang tindih
	refundDelay time.Duration

	sessions    []gateway.SessionRequest
	verifyCalls int
	refundCalls int
}

func (g *stubGateway) Provider() string { return model.PaymentProviderPaystack }

func (g *stubGateway) Mode() configs.GatewayMode {
	if g.mode == "" {
		return configs.GatewayModeLive
	}
	return g.mode
}

func (g *stubGateway) InitializeSession(_ context.Context, req gateway.SessionRequest) (*gateway.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions = append(g.sessions, req)
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &gateway.Session{AuthorizationURL: "https://checkout.test/" + req.Reference, AccessCode: "ac_" + req.Reference[len(req.Reference)-4:]}, nil
}

func (g *stubGateway) VerifyByReference(_ context.Context, ref string) (*gateway.TransactionResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	res := *g.verifyRes
	res.Reference = ref
	return &res, nil
}

func (g *stubGateway) Refund(_ context.Context, req gateway.RefundRequest) (*gateway.RefundResult, error) {
	if g.refundDelay > 0 {
		time.Sleep(g.refundDelay)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refundCalls++
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	return &gateway.RefundResult{RefundID: "rf_1", Status: "pending"}, nil
}

func (g *stubGateway) VerifyWebhookSignature(raw []byte, header string) error {
	if gateway.SignHMACSHA512(testWebhookSecret, raw) != header {
		return &gateway.Error{Op: "verify webhook", Message: "signature mismatch", Err: gateway.ErrInvalidSignature}
	}
	return nil
}

func (g *stubGateway) ParseWebhook(raw []byte) (*gateway.WebhookEvent, error) {
	return gateway.ParsePaystackWebhook(raw)
}

func (g *stubGateway) setVerify(res *gateway.TransactionResult, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyRes, g.verifyErr = res, err
}

func (g *stubGateway) VerifyCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verifyCalls
}

func (g *stubGateway) RefundCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refundCalls
}

func (g *stubGateway) LastSession() gateway.SessionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessions[len(g.sessions)-1]
}

func successResult() *gateway.TransactionResult {
	paid := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	return &gateway.TransactionResult{
		Status:          gateway.ResultSuccess,
		RemoteStatus:    "success",
		TransactionID:   "4099260516",
		Channel:         "card",
		GatewayResponse: "Successful",
		PaidAt:          &paid,
		AmountMinor:     2537500,
		Currency:        "NGN",
	}
}

/* ===================== Collaborator stubs ===================== */

// countingBalances membungkus BalanceService asli dan menghitung efek samping.
type countingBalances struct {
	*propService.BalanceService
	mu      sync.Mutex
	cleared int
}

func (c *countingBalances) SetProprietorCleared(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	if err := c.BalanceService.SetProprietorCleared(ctx, id, paidAt); err != nil {
		return err
	}
	c.mu.Lock()
	c.cleared++
	c.mu.Unlock()
	return nil
}

func (c *countingBalances) Cleared() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleared
}

type stubQuoter struct {
	err error
}

func (q stubQuoter) CalculateSelection(_ context.Context, sel feeService.Selection) (feeService.Quote, error) {
	if q.err != nil {
		return feeService.Quote{}, q.err
	}
	limit := int64(200000)
	bd := feeService.ComputeBreakdown(feeModel.FeeStructure{
		ProcessingFeePercent: decimal.RequireFromString("1.5"),
		ProcessingFeeCap:     &limit,
	}, 2500000)
	split := "SPL_napps"
	return feeService.Quote{
		Breakdown:      bd,
		Codes:          []string{"annual_dues"},
		PrimaryCode:    "annual_dues",
		Currency:       "NGN",
		GatewaySplitID: &split,
		Multiplier:     1,
	}, nil
}

/* ===================== Fixture ===================== */

type fixture struct {
	db         *gorm.DB
	svc        *PaymentService
	gw         *stubGateway
	balances   *countingBalances
	proprietor propModel.Proprietor
}

func newFixture(t *testing.T, mode configs.GatewayMode) *fixture {
	t.Helper()
	db := testutil.OpenSQLite(t, &model.PaymentLedgerEntry{}, &model.PaymentGatewayEvent{}, &propModel.Proprietor{})

	p := propModel.Proprietor{
		ProprietorEmail:          "owner@school.ng",
		ProprietorFullName:       "Ada Obi",
		ProprietorTotalAmountDue: decimal.RequireFromString("25000"),
	}
	require.NoError(t, db.Create(&p).Error)

	gw := &stubGateway{mode: mode, verifyRes: successResult()}
	bal := &countingBalances{BalanceService: propService.NewBalanceService(db)}
	svc := NewPaymentService(Deps{
		DB:       db,
		Fees:     stubQuoter{},
		Balances: bal,
		Gateway:  gw,
		Log:      zerolog.Nop(),
	}).WithClock(func() time.Time { return fixedNow })

	return &fixture{db: db, svc: svc, gw: gw, balances: bal, proprietor: p}
}

func (f *fixture) initialize(t *testing.T) *InitializeResult {
	t.Helper()
	res, err := f.svc.InitializePayment(context.Background(), InitializeInput{
		ProprietorID: f.proprietor.ProprietorID,
		Selection:    feeService.Selection{Codes: []string{"annual_dues"}},
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) entry(t *testing.T, ref string) *model.PaymentLedgerEntry {
	t.Helper()
	e, err := f.svc.GetPaymentByReference(context.Background(), ref)
	require.NoError(t, err)
	return e
}

func (f *fixture) reloadProprietor(t *testing.T) propModel.Proprietor {
	t.Helper()
	var p propModel.Proprietor
	require.NoError(t, f.db.First(&p, "proprietor_id = ?", f.proprietor.ProprietorID).Error)
	return p
}
