package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"napps_backend/internals/configs"
	feeModel "napps_backend/internals/features/finance/fees/model"
	feeSvc "napps_backend/internals/features/finance/fees/service"
	"napps_backend/internals/features/finance/payments/gateway"
	"napps_backend/internals/features/finance/payments/model"
	paySvc "napps_backend/internals/features/finance/payments/service"
	propModel "napps_backend/internals/features/proprietors/model"
	propSvc "napps_backend/internals/features/proprietors/service"
	helper "napps_backend/internals/helpers"
	"napps_backend/internals/testutil"
)

const webhookSecret = "whsec_ctl"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	app   *fiber.App
	owner uuid.UUID
}

// asUser menyuntik locals yang biasanya diisi AuthJWT.
func asUser(c *fiber.Ctx) error {
	if id := c.Get("X-Test-Proprietor"); id != "" {
		c.Locals(helper.LocProprietorID, id)
	}
	if c.Get("X-Test-Admin") == "1" {
		c.Locals(helper.LocRoles, []string{"admin"})
	}
	return c.Next()
}

func requireAdmin(c *fiber.Ctx) error {
	if !helper.HasRole(c, "admin") {
		return helper.JsonError(c, fiber.StatusForbidden, "admin access required")
	}
	return c.Next()
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.OpenSQLite(t,
		&feeModel.FeeDefinition{},
		&propModel.Proprietor{},
		&model.PaymentLedgerEntry{},
		&model.PaymentGatewayEvent{},
	)

	limit := int64(200000)
	require.NoError(t, db.Create(&feeModel.FeeDefinition{
		FeeDefinitionCode:                 "annual_dues",
		FeeDefinitionName:                 "Annual dues",
		FeeDefinitionBaseAmount:           decimal.RequireFromString("25000"),
		FeeDefinitionCurrency:             "NGN",
		FeeDefinitionProcessingFeePercent: decimal.RequireFromString("1.5"),
		FeeDefinitionProcessingFeeCap:     &limit,
		FeeDefinitionIsActive:             true,
	}).Error)

	p := propModel.Proprietor{
		ProprietorEmail:          "owner@school.ng",
		ProprietorFullName:       "Ada Obi",
		ProprietorTotalAmountDue: decimal.RequireFromString("25000"),
	}
	require.NoError(t, db.Create(&p).Error)

	gw := gateway.NewSimulated("http://napps.test", configs.GatewayConfig{PaystackWebhookSecret: webhookSecret}, zerolog.Nop())
	svc := paySvc.NewPaymentService(paySvc.Deps{
		DB:       db,
		Fees:     feeSvc.NewCalculator(feeSvc.NewCatalog(db)),
		Balances: propSvc.NewBalanceService(db),
		Gateway:  gw,
		Log:      zerolog.Nop(),
	})
	ctl := NewPaymentController(svc, zerolog.Nop())

	app := fiber.New(fiber.Config{JSONEncoder: sonic.Marshal, JSONDecoder: sonic.Unmarshal})
	app.Use(asUser)
	pub := app.Group("/api/public/payments")
	pub.Post("/webhook", ctl.Webhook)
	pub.Get("/verify/:reference", ctl.VerifyPayment)
	pub.Post("/simulate/:reference", ctl.SimulatePayment)

	u := app.Group("/api/u/payments")
	u.Post("/", ctl.CreatePayment)
	u.Get("/my", ctl.MyPayments)
	u.Post("/:id/retry", ctl.RetryPayment)
	u.Post("/:reference/cancel", ctl.CancelPayment)

	a := app.Group("/api/a", requireAdmin)
	a.Get("/payments", ctl.ListPayments)
	a.Get("/payments/:id", ctl.GetPayment)
	a.Post("/payments/:id/refund", ctl.RefundPayment)
	a.Get("/payment-gateway-events", ctl.ListGatewayEvents)

	return &harness{app: app, owner: p.ProprietorID}
}

func (h *harness) do(t *testing.T, method, path string, body string, headers map[string]string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	b, _ := io.ReadAll(res.Body)
	if len(b) > 0 {
		require.NoError(t, sonic.Unmarshal(b, &env), string(b))
	}
	return res.StatusCode, env
}

func (h *harness) owned() map[string]string {
	return map[string]string{"X-Test-Proprietor": h.owner.String()}
}

func (h *harness) create(t *testing.T) initResp {
	t.Helper()
	status, env := h.do(t, http.MethodPost, "/api/u/payments", `{"codes":["annual_dues"]}`, h.owned())
	require.Equal(t, http.StatusCreated, status, env.Message)
	var out initResp
	require.NoError(t, sonic.Unmarshal(env.Data, &out))
	return out
}

type initResp struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	Payment          struct {
		PaymentID         uuid.UUID           `json:"payment_id"`
		PaymentStatus     model.PaymentStatus `json:"payment_status"`
		PaymentTotalMinor int64               `json:"payment_total_minor"`
		PaymentSimulated  bool                `json:"payment_simulated"`
	} `json:"payment"`
}

type paymentResp struct {
	PaymentID             uuid.UUID           `json:"payment_id"`
	PaymentReference      string              `json:"payment_reference"`
	PaymentStatus         model.PaymentStatus `json:"payment_status"`
	PaymentChannel        *string             `json:"payment_channel"`
	PaymentSimulated      bool                `json:"payment_simulated"`
	PaymentTotalMinor     int64               `json:"payment_total_minor"`
	PaymentRefundedAmount int64               `json:"payment_refunded_amount"`
}

func decodePayment(t *testing.T, env envelope) paymentResp {
	t.Helper()
	var p paymentResp
	require.NoError(t, sonic.Unmarshal(env.Data, &p))
	return p
}

func TestCreateAndSimulateFlow(t *testing.T) {
	h := newHarness(t)
	init := h.create(t)

	assert.Equal(t, "http://napps.test/api/public/payments/simulate/"+init.Reference, init.AuthorizationURL)
	assert.Equal(t, model.PaymentStatusPending, init.Payment.PaymentStatus)
	assert.Equal(t, int64(2537500), init.Payment.PaymentTotalMinor)
	assert.True(t, init.Payment.PaymentSimulated)

	status, env := h.do(t, http.MethodPost, "/api/public/payments/simulate/"+init.Reference, "", nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	p := decodePayment(t, env)
	assert.Equal(t, model.PaymentStatusSuccess, p.PaymentStatus)
	require.NotNil(t, p.PaymentChannel)
	assert.Equal(t, model.ChannelSimulated, *p.PaymentChannel)

	// verify setelah sukses tidak mengubah apa pun
	status, env = h.do(t, http.MethodGet, "/api/public/payments/verify/"+init.Reference, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.PaymentStatusSuccess, decodePayment(t, env).PaymentStatus)

	status, env = h.do(t, http.MethodGet, "/api/u/payments/my", "", h.owned())
	require.Equal(t, http.StatusOK, status)
	var mine []paymentResp
	require.NoError(t, sonic.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, init.Reference, mine[0].PaymentReference)
}

func TestCreatePayment_Errors(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(t, http.MethodPost, "/api/u/payments", `{"codes":["annual_dues"]}`, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(t, http.MethodPost, "/api/u/payments", `{"codes":[]}`, h.owned())
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = h.do(t, http.MethodPost, "/api/u/payments", `{"codes":["annual_dues"],"multiplier":11}`, h.owned())
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = h.do(t, http.MethodPost, "/api/u/payments", `{"codes":["unknown_fee"]}`, h.owned())
	assert.Equal(t, http.StatusBadRequest, status)

	stranger := map[string]string{"X-Test-Proprietor": uuid.NewString()}
	status, _ = h.do(t, http.MethodPost, "/api/u/payments", `{"codes":["annual_dues"]}`, stranger)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = h.do(t, http.MethodPost, "/api/u/payments", `{bad`, h.owned())
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWebhookEndpoint(t *testing.T) {
	h := newHarness(t)
	init := h.create(t)

	body := `{"event":"charge.success","data":{"id":9,"reference":"` + init.Reference + `","status":"success","amount":2537500,"currency":"NGN","channel":"card","paid_at":"2026-03-04T10:00:00Z"}}`

	status, _ := h.do(t, http.MethodPost, "/api/public/payments/webhook", body, map[string]string{SignatureHeader: "deadbeef"})
	assert.Equal(t, http.StatusUnauthorized, status)

	sig := gateway.SignHMACSHA512(webhookSecret, []byte(body))
	status, env := h.do(t, http.MethodPost, "/api/public/payments/webhook", body, map[string]string{SignatureHeader: sig})
	require.Equal(t, http.StatusOK, status, env.Message)
	var ack struct {
		Status        model.GatewayEventStatus `json:"status"`
		PaymentStatus model.PaymentStatus      `json:"payment_status"`
	}
	require.NoError(t, sonic.Unmarshal(env.Data, &ack))
	assert.Equal(t, model.GatewayEventStatusSuccess, ack.Status)
	assert.Equal(t, model.PaymentStatusSuccess, ack.PaymentStatus)

	admin := map[string]string{"X-Test-Admin": "1"}
	status, env = h.do(t, http.MethodGet, "/api/a/payment-gateway-events?reference="+init.Reference, "", admin)
	require.Equal(t, http.StatusOK, status)
	var events []map[string]any
	require.NoError(t, sonic.Unmarshal(env.Data, &events))
	assert.Len(t, events, 1)
}

func TestOwnershipAndCancel(t *testing.T) {
	h := newHarness(t)
	init := h.create(t)

	stranger := map[string]string{"X-Test-Proprietor": uuid.NewString()}
	status, _ := h.do(t, http.MethodPost, "/api/u/payments/"+init.Reference+"/cancel", "", stranger)
	assert.Equal(t, http.StatusForbidden, status)

	status, env := h.do(t, http.MethodPost, "/api/u/payments/"+init.Reference+"/cancel", "", h.owned())
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, model.PaymentStatusCancelled, decodePayment(t, env).PaymentStatus)

	// sudah terminal
	status, _ = h.do(t, http.MethodPost, "/api/u/payments/"+init.Reference+"/cancel", "", h.owned())
	assert.Equal(t, http.StatusConflict, status)

	// retry hanya dari failed
	status, _ = h.do(t, http.MethodPost, "/api/u/payments/"+init.Payment.PaymentID.String()+"/retry", "", h.owned())
	assert.Equal(t, http.StatusConflict, status)
}

func TestAdminRefund(t *testing.T) {
	h := newHarness(t)
	init := h.create(t)
	admin := map[string]string{"X-Test-Admin": "1"}
	refundPath := "/api/a/payments/" + init.Payment.PaymentID.String() + "/refund"

	status, _ := h.do(t, http.MethodPost, refundPath, `{}`, h.owned())
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.do(t, http.MethodPost, refundPath, `{}`, admin)
	assert.Equal(t, http.StatusConflict, status, "pending cannot be refunded")

	status, _ = h.do(t, http.MethodPost, "/api/public/payments/simulate/"+init.Reference, "", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = h.do(t, http.MethodPost, refundPath, `{"amount_minor":99999999}`, admin)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := h.do(t, http.MethodPost, refundPath, `{"reason":"duplicate"}`, admin)
	require.Equal(t, http.StatusOK, status, env.Message)
	p := decodePayment(t, env)
	assert.Equal(t, model.PaymentStatusRefunded, p.PaymentStatus)
	assert.Equal(t, p.PaymentTotalMinor, p.PaymentRefundedAmount)

	status, env = h.do(t, http.MethodGet, "/api/a/payments?status=refunded", "", admin)
	require.Equal(t, http.StatusOK, status)
	var rows []paymentResp
	require.NoError(t, sonic.Unmarshal(env.Data, &rows))
	assert.Len(t, rows, 1)

	status, _ = h.do(t, http.MethodGet, "/api/a/payments?status=bogus", "", admin)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.do(t, http.MethodGet, "/api/a/payments/"+uuid.NewString(), "", admin)
	assert.Equal(t, http.StatusNotFound, status)
}
