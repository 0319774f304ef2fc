package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"napps_backend/internals/configs"
)

func newTestPaystack(t *testing.T, h http.HandlerFunc) *Paystack {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewPaystack(configs.GatewayConfig{
		Provider:          configs.GatewayProviderPaystack,
		PaystackSecretKey: "sk_test_secret",
		PaystackBaseURL:   srv.URL,
		Timeout:           2 * time.Second,
	}, zerolog.Nop())
}

func TestMapPaystackStatus(t *testing.T) {
	cases := map[string]struct {
		status ResultStatus
		reason string
	}{
		"success":       {ResultSuccess, ""},
		"failed":        {ResultFailed, "failed"},
		"reversed":      {ResultFailed, "reversed"},
		"abandoned":     {ResultFailed, "abandoned"},
		"ongoing":       {ResultProcessing, ""},
		"pending":       {ResultProcessing, ""},
		"processing":    {ResultProcessing, ""},
		"queued":        {ResultProcessing, ""},
		"send_otp":      {ResultProcessing, ""},
		"send_birthday": {ResultProcessing, ""},
		"weird":         {ResultFailed, ReasonUnrecognizedStatus},
		"":              {ResultFailed, ReasonUnrecognizedStatus},
	}
	for in, want := range cases {
		st, reason := MapPaystackStatus(in)
		assert.Equal(t, want.status, st, in)
		assert.Equal(t, want.reason, reason, in)
	}
}

func TestPaystack_InitializeSession(t *testing.T) {
	var got initializeBody
	ps := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, sonic.Unmarshal(b, &got))
		_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"NAPPS-1"}}`))
	})

	split := "SPL_123"
	s, err := ps.InitializeSession(context.Background(), SessionRequest{
		Email:       "owner@school.ng",
		AmountMinor: 2537500,
		Reference:   "NAPPS-1",
		Currency:    "NGN",
		SplitCode:   &split,
		Metadata:    map[string]any{"fee_code": "annual_dues"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc", s.AuthorizationURL)
	assert.Equal(t, "abc", s.AccessCode)
	assert.Equal(t, int64(2537500), got.Amount)
	assert.Equal(t, "SPL_123", got.SplitCode)
	assert.Equal(t, "NGN", got.Currency)
}

func TestPaystack_DeclineVsUnavailable(t *testing.T) {
	declined := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid email"}`))
	})
	_, err := declined.InitializeSession(context.Background(), SessionRequest{Reference: "r"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "Invalid email", ge.Message)

	statusFalse := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":false,"message":"Duplicate Transaction Reference"}`))
	})
	_, err = statusFalse.InitializeSession(context.Background(), SessionRequest{Reference: "r"})
	assert.ErrorIs(t, err, ErrRejected)

	down := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err = down.InitializeSession(context.Background(), SessionRequest{Reference: "r"})
	assert.ErrorIs(t, err, ErrUnavailable)

	garbage := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})
	_, err = garbage.VerifyByReference(context.Background(), "r")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPaystack_NetworkErrorIsUnavailable(t *testing.T) {
	ps := NewPaystack(configs.GatewayConfig{
		PaystackSecretKey: "sk",
		PaystackBaseURL:   "http://127.0.0.1:1",
		Timeout:           time.Second,
	}, zerolog.Nop())
	_, err := ps.VerifyByReference(context.Background(), "NAPPS-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPaystack_VerifyByReference(t *testing.T) {
	ps := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/NAPPS-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{
			"id":4099260516,"status":"success","reference":"NAPPS-1","amount":2537500,"currency":"NGN",
			"channel":"card","gateway_response":"Successful","paid_at":"2026-03-04T10:00:00.000Z",
			"authorization":{"card_type":"visa ","bank":"TEST BANK","last4":"4081","brand":"visa"}}}`))
	})

	res, err := ps.VerifyByReference(context.Background(), "NAPPS-1")
	require.NoError(t, err)
	assert.Equal(t, ResultSuccess, res.Status)
	assert.Equal(t, "4099260516", res.TransactionID)
	assert.Equal(t, "card", res.Channel)
	assert.Equal(t, int64(2537500), res.AmountMinor)
	assert.Equal(t, "visa", res.Authorization.CardType)
	assert.Equal(t, "4081", res.Authorization.Last4)
	require.NotNil(t, res.PaidAt)
	assert.True(t, res.PaidAt.Equal(time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)))
	assert.False(t, res.Simulated)
}

func TestPaystack_VerifyAbandoned(t *testing.T) {
	ps := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","data":{"id":1,"status":"abandoned","reference":"NAPPS-2","amount":100,"gateway_response":"The transaction was not completed","paid_at":null}}`))
	})
	res, err := ps.VerifyByReference(context.Background(), "NAPPS-2")
	require.NoError(t, err)
	assert.Equal(t, ResultFailed, res.Status)
	assert.Equal(t, "abandoned", res.FailureReason)
	assert.Nil(t, res.PaidAt)
}

func TestPaystack_Refund(t *testing.T) {
	var got refundBody
	ps := newTestPaystack(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/refund", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, sonic.Unmarshal(b, &got))
		_, _ = w.Write([]byte(`{"status":true,"message":"Refund has been queued for processing","data":{"id":77,"status":"pending"}}`))
	})
	res, err := ps.Refund(context.Background(), RefundRequest{TransactionID: "4099260516", Reference: "NAPPS-1", AmountMinor: 1000, Note: "duplicate"})
	require.NoError(t, err)
	assert.Equal(t, "77", res.RefundID)
	assert.Equal(t, "4099260516", got.Transaction)
	assert.Equal(t, int64(1000), got.Amount)
	assert.Equal(t, "duplicate", got.MerchantNote)
}
