package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"napps_backend/internals/configs"
	"napps_backend/internals/features/finance/payments/gateway"
	"napps_backend/internals/features/finance/payments/model"
)

func TestReconciler_RunOnce(t *testing.T) {
	f := newFixture(t, configs.GatewayModeLive)
	ctx := context.Background()
	a := f.initialize(t)
	b := f.initialize(t)

	f.svc.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	rep, err := NewReconciler(f.svc, time.Hour, zerolog.Nop()).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Checked)
	assert.Equal(t, 2, rep.Settled)

	assert.Equal(t, model.PaymentStatusSuccess, f.entry(t, a.Reference).PaymentStatus)
	assert.Equal(t, model.PaymentStatusSuccess, f.entry(t, b.Reference).PaymentStatus)

	// sweep kedua tidak menemukan apa pun
	rep, err = NewReconciler(f.svc, time.Hour, zerolog.Nop()).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Checked)
}

func TestReconciler_GatewayDownKeepsEntries(t *testing.T) {
	f := newFixture(t, configs.GatewayModeLive)
	res := f.initialize(t)
	f.gw.setVerify(nil, &gateway.Error{Op: "verify transaction", Err: gateway.ErrUnavailable})

	f.svc.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	rep, err := NewReconciler(f.svc, time.Hour, zerolog.Nop()).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Unavailable)
	assert.Equal(t, model.PaymentStatusPending, f.entry(t, res.Reference).PaymentStatus)
}

func TestReconciler_InFlightPastDeadlineIsFailed(t *testing.T) {
	f := newFixture(t, configs.GatewayModeLive)
	ctx := context.Background()
	res := f.initialize(t)
	f.gw.setVerify(&gateway.TransactionResult{Status: gateway.ResultProcessing, RemoteStatus: "ongoing"}, nil)

	f.svc.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })

	// belum lewat batas: tetap processing
	rep, err := NewReconciler(f.svc, time.Hour, zerolog.Nop()).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Pending)
	assert.Equal(t, model.PaymentStatusProcessing, f.entry(t, res.Reference).PaymentStatus)

	f.svc.WithClock(func() time.Time { return time.Now().Add(26 * time.Hour) })
	rep, err = NewReconciler(f.svc, time.Hour, zerolog.Nop()).WithAbandonAfter(24 * time.Hour).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Expired)

	e := f.entry(t, res.Reference)
	assert.Equal(t, model.PaymentStatusFailed, e.PaymentStatus)
	require.NotNil(t, e.PaymentFailureReason)
	assert.Equal(t, ReasonVerificationTimeout, *e.PaymentFailureReason)
	assert.Equal(t, 0, f.balances.Cleared())

	// entry terminal tidak disentuh sweep berikutnya
	rep, err = NewReconciler(f.svc, time.Hour, zerolog.Nop()).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Checked)
}

func TestReconciler_StartRejectsBadSchedule(t *testing.T) {
	f := newFixture(t, configs.GatewayModeLive)
	_, err := NewReconciler(f.svc, time.Hour, zerolog.Nop()).Start("not a cron")
	assert.Error(t, err)
}
