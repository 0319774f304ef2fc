// file: internals/features/finance/payments/service/reconcile.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"napps_backend/internals/features/finance/payments/model"
)

// ReasonVerificationTimeout: gateway masih melaporkan in-flight melewati batas abandonAfter.
const ReasonVerificationTimeout = "verification_timeout"

// Reconciler memverifikasi ulang entry pending/processing yang sudah basi.
// Entry yang masih in-flight setelah abandonAfter sejak dibuat diputus failed.
type Reconciler struct {
	svc          *PaymentService
	staleAfter   time.Duration
	abandonAfter time.Duration
	batch        int
	timeout      time.Duration
	log          zerolog.Logger
}

type ReconcileReport struct {
	Checked     int `json:"checked"`
	Settled     int `json:"settled"`
	Failed      int `json:"failed"`
	Pending     int `json:"pending"`
	Expired     int `json:"expired"`
	Unavailable int `json:"unavailable"`
	Errors      int `json:"errors"`
}

func NewReconciler(svc *PaymentService, staleAfter time.Duration, l zerolog.Logger) *Reconciler {
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	return &Reconciler{svc: svc, staleAfter: staleAfter, abandonAfter: 24 * time.Hour, batch: 100, timeout: 4 * time.Minute, log: l}
}

// WithAbandonAfter mengubah batas umur entry in-flight. Nilai <= 0 diabaikan.
func (r *Reconciler) WithAbandonAfter(d time.Duration) *Reconciler {
	if d > 0 {
		r.abandonAfter = d
	}
	return r
}

func (r *Reconciler) RunOnce(ctx context.Context) (ReconcileReport, error) {
	var rep ReconcileReport
	now := r.svc.now()
	before := now.Add(-r.staleAfter)
	deadline := now.Add(-r.abandonAfter)
	stale, err := r.svc.ledger.ListStale(ctx, before, r.batch)
	if err != nil {
		return rep, err
	}

	for _, e := range stale {
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		rep.Checked++
		got, err := r.svc.VerifyPayment(ctx, e.PaymentReference)
		switch {
		case errors.Is(err, ErrGatewayUnavailable):
			rep.Unavailable++
			continue
		case err != nil:
			rep.Errors++
			r.log.Error().Err(err).Str("reference", e.PaymentReference).Msg("reconcile verify failed")
			continue
		}
		switch got.PaymentStatus {
		case model.PaymentStatusSuccess:
			rep.Settled++
		case model.PaymentStatusFailed:
			rep.Failed++
		default:
			if !got.PaymentCreatedAt.Before(deadline) {
				rep.Pending++
				continue
			}
			expired, err := r.svc.expirePayment(ctx, got.PaymentReference, ReasonVerificationTimeout)
			switch {
			case err != nil:
				rep.Errors++
				r.log.Error().Err(err).Str("reference", got.PaymentReference).Msg("reconcile expire failed")
			case expired.PaymentStatus == model.PaymentStatusSuccess:
				// webhook sukses masuk duluan
				rep.Settled++
			case expired.PaymentStatus == model.PaymentStatusFailed:
				rep.Expired++
			default:
				rep.Pending++
			}
		}
	}

	r.log.Info().
		Int("checked", rep.Checked).
		Int("settled", rep.Settled).
		Int("failed", rep.Failed).
		Int("expired", rep.Expired).
		Int("unavailable", rep.Unavailable).
		Msg("reconcile sweep done")
	return rep, nil
}

// Start menjadwalkan RunOnce. Sweep yang masih jalan tidak ditumpuk.
func (r *Reconciler) Start(spec string) (*cron.Cron, error) {
	cl := cronLogger{log: r.log}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if _, err := r.RunOnce(ctx); err != nil {
			r.log.Error().Err(err).Msg("reconcile sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reconcile %q: %w", spec, err)
	}
	c.Start()
	r.log.Info().Str("schedule", spec).Dur("stale_after", r.staleAfter).Msg("reconcile scheduled")
	return c, nil
}

// cronLogger: adapter cron.Logger ke zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
