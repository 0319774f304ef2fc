package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"napps_backend/internals/configs"
	database "napps_backend/internals/databases"
	feeModel "napps_backend/internals/features/finance/fees/model"
	feeSvc "napps_backend/internals/features/finance/fees/service"
	"napps_backend/internals/features/finance/payments/gateway"
	payModel "napps_backend/internals/features/finance/payments/model"
	paySvc "napps_backend/internals/features/finance/payments/service"
	propModel "napps_backend/internals/features/proprietors/model"
	propSvc "napps_backend/internals/features/proprietors/service"
)

// models: urutan AutoMigrate
var models = []any{
	&feeModel.FeeDefinition{},
	&propModel.Proprietor{},
	&payModel.PaymentLedgerEntry{},
	&payModel.PaymentGatewayEvent{},
}

type app struct {
	db         *gorm.DB
	redis      *redis.Client
	catalog    *feeSvc.Catalog
	calculator *feeSvc.Calculator
	payments   *paySvc.PaymentService
}

func openDB(c *configs.Config) (*gorm.DB, error) {
	l := configs.WithComponent("db")
	db, err := database.ConnectDB(c.Database, l)
	if err != nil {
		return nil, err
	}
	if err := database.TunePool(db, c.Database); err != nil {
		return nil, err
	}
	return db, nil
}

// bootstrap: DB + gateway + service. Dipakai serve dan reconcile.
func bootstrap(ctx context.Context, c *configs.Config) (*app, error) {
	db, err := openDB(c)
	if err != nil {
		return nil, err
	}
	a := &app{db: db}
	fail := func(err error) (*app, error) {
		a.Close()
		return nil, err
	}

	var locker paySvc.Locker
	if c.RedisURL != "" {
		opt, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return fail(fmt.Errorf("parse REDIS_URL: %w", err))
		}
		a.redis = redis.NewClient(opt)
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := a.redis.Ping(pctx).Err(); err != nil {
			return fail(fmt.Errorf("redis ping: %w", err))
		}
		locker = paySvc.NewRedisLocker(a.redis, 30*time.Second)
		redisLog := configs.WithComponent("redis")
		redisLog.Info().Msg("using redis payment lock")
	}

	gw, err := gateway.New(c, configs.WithComponent("gateway"))
	if err != nil {
		return fail(err)
	}

	a.catalog = feeSvc.NewCatalog(db)
	a.calculator = feeSvc.NewCalculator(a.catalog)
	payLog := configs.WithComponent("payments")
	a.payments = paySvc.NewPaymentService(paySvc.Deps{
		DB:       db,
		Fees:     a.calculator,
		Balances: propSvc.NewBalanceService(db),
		Gateway:  gw,
		Locker:   locker,
		Log:      payLog,
	})
	a.payments.OnSettled(settledLogger(payLog))
	return a, nil
}

func settledLogger(l zerolog.Logger) paySvc.SettledHook {
	return func(_ context.Context, e payModel.PaymentLedgerEntry) {
		l.Info().
			Str("reference", e.PaymentReference).
			Str("proprietor_id", e.PaymentProprietorID.String()).
			Int64("total_minor", e.TotalMinor()).
			Bool("simulated", e.PaymentSimulated).
			Msg("payment settled")
	}
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = database.Close(a.db)
	}
}
