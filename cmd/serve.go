package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"napps_backend/internals/configs"
	paySvc "napps_backend/internals/features/finance/payments/service"
	helper "napps_backend/internals/helpers"
	"napps_backend/internals/middlewares"
	routes "napps_backend/internals/route"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "listen port (overrides PORT)")
	serveCmd.Flags().Bool("migrate", false, "run migrations before serving")
}

func newFiber() *fiber.App {
	return fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		BodyLimit:             1 << 20,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           90 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return helper.JsonError(c, fe.Code, fe.Message)
			}
			return helper.JsonError(c, fiber.StatusInternalServerError, "internal error")
		},
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	log := configs.WithComponent("http")
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required to serve the API")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if doMigrate, _ := cmd.Flags().GetBool("migrate"); doMigrate {
		if err := migrateAll(a.db); err != nil {
			return err
		}
	}

	if cfg.ReconcileCron != "" {
		rec := paySvc.NewReconciler(a.payments, cfg.ReconcileStaleAfter, configs.WithComponent("reconcile")).
			WithAbandonAfter(cfg.ReconcileAbandonAfter)
		c, err := rec.Start(cfg.ReconcileCron)
		if err != nil {
			return err
		}
		defer func() { <-c.Stop().Done() }()
	}

	app := newFiber()
	middlewares.SetupMiddlewares(app, middlewares.Options{
		CORSOrigins:    splitCSV(configs.GetEnv("CORS_ALLOW_ORIGINS", "*")),
		RequestTimeout: cfg.Gateway.Timeout + 5*time.Second,
		Log:            log,
	})
	routes.SetupRoutes(app, routes.Deps{
		Config:     cfg,
		DB:         a.db,
		Catalog:    a.catalog,
		Calculator: a.calculator,
		Payments:   a.payments,
		Log:        log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("gateway_mode", string(cfg.Gateway.Mode)).Msg("listening")
		errCh <- app.Listen("0.0.0.0:" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
