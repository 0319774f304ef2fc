package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"napps_backend/internals/configs"
	paySvc "napps_backend/internals/features/finance/payments/service"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Re-verify stale pending/processing payments once",
	Long: `Re-verify ledger entries that stayed pending or processing longer than
--stale-after against the configured gateway. Entries the gateway cannot
answer for are left untouched and picked up by the next run.`,
	Example: `  napps reconcile
  napps reconcile --stale-after 2h --timeout 10m`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().Duration("stale-after", 0, "age after which a pending entry is re-verified (default RECONCILE_STALE_AFTER)")
	reconcileCmd.Flags().Duration("timeout", 5*time.Minute, "overall timeout for the sweep")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	log := configs.WithComponent("reconcile")
	staleAfter, _ := cmd.Flags().GetDuration("stale-after")
	if staleAfter <= 0 {
		staleAfter = cfg.ReconcileStaleAfter
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a, err := bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := paySvc.NewReconciler(a.payments, staleAfter, log).
		WithAbandonAfter(cfg.ReconcileAbandonAfter).
		RunOnce(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("checked", rep.Checked).
		Int("settled", rep.Settled).
		Int("failed", rep.Failed).
		Int("pending", rep.Pending).
		Int("expired", rep.Expired).
		Int("unavailable", rep.Unavailable).
		Int("errors", rep.Errors).
		Msg("reconcile finished")
	return nil
}
