package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"napps_backend/internals/configs"
)

var version = "1.0.0"

var (
	envFile string
	cfg     *configs.Config
)

var rootCmd = &cobra.Command{
	Use:   "napps",
	Short: "NAPPS payments backend",
	Long: `NAPPS payments backend: fee catalog, checkout through Paystack or Midtrans,
webhook processing and reconciliation of proprietor dues.

Configuration is read from the environment (and .env when present).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// logger sementara sampai config terbaca
		_ = configs.SetupLogger(configs.DefaultLogConfig())
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
		} else {
			configs.LoadEnv()
		}

		c, err := configs.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			c.Port, _ = cmd.Flags().GetString("port")
		}
		if err := configs.SetupLogger(c.Log); err != nil {
			return fmt.Errorf("setup logger: %w", err)
		}
		cfg = c
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cmdLog := configs.WithComponent("cmd")
		cmdLog.Error().Err(err).Msg("command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "config", "", "path to an env file (default: .env when present)")
}
