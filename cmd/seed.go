package cmd

import (
	"github.com/spf13/cobra"

	"napps_backend/internals/configs"
	database "napps_backend/internals/databases"
	"napps_backend/internals/seeds"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load fee definitions and sample proprietors from JSON",
	Example: `  napps seed
  napps seed --dir ./internals/seeds`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)
		return seeds.RunAllSeeds(db, dir, configs.WithComponent("seed"))
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("dir", "internals/seeds", "directory containing seed JSON files")
}
