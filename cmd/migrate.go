package cmd

import (
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"napps_backend/internals/configs"
	database "napps_backend/internals/databases"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)
		return migrateAll(db)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func migrateAll(db *gorm.DB) error {
	return database.Migrate(db, configs.WithComponent("migrate"), models...)
}
