package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// RetryOfIndex: satu retry per entry failed
const RetryOfIndex = "uq_payment_ledger_retry_of"

// RetryOfIndexDDL juga dipakai test sqlite
const RetryOfIndexDDL = `CREATE UNIQUE INDEX IF NOT EXISTS ` + RetryOfIndex + `
		ON payment_ledger_entries (payment_retry_of_id)
		WHERE payment_retry_of_id IS NOT NULL`

// partial index tidak bisa dinyatakan lewat tag gorm
var postMigrate = []string{
	RetryOfIndexDDL,
	`CREATE INDEX IF NOT EXISTS ix_payment_ledger_stale
		ON payment_ledger_entries (payment_updated_at)
		WHERE payment_status IN ('pending', 'processing') AND payment_is_active`,
}

// Migrate menjalankan AutoMigrate lalu index tambahan.
func Migrate(db *gorm.DB, l zerolog.Logger, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range postMigrate {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("post migrate: %w", err)
		}
	}
	l.Info().Int("models", len(models)).Str("dialect", db.Dialector.Name()).Msg("migration done")
	return nil
}
