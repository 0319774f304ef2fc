package seeds

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"napps_backend/internals/seeds/fees"
	"napps_backend/internals/seeds/proprietors"
)

// RunAllSeeds membaca data JSON di bawah dir (default internals/seeds).
func RunAllSeeds(db *gorm.DB, dir string, l zerolog.Logger) error {
	if dir == "" {
		dir = "internals/seeds"
	}

	//* Fees
	if _, err := fees.SeedFeeDefinitionsFromJSON(db, filepath.Join(dir, "fees", "data_fee_definitions.json"), l); err != nil {
		return err
	}

	//* Proprietors (data contoh untuk dev/simulated)
	if _, err := proprietors.SeedProprietorsFromJSON(db, filepath.Join(dir, "proprietors", "data_proprietors.json"), l); err != nil {
		return err
	}
	return nil
}
