package proprietors

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"napps_backend/internals/features/proprietors/model"
)

type ProprietorSeed struct {
	Email          string          `json:"email"`
	FullName       string          `json:"full_name"`
	TotalAmountDue decimal.Decimal `json:"total_amount_due"`
}

// SeedProprietorsFromJSON: upsert-by-email tanpa menimpa data yang sudah ada.
func SeedProprietorsFromJSON(db *gorm.DB, filePath string, l zerolog.Logger) (int, error) {
	file, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var seeds []ProprietorSeed
	if err := sonic.Unmarshal(file, &seeds); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}
	if len(seeds) == 0 {
		return 0, nil
	}

	rows := make([]model.Proprietor, 0, len(seeds))
	for _, s := range seeds {
		rows = append(rows, model.Proprietor{
			ProprietorEmail:          s.Email,
			ProprietorFullName:       s.FullName,
			ProprietorTotalAmountDue: s.TotalAmountDue,
		})
	}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "proprietor_email"}},
		DoNothing: true,
	}).Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("insert proprietors: %w", res.Error)
	}
	l.Info().Int64("inserted", res.RowsAffected).Msg("proprietors seeded")
	return int(res.RowsAffected), nil
}
