package fees

import (
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"napps_backend/internals/features/finance/fees/model"
)

type FeeDefinitionSeed struct {
	Code                    string          `json:"code"`
	Name                    string          `json:"name"`
	Description             *string         `json:"description"`
	BaseAmount              decimal.Decimal `json:"base_amount"`
	Currency                string          `json:"currency"`
	PlatformFeePercent      decimal.Decimal `json:"platform_fee_percent"`
	PlatformFeeFixed        int64           `json:"platform_fee_fixed"`
	ProcessingFeePercent    decimal.Decimal `json:"processing_fee_percent"`
	ProcessingFeeCap        *int64          `json:"processing_fee_cap"`
	BeneficiarySharePercent decimal.Decimal `json:"beneficiary_share_percent"`
	BeneficiaryShareFixed   int64           `json:"beneficiary_share_fixed"`
	GatewaySplitID          *string         `json:"gateway_split_id"`
	ValidFrom               *time.Time      `json:"valid_from"`
}

// SeedFeeDefinitionsFromJSON: insert kode yang belum ada. Kode yang sudah ada dilewati.
func SeedFeeDefinitionsFromJSON(db *gorm.DB, filePath string, l zerolog.Logger) (int, error) {
	l.Info().Str("file", filePath).Msg("reading fee definitions seed")

	file, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var seeds []FeeDefinitionSeed
	if err := sonic.Unmarshal(file, &seeds); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}

	var existing []string
	if err := db.Model(&model.FeeDefinition{}).Distinct().Pluck("fee_definition_code", &existing).Error; err != nil {
		return 0, fmt.Errorf("load existing codes: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[c] = true
	}

	rows := make([]model.FeeDefinition, 0, len(seeds))
	for _, s := range seeds {
		if seen[s.Code] {
			l.Debug().Str("code", s.Code).Msg("fee definition exists, skipped")
			continue
		}
		seen[s.Code] = true
		rows = append(rows, model.FeeDefinition{
			FeeDefinitionCode:                    s.Code,
			FeeDefinitionName:                    s.Name,
			FeeDefinitionDescription:             s.Description,
			FeeDefinitionBaseAmount:              s.BaseAmount,
			FeeDefinitionCurrency:                s.Currency,
			FeeDefinitionPlatformFeePercent:      s.PlatformFeePercent,
			FeeDefinitionPlatformFeeFixed:        s.PlatformFeeFixed,
			FeeDefinitionProcessingFeePercent:    s.ProcessingFeePercent,
			FeeDefinitionProcessingFeeCap:        s.ProcessingFeeCap,
			FeeDefinitionBeneficiarySharePercent: s.BeneficiarySharePercent,
			FeeDefinitionBeneficiaryShareFixed:   s.BeneficiaryShareFixed,
			FeeDefinitionGatewaySplitID:          s.GatewaySplitID,
			FeeDefinitionIsActive:                true,
			FeeDefinitionValidFrom:               s.ValidFrom,
		})
	}

	if len(rows) == 0 {
		l.Info().Msg("no new fee definitions to insert")
		return 0, nil
	}
	if err := db.Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("insert fee definitions: %w", err)
	}
	l.Info().Int("inserted", len(rows)).Msg("fee definitions seeded")
	return len(rows), nil
}
