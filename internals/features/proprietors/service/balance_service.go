// file: internals/features/proprietors/service/balance_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	database "napps_backend/internals/databases"
	"napps_backend/internals/features/proprietors/model"
)

var ErrProprietorNotFound = errors.New("proprietor not found")

// Balance: identitas + tagihan yang dibutuhkan saat membuat pembayaran.
type Balance struct {
	ProprietorID    uuid.UUID            `json:"proprietor_id"`
	Email           string               `json:"email"`
	FullName        string               `json:"full_name"`
	SchoolID        *uuid.UUID           `json:"school_id,omitempty"`
	ClearingStatus  model.ClearingStatus `json:"clearing_status"`
	TotalAmountDue  decimal.Decimal      `json:"total_amount_due"`
	LastPaymentDate *time.Time           `json:"last_payment_date,omitempty"`
}

type BalanceService struct {
	db *gorm.DB
}

func NewBalanceService(db *gorm.DB) *BalanceService { return &BalanceService{db: db} }

func (s *BalanceService) GetProprietorBalance(ctx context.Context, id uuid.UUID) (*Balance, error) {
	var p model.Proprietor
	err := database.Conn(ctx, s.db).First(&p, "proprietor_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProprietorNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get proprietor balance: %w", err)
	}
	return &Balance{
		ProprietorID:    p.ProprietorID,
		Email:           p.ProprietorEmail,
		FullName:        p.ProprietorFullName,
		SchoolID:        p.ProprietorSchoolID,
		ClearingStatus:  p.ProprietorClearingStatus,
		TotalAmountDue:  p.ProprietorTotalAmountDue,
		LastPaymentDate: p.ProprietorLastPaymentDate,
	}, nil
}

// SetProprietorCleared nol-kan tagihan dan tandai cleared. Ikut transaksi di ctx bila ada.
func (s *BalanceService) SetProprietorCleared(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	res := database.Conn(ctx, s.db).
		Model(&model.Proprietor{}).
		Where("proprietor_id = ?", id).
		Updates(map[string]any{
			"proprietor_total_amount_due":  decimal.Zero,
			"proprietor_clearing_status":   model.ClearingCleared,
			"proprietor_last_payment_date": paidAt,
			"proprietor_updated_at":        time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("set proprietor cleared: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrProprietorNotFound, id)
	}
	return nil
}
