// file: internals/features/proprietors/model/proprietor_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ClearingStatus string

const (
	ClearingPending     ClearingStatus = "pending"
	ClearingCleared     ClearingStatus = "cleared"
	ClearingOutstanding ClearingStatus = "outstanding"
)

// Proprietor: hanya kolom yang dibaca/ditulis modul pembayaran.
// CRUD lengkap milik modul proprietor.
type Proprietor struct {
	ProprietorID       uuid.UUID  `json:"proprietor_id" gorm:"column:proprietor_id;type:uuid;primaryKey"`
	ProprietorEmail    string     `json:"proprietor_email" gorm:"column:proprietor_email;type:varchar(255);not null;uniqueIndex:uq_proprietors_email"`
	ProprietorFullName string     `json:"proprietor_full_name" gorm:"column:proprietor_full_name;type:varchar(200);not null"`
	ProprietorSchoolID *uuid.UUID `json:"proprietor_school_id,omitempty" gorm:"column:proprietor_school_id;type:uuid"`

	ProprietorClearingStatus  ClearingStatus  `json:"proprietor_clearing_status" gorm:"column:proprietor_clearing_status;type:varchar(20);not null"`
	ProprietorTotalAmountDue  decimal.Decimal `json:"proprietor_total_amount_due" gorm:"column:proprietor_total_amount_due;type:numeric(14,2);not null"`
	ProprietorLastPaymentDate *time.Time      `json:"proprietor_last_payment_date,omitempty" gorm:"column:proprietor_last_payment_date"`

	ProprietorCreatedAt time.Time `json:"proprietor_created_at" gorm:"column:proprietor_created_at;not null;autoCreateTime"`
	ProprietorUpdatedAt time.Time `json:"proprietor_updated_at" gorm:"column:proprietor_updated_at;not null;autoUpdateTime"`
}

func (Proprietor) TableName() string { return "proprietors" }

func (p *Proprietor) BeforeCreate(tx *gorm.DB) error {
	if p.ProprietorID == uuid.Nil {
		p.ProprietorID = uuid.New()
	}
	if p.ProprietorClearingStatus == "" {
		p.ProprietorClearingStatus = ClearingOutstanding
	}
	return nil
}
