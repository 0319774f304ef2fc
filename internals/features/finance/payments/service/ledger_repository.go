// file: internals/features/finance/payments/service/ledger_repository.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	database "napps_backend/internals/databases"
	"napps_backend/internals/features/finance/payments/model"
)

// LedgerRepository: akses tabel payment_ledger_entries. Semua query ikut transaksi di ctx bila ada.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository { return &LedgerRepository{db: db} }

type ListFilter struct {
	Status       model.PaymentStatus
	ProprietorID *uuid.UUID
	Reference    string
	Provider     string
	From         *time.Time
	To           *time.Time
	ActiveOnly   bool
	Offset       int
	Limit        int
}

func (r *LedgerRepository) conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db)
}

// Create insert entry baru. Reference duplikat → ErrReferenceConflict,
// retry kedua untuk entry yang sama → ErrInvalidState.
func (r *LedgerRepository) Create(ctx context.Context, e *model.PaymentLedgerEntry) error {
	if err := r.conn(ctx).Create(e).Error; err != nil {
		if !database.IsUniqueViolation(err) {
			return fmt.Errorf("create payment %s: %w", e.PaymentReference, err)
		}
		if e.PaymentRetryOfID != nil && r.alreadyRetried(ctx, err, *e.PaymentRetryOfID) {
			return payErrf("create payment", ErrInvalidState, e.PaymentReference, "payment %s already retried", *e.PaymentRetryOfID)
		}
		return payErr("create payment", ErrReferenceConflict, e.PaymentReference, err)
	}
	return nil
}

// alreadyRetried: nama constraint dari postgres, atau cek ulang baris pengganti
// untuk driver yang tidak membawa nama constraint.
func (r *LedgerRepository) alreadyRetried(ctx context.Context, err error, oldID uuid.UUID) bool {
	if name := database.UniqueConstraint(err); name != "" {
		return name == database.RetryOfIndex
	}
	prev, perr := r.RetryOf(ctx, oldID)
	return perr == nil && prev != nil
}

func (r *LedgerRepository) first(ctx context.Context, op, ref string, query string, args ...any) (*model.PaymentLedgerEntry, error) {
	var e model.PaymentLedgerEntry
	err := r.conn(ctx).Where(query, args...).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payErr(op, ErrPaymentNotFound, ref, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}

func (r *LedgerRepository) ByReference(ctx context.Context, ref string) (*model.PaymentLedgerEntry, error) {
	return r.first(ctx, "get payment", ref, "payment_reference = ?", ref)
}

func (r *LedgerRepository) ByID(ctx context.Context, id uuid.UUID) (*model.PaymentLedgerEntry, error) {
	return r.first(ctx, "get payment", id.String(), "payment_id = ?", id)
}

// RetryOf mengembalikan entry yang menggantikan id, nil kalau belum pernah di-retry.
func (r *LedgerRepository) RetryOf(ctx context.Context, id uuid.UUID) (*model.PaymentLedgerEntry, error) {
	e, err := r.first(ctx, "get retry", id.String(), "payment_retry_of_id = ?", id)
	if errors.Is(err, ErrPaymentNotFound) {
		return nil, nil
	}
	return e, err
}

func (r *LedgerRepository) ByPayer(ctx context.Context, proprietorID uuid.UUID) ([]model.PaymentLedgerEntry, error) {
	var out []model.PaymentLedgerEntry
	err := r.conn(ctx).
		Where("payment_proprietor_id = ?", proprietorID).
		Order("payment_created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list payments by payer: %w", err)
	}
	return out, nil
}

func (r *LedgerRepository) List(ctx context.Context, f ListFilter) ([]model.PaymentLedgerEntry, int64, error) {
	q := r.conn(ctx).Model(&model.PaymentLedgerEntry{})
	if f.Status != "" {
		q = q.Where("payment_status = ?", f.Status)
	}
	if f.ProprietorID != nil {
		q = q.Where("payment_proprietor_id = ?", *f.ProprietorID)
	}
	if s := strings.TrimSpace(f.Reference); s != "" {
		q = q.Where("payment_reference LIKE ?", "%"+s+"%")
	}
	if f.Provider != "" {
		q = q.Where("payment_provider = ?", f.Provider)
	}
	if f.From != nil {
		q = q.Where("payment_created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("payment_created_at < ?", *f.To)
	}
	if f.ActiveOnly {
		q = q.Where("payment_is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	var out []model.PaymentLedgerEntry
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Order("payment_created_at DESC").Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	return out, total, nil
}

// ListStale: entry pending/processing yang belum disentuh sejak before. Dipakai reconcile.
func (r *LedgerRepository) ListStale(ctx context.Context, before time.Time, limit int) ([]model.PaymentLedgerEntry, error) {
	var out []model.PaymentLedgerEntry
	q := r.conn(ctx).
		Where("payment_status IN ?", []model.PaymentStatus{model.PaymentStatusPending, model.PaymentStatusProcessing}).
		Where("payment_updated_at < ?", before).
		Where("payment_is_active = ?", true).
		Order("payment_updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list stale payments: %w", err)
	}
	return out, nil
}

/* ===================== Writes ===================== */

// Transition: compare-and-swap status. Hanya writer dengan RowsAffected == 1 yang menang.
func (r *LedgerRepository) Transition(ctx context.Context, ref string, to model.PaymentStatus, fields map[string]any) (bool, error) {
	sources := model.SourcesFor(to)
	if len(sources) == 0 {
		return false, payErrf("transition", ErrInvalidState, ref, "no transition leads to %s", to)
	}
	updates := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		updates[k] = v
	}
	updates["payment_status"] = to
	updates["payment_updated_at"] = time.Now()

	res := r.conn(ctx).
		Model(&model.PaymentLedgerEntry{}).
		Where("payment_reference = ? AND payment_status IN ?", ref, sources).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("transition %s to %s: %w", ref, to, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Patch mengubah kolom non-status. payment_status dan payment_reference ditolak.
func (r *LedgerRepository) Patch(ctx context.Context, ref string, fields map[string]any) error {
	if _, ok := fields["payment_status"]; ok {
		return payErrf("patch payment", ErrInvalidState, ref, "status must change through Transition")
	}
	if _, ok := fields["payment_reference"]; ok {
		return payErrf("patch payment", ErrInvalidState, ref, "reference is immutable")
	}
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["payment_updated_at"] = time.Now()

	res := r.conn(ctx).
		Model(&model.PaymentLedgerEntry{}).
		Where("payment_reference = ?", ref).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("patch payment %s: %w", ref, res.Error)
	}
	if res.RowsAffected == 0 {
		return payErr("patch payment", ErrPaymentNotFound, ref, nil)
	}
	return nil
}
