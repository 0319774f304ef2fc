package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	database "napps_backend/internals/databases"
	"napps_backend/internals/features/finance/payments/model"
)

// EventRepository menyimpan log webhook mentah (payment_gateway_events).
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository { return &EventRepository{db: db} }

type EventFilter struct {
	Provider  string
	Status    model.GatewayEventStatus
	Reference string
	PaymentID *uuid.UUID
	Offset    int
	Limit     int
}

func (r *EventRepository) Record(ctx context.Context, ev *model.PaymentGatewayEvent) error {
	if err := database.Conn(ctx, r.db).Create(ev).Error; err != nil {
		return fmt.Errorf("record gateway event: %w", err)
	}
	return nil
}

// Finish menutup event dengan status akhir pemrosesan.
func (r *EventRepository) Finish(ctx context.Context, id uuid.UUID, status model.GatewayEventStatus, paymentID *uuid.UUID, errText string) error {
	now := time.Now()
	updates := map[string]any{
		"gateway_event_status":       status,
		"gateway_event_processed_at": now,
		"gateway_event_updated_at":   now,
	}
	if paymentID != nil {
		updates["gateway_event_payment_id"] = *paymentID
	}
	if errText != "" {
		updates["gateway_event_error"] = errText
	}
	err := database.Conn(ctx, r.db).
		Model(&model.PaymentGatewayEvent{}).
		Where("gateway_event_id = ?", id).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("finish gateway event %s: %w", id, err)
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context, f EventFilter) ([]model.PaymentGatewayEvent, int64, error) {
	q := database.Conn(ctx, r.db).Model(&model.PaymentGatewayEvent{})
	if f.Provider != "" {
		q = q.Where("gateway_event_provider = ?", f.Provider)
	}
	if f.Status != "" {
		q = q.Where("gateway_event_status = ?", f.Status)
	}
	if f.Reference != "" {
		q = q.Where("gateway_event_reference = ?", f.Reference)
	}
	if f.PaymentID != nil {
		q = q.Where("gateway_event_payment_id = ?", *f.PaymentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count gateway events: %w", err)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var out []model.PaymentGatewayEvent
	if err := q.Order("gateway_event_received_at DESC").Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("list gateway events: %w", err)
	}
	return out, total, nil
}
