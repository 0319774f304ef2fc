package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"napps_backend/internals/features/proprietors/model"
	"napps_backend/internals/testutil"
)

func TestBalanceService_SetProprietorCleared(t *testing.T) {
	db := testutil.OpenSQLite(t, &model.Proprietor{})
	svc := NewBalanceService(db)
	ctx := context.Background()

	p := model.Proprietor{
		ProprietorEmail:          "owner@school.ng",
		ProprietorFullName:       "Ada Obi",
		ProprietorTotalAmountDue: decimal.RequireFromString("25000"),
	}
	require.NoError(t, db.Create(&p).Error)

	bal, err := svc.GetProprietorBalance(ctx, p.ProprietorID)
	require.NoError(t, err)
	assert.Equal(t, model.ClearingOutstanding, bal.ClearingStatus)
	assert.True(t, bal.TotalAmountDue.Equal(decimal.NewFromInt(25000)))

	paidAt := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.SetProprietorCleared(ctx, p.ProprietorID, paidAt))

	bal, err = svc.GetProprietorBalance(ctx, p.ProprietorID)
	require.NoError(t, err)
	assert.Equal(t, model.ClearingCleared, bal.ClearingStatus)
	assert.True(t, bal.TotalAmountDue.IsZero())
	require.NotNil(t, bal.LastPaymentDate)
	assert.True(t, bal.LastPaymentDate.Equal(paidAt))
}

func TestBalanceService_NotFound(t *testing.T) {
	db := testutil.OpenSQLite(t, &model.Proprietor{})
	svc := NewBalanceService(db)

	_, err := svc.GetProprietorBalance(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProprietorNotFound)

	err = svc.SetProprietorCleared(context.Background(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, ErrProprietorNotFound)
}
