// file: internals/features/finance/fees/service/catalog.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	database "napps_backend/internals/databases"
	"napps_backend/internals/features/finance/fees/model"
)

type ListFilter struct {
	Code       string
	ActiveOnly bool
	At         time.Time
	Offset     int
	Limit      int
}

// Catalog menyimpan fee_definitions (versioned) di Postgres via GORM.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog { return &Catalog{db: db} }

// activeScope: is_active + validity window berisi t
func activeScope(t time.Time) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("fee_definition_is_active = ?", true).
			Where("fee_definition_valid_from IS NULL OR fee_definition_valid_from <= ?", t).
			Where("fee_definition_valid_until IS NULL OR fee_definition_valid_until > ?", t)
	}
}

// ResolveActive picks the active version whose window contains at, latest start first.
func (c *Catalog) ResolveActive(ctx context.Context, code string, at time.Time) (*model.FeeDefinition, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	var def model.FeeDefinition
	err := database.Conn(ctx, c.db).
		Scopes(activeScope(at)).
		Where("fee_definition_code = ?", code).
		Order("fee_definition_valid_from IS NULL, fee_definition_valid_from DESC").
		Order("fee_definition_version DESC").
		First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, feeErr(code, ErrFeeNotFound, "")
	}
	if err != nil {
		return nil, fmt.Errorf("resolve fee %q: %w", code, err)
	}
	return &def, nil
}

func (c *Catalog) List(ctx context.Context, f ListFilter) ([]model.FeeDefinition, int64, error) {
	q := database.Conn(ctx, c.db).Model(&model.FeeDefinition{})
	if s := strings.ToLower(strings.TrimSpace(f.Code)); s != "" {
		q = q.Where("fee_definition_code = ?", s)
	}
	if f.ActiveOnly {
		at := f.At
		if at.IsZero() {
			at = time.Now()
		}
		q = q.Scopes(activeScope(at))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count fee definitions: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	var rows []model.FeeDefinition
	if err := q.Order("fee_definition_code ASC").
		Order("fee_definition_version DESC").
		Offset(f.Offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list fee definitions: %w", err)
	}
	return rows, total, nil
}

func (c *Catalog) Get(ctx context.Context, id uuid.UUID) (*model.FeeDefinition, error) {
	var def model.FeeDefinition
	err := database.Conn(ctx, c.db).First(&def, "fee_definition_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, feeErr("", ErrFeeNotFound, id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("get fee definition: %w", err)
	}
	return &def, nil
}

func (c *Catalog) Create(ctx context.Context, def *model.FeeDefinition) error {
	err := database.Conn(ctx, c.db).Create(def).Error
	if database.IsUniqueViolation(err) {
		return feeErr(def.FeeDefinitionCode, ErrDuplicateDefinition, "")
	}
	if err != nil {
		return fmt.Errorf("create fee definition: %w", err)
	}
	return nil
}

// Save menulis ulang definisi. Payment lama aman karena breakdown sudah di-snapshot.
func (c *Catalog) Save(ctx context.Context, def *model.FeeDefinition) error {
	err := database.Conn(ctx, c.db).Save(def).Error
	if database.IsUniqueViolation(err) {
		return feeErr(def.FeeDefinitionCode, ErrDuplicateDefinition, "")
	}
	if err != nil {
		return fmt.Errorf("save fee definition: %w", err)
	}
	return nil
}

func (c *Catalog) Delete(ctx context.Context, id uuid.UUID) error {
	res := database.Conn(ctx, c.db).Delete(&model.FeeDefinition{}, "fee_definition_id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete fee definition: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return feeErr("", ErrFeeNotFound, id.String())
	}
	return nil
}

// PublishVersion closes the window of the current version at effectiveFrom and
// inserts next as the following version of the same code.
func (c *Catalog) PublishVersion(ctx context.Context, id uuid.UUID, next *model.FeeDefinition, effectiveFrom time.Time) error {
	return database.RunInTx(ctx, c.db, func(ctx context.Context) error {
		tx := database.Conn(ctx, c.db)

		var cur model.FeeDefinition
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&cur, "fee_definition_id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return feeErr("", ErrFeeNotFound, id.String())
		}
		if err != nil {
			return fmt.Errorf("load fee definition: %w", err)
		}
		if cur.FeeDefinitionValidFrom != nil && !cur.FeeDefinitionValidFrom.Before(effectiveFrom) {
			return feeErr(cur.FeeDefinitionCode, ErrInvalidSelection, "effective_from must be after the current version start")
		}

		var maxVersion int
		if err := tx.Model(&model.FeeDefinition{}).
			Unscoped().
			Where("fee_definition_code = ?", cur.FeeDefinitionCode).
			Select("COALESCE(MAX(fee_definition_version), 0)").
			Scan(&maxVersion).Error; err != nil {
			return fmt.Errorf("max version: %w", err)
		}

		until := effectiveFrom
		if cur.FeeDefinitionValidUntil == nil || cur.FeeDefinitionValidUntil.After(until) {
			cur.FeeDefinitionValidUntil = &until
		}
		if err := tx.Save(&cur).Error; err != nil {
			return fmt.Errorf("close current version: %w", err)
		}

		from := effectiveFrom
		next.FeeDefinitionID = uuid.Nil
		next.FeeDefinitionCode = cur.FeeDefinitionCode
		next.FeeDefinitionVersion = maxVersion + 1
		next.FeeDefinitionValidFrom = &from
		return c.Create(ctx, next)
	})
}
