package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TargetRepository struct {
	*pg.DB
}

func NewTargetRepository(db *pg.DB) *TargetRepository {
	return &TargetRepository{
		db,
	}
}

func (r *TargetRepository) Create(ctx context.Context, t *model.StoreRevenueTarget) (*model.StoreRevenueTarget, error) {
	entity := &StoreRevenueTargetEntity{
		StoreID: t.StoreID,
		Month:   t.Month,
		Year:    t.Year,
		Amount:  t.Amount,
	}
	entity.Stamp(ctx, true)

	if err := r.Write(ctx).Omit("Store").Create(entity).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrTargetExists
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}
	return toTargetModel(entity), nil
}

func (r *TargetRepository) GetByID(ctx context.Context, id int64) (*model.StoreRevenueTarget, error) {
	var entity StoreRevenueTargetEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	return toTargetModel(&entity), nil
}

// Find returns the target of a store for one month.
func (r *TargetRepository) Find(ctx context.Context, storeID int64, month, year int) (*model.StoreRevenueTarget, error) {
	var entity StoreRevenueTargetEntity
	err := r.Read(ctx).
		Where("store_id = ? AND month = ? AND year = ?", storeID, month, year).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	return toTargetModel(&entity), nil
}

func (r *TargetRepository) UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) (*model.StoreRevenueTarget, error) {
	result := r.Write(ctx).Model(&StoreRevenueTargetEntity{}).Where("id = ?", id).Updates(map[string]any{
		"amount":     amount,
		"updated_by": pg.Actor(ctx),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrTargetNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *TargetRepository) Delete(ctx context.Context, id int64) error {
	result := r.Write(ctx).Where("id = ?", id).Delete(&StoreRevenueTargetEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTargetNotFound
	}
	return nil
}

func (r *TargetRepository) ListByStore(ctx context.Context, storeID int64) ([]*model.StoreRevenueTarget, error) {
	var entities []*StoreRevenueTargetEntity
	err := r.Read(ctx).
		Where("store_id = ?", storeID).
		Order("year DESC, month DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toTargetModels(entities), nil
}
