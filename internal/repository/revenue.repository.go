package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RevenueRepository struct {
	*pg.DB
}

func NewRevenueRepository(db *pg.DB) *RevenueRepository {
	return &RevenueRepository{
		db,
	}
}

func (r *RevenueRepository) CreateType(ctx context.Context, t *model.RevenueType) (*model.RevenueType, error) {
	entity := &RevenueTypeEntity{Name: t.Name, Category: string(t.Category)}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRevenueTypeExists
		}
		return nil, err
	}
	return toRevenueTypeModel(entity), nil
}

func (r *RevenueRepository) GetType(ctx context.Context, id int64) (*model.RevenueType, error) {
	var entity RevenueTypeEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRevenueTypeNotFound
		}
		return nil, err
	}
	return toRevenueTypeModel(&entity), nil
}

func (r *RevenueRepository) UpdateType(ctx context.Context, t *model.RevenueType) (*model.RevenueType, error) {
	result := r.Write(ctx).Model(&RevenueTypeEntity{}).Where("id = ?", t.ID).Updates(map[string]any{
		"name":     t.Name,
		"category": string(t.Category),
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrRevenueTypeExists
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrRevenueTypeNotFound
	}
	return r.GetType(ctx, t.ID)
}

// DeleteType removes a revenue type that no item references.
func (r *RevenueRepository) DeleteType(ctx context.Context, id int64) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		var refs int64
		if err := r.Write(ctx).Model(&RevenueItemEntity{}).Where("revenue_type_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrRevenueTypeInUse
		}

		result := r.Write(ctx).Where("id = ?", id).Delete(&RevenueTypeEntity{})
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
				return ErrRevenueTypeInUse
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRevenueTypeNotFound
		}
		return nil
	})
}

func (r *RevenueRepository) ListTypes(ctx context.Context) ([]*model.RevenueType, error) {
	var entities []*RevenueTypeEntity
	if err := r.Read(ctx).Order("category ASC, name ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toRevenueTypeModels(entities), nil
}

func (r *RevenueRepository) Create(ctx context.Context, rev *model.Revenue) (*model.Revenue, error) {
	entity := toRevenueEntity(rev)
	entity.Stamp(ctx, true)

	if err := r.Write(ctx).Omit("Store", "Items", "Compliments").Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}
	return toRevenueModel(entity), nil
}

func (r *RevenueRepository) Update(ctx context.Context, rev *model.Revenue) error {
	entity := toRevenueEntity(rev)
	entity.Stamp(ctx, false)

	result := r.Write(ctx).Model(&RevenueEntity{}).Where("id = ?", rev.ID).Updates(map[string]any{
		"store_id":   entity.StoreID,
		"date":       entity.Date,
		"guests":     entity.Guests,
		"notes":      entity.Notes,
		"updated_by": entity.UpdatedBy,
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return ErrReferenceNotFound
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRevenueNotFound
	}
	return nil
}

func (r *RevenueRepository) Delete(ctx context.Context, id int64) error {
	result := r.Write(ctx).Where("id = ?", id).Delete(&RevenueEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRevenueNotFound
	}
	return nil
}

func (r *RevenueRepository) Get(ctx context.Context, id int64) (*model.Revenue, error) {
	var entity RevenueEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRevenueNotFound
		}
		return nil, err
	}
	return toRevenueModel(&entity), nil
}

// GetDetail loads a revenue with its store, typed items and compliments.
func (r *RevenueRepository) GetDetail(ctx context.Context, id int64) (*model.RevenueDetail, error) {
	var entity RevenueEntity
	err := r.Read(ctx).
		Preload("Store").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.RevenueType").
		Preload("Compliments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRevenueNotFound
		}
		return nil, err
	}
	return toRevenueDetail(&entity), nil
}

func (r *RevenueRepository) List(ctx context.Context, f model.RevenueFilter) ([]*model.Revenue, error) {
	q := r.filtered(ctx, f.StoreIDs, f.From, f.To)

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	var entities []*RevenueEntity
	if err := q.Order("date DESC, id DESC").Limit(limit).Find(&entities).Error; err != nil {
		return nil, err
	}
	return toRevenueModels(entities), nil
}

func (r *RevenueRepository) filtered(ctx context.Context, storeIDs []int64, from, to *time.Time) *gorm.DB {
	q := r.Read(ctx).Model(&RevenueEntity{})
	if len(storeIDs) > 0 {
		q = q.Where("store_id IN ?", storeIDs)
	}
	if from != nil {
		q = q.Where("date >= ?", truncateDay(*from))
	}
	if to != nil {
		q = q.Where("date <= ?", truncateDay(*to))
	}
	return q
}

func (r *RevenueRepository) Items(ctx context.Context, revenueID int64) ([]*model.RevenueItem, error) {
	var entities []*RevenueItemEntity
	err := r.Read(ctx).
		Preload("RevenueType").
		Where("revenue_id = ?", revenueID).
		Order("id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toRevenueItemModels(entities), nil
}

func (r *RevenueRepository) AddItem(ctx context.Context, revenueID int64, typeID int64, amount decimal.Decimal) (*model.RevenueItem, error) {
	entity := &RevenueItemEntity{RevenueID: revenueID, RevenueTypeID: typeID, Amount: amount}
	if err := r.Write(ctx).Omit("RevenueType").Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}
	if err := r.Write(ctx).Preload("RevenueType").First(entity, entity.ID).Error; err != nil {
		return nil, err
	}
	return toRevenueItemModel(entity), nil
}

func (r *RevenueRepository) DeleteItem(ctx context.Context, id int64) error {
	result := r.Write(ctx).Where("id = ?", id).Delete(&RevenueItemEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *RevenueRepository) AddCompliment(ctx context.Context, c *model.RevenueCompliment) (*model.RevenueCompliment, error) {
	entity := &RevenueComplimentEntity{RevenueID: c.RevenueID, Description: c.Description, Beneficiary: c.For}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}
	return toRevenueComplimentModel(entity), nil
}

func (r *RevenueRepository) DeleteCompliment(ctx context.Context, id int64) error {
	result := r.Write(ctx).Where("id = ?", id).Delete(&RevenueComplimentEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrComplimentNotFound
	}
	return nil
}

// Nets computes the net of every revenue in [from, to] for the given stores.
// An empty store set selects every store.
func (r *RevenueRepository) Nets(ctx context.Context, storeIDs []int64, from, to time.Time) ([]*model.RevenueNet, error) {
	var revenues []*RevenueEntity
	err := r.filtered(ctx, storeIDs, &from, &to).
		Preload("Items.RevenueType").
		Order("date ASC, id ASC").
		Find(&revenues).
		Error
	if err != nil {
		return nil, err
	}

	nets := make([]*model.RevenueNet, len(revenues))
	for i, e := range revenues {
		nets[i] = &model.RevenueNet{
			RevenueID: e.ID,
			StoreID:   e.StoreID,
			Date:      e.Date,
			Net:       model.SumItems(toRevenueItemModels(e.Items)).Net,
		}
	}
	return nets, nil
}

func (r *RevenueRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.Read(ctx).Model(&RevenueEntity{}).Count(&count).Error
	return count, err
}

func (r *RevenueRepository) Recent(ctx context.Context, limit int) ([]*model.Revenue, error) {
	var entities []*RevenueEntity
	if err := r.Read(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&entities).Error; err != nil {
		return nil, err
	}
	return toRevenueModels(entities), nil
}
