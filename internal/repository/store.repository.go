package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoreRepository struct {
	*pg.DB
}

func NewStoreRepository(db *pg.DB) *StoreRepository {
	return &StoreRepository{
		db,
	}
}

func (r *StoreRepository) Create(ctx context.Context, s *model.Store) (*model.Store, error) {
	entity := toStoreEntity(s)
	entity.Stamp(ctx, true)

	// gorm skips zero-valued fields that carry a default, so the flag is
	// written explicitly after insert when a store opts out.
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	if !s.AcceptsPublicReservations {
		if err := r.Write(ctx).Model(entity).Update("accepts_public_reservations", false).Error; err != nil {
			return nil, err
		}
		entity.AcceptsPublicReservations = false
	}
	return toStoreModel(entity), nil
}

func (r *StoreRepository) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	var entity StoreEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return toStoreModel(&entity), nil
}

func (r *StoreRepository) Update(ctx context.Context, s *model.Store) (*model.Store, error) {
	entity := toStoreEntity(s)
	entity.Stamp(ctx, false)

	result := r.Write(ctx).Model(&StoreEntity{}).Where("id = ?", s.ID).Updates(map[string]any{
		"name":                        entity.Name,
		"telephone":                   entity.Telephone,
		"email":                       entity.Email,
		"address":                     entity.Address,
		"whatsapp":                    entity.WhatsApp,
		"accepts_public_reservations": entity.AcceptsPublicReservations,
		"updated_by":                  entity.UpdatedBy,
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrStoreNotFound
	}
	return r.GetByID(ctx, s.ID)
}

func (r *StoreRepository) Delete(ctx context.Context, id int64) error {
	result := r.Write(ctx).Where("id = ?", id).Delete(&StoreEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStoreNotFound
	}
	return nil
}

func (r *StoreRepository) List(ctx context.Context) ([]*model.Store, error) {
	var entities []*StoreEntity
	if err := r.Read(ctx).Order("name ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toStoreModels(entities), nil
}

func (r *StoreRepository) ListByIDs(ctx context.Context, ids []int64) ([]*model.Store, error) {
	var entities []*StoreEntity
	q := r.Read(ctx).Order("id ASC")
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Find(&entities).Error; err != nil {
		return nil, err
	}
	return toStoreModels(entities), nil
}

func (r *StoreRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.Read(ctx).Model(&StoreEntity{}).Count(&count).Error
	return count, err
}

func (r *StoreRepository) Recent(ctx context.Context, limit int) ([]*model.Store, error) {
	var entities []*StoreEntity
	if err := r.Read(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&entities).Error; err != nil {
		return nil, err
	}
	return toStoreModels(entities), nil
}

// LinkCustomer associates a customer with a store. Linking an existing pair
// is a no-op.
func (r *StoreRepository) LinkCustomer(ctx context.Context, storeID, customerID int64) error {
	err := r.Write(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&StoreCustomerEntity{StoreID: storeID, CustomerID: customerID}).
		Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrReferenceNotFound
	}
	return err
}

func (r *StoreRepository) UnlinkCustomer(ctx context.Context, storeID, customerID int64) error {
	return r.Write(ctx).
		Where("store_id = ? AND customer_id = ?", storeID, customerID).
		Delete(&StoreCustomerEntity{}).
		Error
}

func (r *StoreRepository) Customers(ctx context.Context, storeID int64) ([]*model.Customer, error) {
	var entities []*CustomerEntity
	err := r.Read(ctx).
		Joins("JOIN store_customers sc ON sc.customer_id = customers.id").
		Where("sc.store_id = ?", storeID).
		Order("customers.name ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toCustomerModels(entities), nil
}
