package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	*pg.DB
}

func NewCustomerRepository(db *pg.DB) *CustomerRepository {
	return &CustomerRepository{
		db,
	}
}

func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	entity := toCustomerEntity(c)
	entity.Stamp(ctx, true)

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCustomerCodeTaken
		}
		return nil, err
	}
	return toCustomerModel(entity), nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	var entity CustomerEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return toCustomerModel(&entity), nil
}

// FindByPhone matches on the normalised telephone, oldest customer first.
func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	normalized := model.NormalizePhone(phone)
	if normalized == "" {
		return nil, ErrCustomerNotFound
	}

	var entity CustomerEntity
	err := r.Read(ctx).Where("telephone = ?", normalized).Order("id ASC").First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return toCustomerModel(&entity), nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	entity := toCustomerEntity(c)
	entity.Stamp(ctx, false)

	result := r.Write(ctx).Model(&CustomerEntity{}).Where("id = ?", c.ID).Updates(map[string]any{
		"name":         entity.Name,
		"code":         entity.Code,
		"is_member":    entity.IsMember,
		"organization": entity.Organization,
		"telephone":    entity.Telephone,
		"email":        entity.Email,
		"address":      entity.Address,
		"whatsapp":     entity.WhatsApp,
		"updated_by":   entity.UpdatedBy,
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrCustomerCodeTaken
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrCustomerNotFound
	}
	return r.GetByID(ctx, c.ID)
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	result := r.Write(ctx).Where("id = ?", id).Delete(&CustomerEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]*model.Customer, error) {
	var entities []*CustomerEntity
	if err := r.Read(ctx).Order("name ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toCustomerModels(entities), nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.Read(ctx).Model(&CustomerEntity{}).Count(&count).Error
	return count, err
}

func (r *CustomerRepository) Recent(ctx context.Context, limit int) ([]*model.Customer, error) {
	var entities []*CustomerEntity
	if err := r.Read(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&entities).Error; err != nil {
		return nil, err
	}
	return toCustomerModels(entities), nil
}
