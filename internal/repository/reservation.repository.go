package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"gorm.io/gorm"
)

type ReservationRepository struct {
	*pg.DB
}

func NewReservationRepository(db *pg.DB) *ReservationRepository {
	return &ReservationRepository{
		db,
	}
}

// Create inserts a reservation. A taken code surfaces as ErrDuplicateCode so
// the caller can re-roll it.
func (r *ReservationRepository) Create(ctx context.Context, res *model.Reservation) (*model.Reservation, error) {
	entity := toReservationEntity(res)
	entity.Stamp(ctx, true)

	if err := r.Write(ctx).Omit("Customer", "Store").Create(entity).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrDuplicateCode
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}
	return toReservationModel(entity), nil
}

func (r *ReservationRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.Read(ctx).Model(&ReservationEntity{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *ReservationRepository) detailQuery(ctx context.Context) *gorm.DB {
	return r.Read(ctx).Preload("Customer").Preload("Store")
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*model.ReservationDetail, error) {
	var entity ReservationEntity
	if err := r.detailQuery(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return toReservationDetail(&entity), nil
}

func (r *ReservationRepository) GetByCode(ctx context.Context, code string) (*model.ReservationDetail, error) {
	var entity ReservationEntity
	if err := r.detailQuery(ctx).Where("code = ?", code).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return toReservationDetail(&entity), nil
}

// Update writes the given columns. The code column is never touched.
func (r *ReservationRepository) Update(ctx context.Context, id int64, columns map[string]any) error {
	delete(columns, "code")
	if at, ok := columns["datetime"].(time.Time); ok {
		columns["datetime"] = at.UTC()
	}
	columns["updated_by"] = pg.Actor(ctx)

	result := r.Write(ctx).Model(&ReservationEntity{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return ErrReferenceNotFound
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	result := r.Write(ctx).Where("id = ?", id).Delete(&ReservationEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) List(ctx context.Context, f model.ReservationFilter) ([]*model.ReservationDetail, error) {
	q := r.detailQuery(ctx)
	if f.StoreID != nil {
		q = q.Where("store_id = ?", *f.StoreID)
	}
	if f.From != nil {
		q = q.Where("datetime >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("datetime < ?", f.To.UTC())
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	var entities []*ReservationEntity
	if err := q.Order("datetime DESC, id DESC").Limit(limit).Find(&entities).Error; err != nil {
		return nil, err
	}
	return toReservationDetails(entities), nil
}

// Between returns the store's reservations in [from, to) by ascending
// datetime, at most limit rows. Datetimes are stored and compared in UTC.
func (r *ReservationRepository) Between(ctx context.Context, storeID int64, from, to time.Time, limit int) ([]*model.ReservationDetail, error) {
	var entities []*ReservationEntity
	err := r.detailQuery(ctx).
		Where("store_id = ? AND datetime >= ? AND datetime < ?", storeID, from.UTC(), to.UTC()).
		Order("datetime ASC, id ASC").
		Limit(limit).
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toReservationDetails(entities), nil
}

func (r *ReservationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.Read(ctx).Model(&ReservationEntity{}).Count(&count).Error
	return count, err
}

func (r *ReservationRepository) Recent(ctx context.Context, limit int) ([]*model.ReservationDetail, error) {
	var entities []*ReservationEntity
	if err := r.detailQuery(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&entities).Error; err != nil {
		return nil, err
	}
	return toReservationDetails(entities), nil
}
