package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	*pg.DB
}

func NewSettingRepository(db *pg.DB) *SettingRepository {
	return &SettingRepository{
		db,
	}
}

// Upsert writes value under key, replacing any previous value.
func (r *SettingRepository) Upsert(ctx context.Context, key, value string) error {
	entity := &SettingEntity{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
		}).
		Create(entity).
		Error
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	var entity SettingEntity
	if err := r.Read(ctx).Where("setting_key = ?", key).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}
	return toSettingModel(&entity), nil
}

func (r *SettingRepository) All(ctx context.Context) ([]*model.Setting, error) {
	var entities []*SettingEntity
	if err := r.Read(ctx).Order("setting_key ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	settings := make([]*model.Setting, len(entities))
	for i, e := range entities {
		settings[i] = toSettingModel(e)
	}
	return settings, nil
}
