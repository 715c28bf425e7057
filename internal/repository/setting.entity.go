package repository

import (
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
)

type SettingEntity struct {
	Key       string    `db:"setting_key"   gorm:"primaryKey;column:setting_key"`
	Value     string    `db:"setting_value" gorm:"column:setting_value;not null"`
	UpdatedAt time.Time `db:"updated_at"    gorm:"column:updated_at;autoUpdateTime"`
}

func (SettingEntity) TableName() string {
	return "settings"
}

func toSettingModel(e *SettingEntity) *model.Setting {
	return &model.Setting{
		Key:       e.Key,
		Value:     e.Value,
		UpdatedAt: e.UpdatedAt,
	}
}
