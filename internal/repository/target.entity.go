package repository

import (
	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/shopspring/decimal"
)

type StoreRevenueTargetEntity struct {
	ID       int64           `db:"id"       gorm:"primaryKey;autoIncrement;column:id"`
	StoreID  int64           `db:"store_id" gorm:"column:store_id;not null;uniqueIndex:uq_store_revenue_targets_period"`
	Month    int             `db:"month"    gorm:"column:month;not null;uniqueIndex:uq_store_revenue_targets_period"`
	Year     int             `db:"year"     gorm:"column:year;not null;uniqueIndex:uq_store_revenue_targets_period"`
	Amount   decimal.Decimal `db:"amount"   gorm:"column:amount;type:decimal(15,2);not null"`
	Store    *StoreEntity    `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	pg.Audit `gorm:"embedded"`
}

func (StoreRevenueTargetEntity) TableName() string {
	return "store_revenue_targets"
}

func toTargetModel(e *StoreRevenueTargetEntity) *model.StoreRevenueTarget {
	if e == nil {
		return nil
	}
	return &model.StoreRevenueTarget{
		ID:        e.ID,
		StoreID:   e.StoreID,
		Month:     e.Month,
		Year:      e.Year,
		Amount:    e.Amount,
		CreatedBy: e.CreatedBy,
		UpdatedBy: e.UpdatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toTargetModels(entities []*StoreRevenueTargetEntity) []*model.StoreRevenueTarget {
	models := make([]*model.StoreRevenueTarget, len(entities))
	for i, e := range entities {
		models[i] = toTargetModel(e)
	}
	return models
}
