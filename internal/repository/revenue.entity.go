package repository

import (
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/shopspring/decimal"
)

type RevenueTypeEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `db:"name"       gorm:"column:name;not null;uniqueIndex"`
	Category  string    `db:"category"   gorm:"column:category;not null"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (RevenueTypeEntity) TableName() string {
	return "revenue_types"
}

type RevenueEntity struct {
	ID          int64                      `db:"id"       gorm:"primaryKey;autoIncrement;column:id"`
	StoreID     int64                      `db:"store_id" gorm:"column:store_id;not null;index:idx_revenues_store_date"`
	Date        time.Time                  `db:"date"     gorm:"column:date;type:date;not null;index:idx_revenues_store_date"`
	Guests      *int                       `db:"guests"   gorm:"column:guests"`
	Notes       *string                    `db:"notes"    gorm:"column:notes"`
	Store       *StoreEntity               `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	Items       []*RevenueItemEntity       `gorm:"foreignKey:RevenueID;constraint:OnDelete:CASCADE"`
	Compliments []*RevenueComplimentEntity `gorm:"foreignKey:RevenueID;constraint:OnDelete:CASCADE"`
	pg.Audit    `gorm:"embedded"`
}

func (RevenueEntity) TableName() string {
	return "revenues"
}

type RevenueItemEntity struct {
	ID            int64              `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	RevenueID     int64              `db:"revenue_id"      gorm:"column:revenue_id;not null;index"`
	RevenueTypeID int64              `db:"revenue_type_id" gorm:"column:revenue_type_id;not null"`
	Amount        decimal.Decimal    `db:"amount"          gorm:"column:amount;type:decimal(15,2);not null"`
	CreatedAt     time.Time          `db:"created_at"      gorm:"column:created_at;autoCreateTime"`
	RevenueType   *RevenueTypeEntity `gorm:"foreignKey:RevenueTypeID;constraint:OnDelete:RESTRICT"`
}

func (RevenueItemEntity) TableName() string {
	return "revenue_items"
}

type RevenueComplimentEntity struct {
	ID          int64     `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	RevenueID   int64     `db:"revenue_id"  gorm:"column:revenue_id;not null"`
	Description string    `db:"description" gorm:"column:description;not null"`
	Beneficiary string    `db:"beneficiary" gorm:"column:beneficiary"`
	CreatedAt   time.Time `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (RevenueComplimentEntity) TableName() string {
	return "revenue_compliments"
}

func toRevenueTypeModel(e *RevenueTypeEntity) *model.RevenueType {
	if e == nil {
		return nil
	}
	return &model.RevenueType{
		ID:        e.ID,
		Name:      e.Name,
		Category:  model.RevenueCategory(e.Category),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toRevenueTypeModels(entities []*RevenueTypeEntity) []*model.RevenueType {
	models := make([]*model.RevenueType, len(entities))
	for i, e := range entities {
		models[i] = toRevenueTypeModel(e)
	}
	return models
}

func toRevenueEntity(m *model.Revenue) *RevenueEntity {
	if m == nil {
		return nil
	}
	return &RevenueEntity{
		ID:      m.ID,
		StoreID: m.StoreID,
		Date:    truncateDay(m.Date),
		Guests:  m.Guests,
		Notes:   m.Notes,
		Audit: pg.Audit{
			CreatedBy: m.CreatedBy,
			UpdatedBy: m.UpdatedBy,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

func toRevenueModel(e *RevenueEntity) *model.Revenue {
	if e == nil {
		return nil
	}
	return &model.Revenue{
		ID:        e.ID,
		StoreID:   e.StoreID,
		Date:      e.Date,
		Guests:    e.Guests,
		Notes:     e.Notes,
		CreatedBy: e.CreatedBy,
		UpdatedBy: e.UpdatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toRevenueModels(entities []*RevenueEntity) []*model.Revenue {
	models := make([]*model.Revenue, len(entities))
	for i, e := range entities {
		models[i] = toRevenueModel(e)
	}
	return models
}

func toRevenueDetail(e *RevenueEntity) *model.RevenueDetail {
	d := &model.RevenueDetail{
		Revenue:     *toRevenueModel(e),
		Items:       toRevenueItemModels(e.Items),
		Compliments: make([]*model.RevenueCompliment, len(e.Compliments)),
	}
	if e.Store != nil {
		d.StoreName = e.Store.Name
	}
	for i, c := range e.Compliments {
		d.Compliments[i] = toRevenueComplimentModel(c)
	}
	d.Totals = model.SumItems(d.Items)
	return d
}

func toRevenueItemModel(e *RevenueItemEntity) *model.RevenueItem {
	if e == nil {
		return nil
	}
	m := &model.RevenueItem{
		ID:            e.ID,
		RevenueID:     e.RevenueID,
		RevenueTypeID: e.RevenueTypeID,
		Amount:        e.Amount,
		CreatedAt:     e.CreatedAt,
	}
	if e.RevenueType != nil {
		m.TypeName = e.RevenueType.Name
		m.Category = model.RevenueCategory(e.RevenueType.Category)
	}
	return m
}

func toRevenueItemModels(entities []*RevenueItemEntity) []*model.RevenueItem {
	models := make([]*model.RevenueItem, len(entities))
	for i, e := range entities {
		models[i] = toRevenueItemModel(e)
	}
	return models
}

func toRevenueComplimentModel(e *RevenueComplimentEntity) *model.RevenueCompliment {
	if e == nil {
		return nil
	}
	return &model.RevenueCompliment{
		ID:          e.ID,
		RevenueID:   e.RevenueID,
		Description: e.Description,
		For:         e.Beneficiary,
		CreatedAt:   e.CreatedAt,
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
