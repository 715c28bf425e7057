package repository

import (
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
)

type StoreEntity struct {
	ID                        int64   `db:"id"                          gorm:"primaryKey;autoIncrement;column:id"`
	Name                      string  `db:"name"                        gorm:"column:name;not null"`
	Telephone                 string  `db:"telephone"                   gorm:"column:telephone"`
	Email                     string  `db:"email"                       gorm:"column:email"`
	Address                   string  `db:"address"                     gorm:"column:address"`
	WhatsApp                  *string `db:"whatsapp"                    gorm:"column:whatsapp"`
	AcceptsPublicReservations bool    `db:"accepts_public_reservations" gorm:"column:accepts_public_reservations;not null;default:true"`
	pg.Audit                  `gorm:"embedded"`
}

func (StoreEntity) TableName() string {
	return "stores"
}

type StoreCustomerEntity struct {
	StoreID    int64           `db:"store_id"    gorm:"primaryKey;column:store_id;autoIncrement:false"`
	CustomerID int64           `db:"customer_id" gorm:"primaryKey;column:customer_id;autoIncrement:false"`
	CreatedAt  time.Time       `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
	Store      *StoreEntity    `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	Customer   *CustomerEntity `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

func (StoreCustomerEntity) TableName() string {
	return "store_customers"
}

func toStoreEntity(m *model.Store) *StoreEntity {
	if m == nil {
		return nil
	}
	return &StoreEntity{
		ID:                        m.ID,
		Name:                      m.Name,
		Telephone:                 m.Telephone,
		Email:                     m.Email,
		Address:                   m.Address,
		WhatsApp:                  m.WhatsApp,
		AcceptsPublicReservations: m.AcceptsPublicReservations,
		Audit: pg.Audit{
			CreatedBy: m.CreatedBy,
			UpdatedBy: m.UpdatedBy,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

func toStoreModel(e *StoreEntity) *model.Store {
	if e == nil {
		return nil
	}
	return &model.Store{
		ID:                        e.ID,
		Name:                      e.Name,
		Telephone:                 e.Telephone,
		Email:                     e.Email,
		Address:                   e.Address,
		WhatsApp:                  e.WhatsApp,
		AcceptsPublicReservations: e.AcceptsPublicReservations,
		CreatedBy:                 e.CreatedBy,
		UpdatedBy:                 e.UpdatedBy,
		CreatedAt:                 e.CreatedAt,
		UpdatedAt:                 e.UpdatedAt,
	}
}

func toStoreModels(entities []*StoreEntity) []*model.Store {
	models := make([]*model.Store, len(entities))
	for i, e := range entities {
		models[i] = toStoreModel(e)
	}
	return models
}
