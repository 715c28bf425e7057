package repository

import (
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
)

type ReservationEntity struct {
	ID         int64           `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	CustomerID int64           `db:"customer_id" gorm:"column:customer_id;not null"`
	StoreID    int64           `db:"store_id"    gorm:"column:store_id;not null;index:idx_reservations_store_datetime"`
	Datetime   time.Time       `db:"datetime"    gorm:"column:datetime;not null;index:idx_reservations_store_datetime"`
	Status     string          `db:"status"      gorm:"column:status;not null;default:Pending"`
	Code       string          `db:"code"        gorm:"column:code;not null;uniqueIndex"`
	Notes      *string         `db:"notes"       gorm:"column:notes"`
	Event      *string         `db:"event"       gorm:"column:event"`
	Room       *string         `db:"room"        gorm:"column:room"`
	Guests     *int            `db:"guests"      gorm:"column:guests"`
	Customer   *CustomerEntity `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	Store      *StoreEntity    `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	pg.Audit   `gorm:"embedded"`
}

func (ReservationEntity) TableName() string {
	return "reservations"
}

func toReservationEntity(m *model.Reservation) *ReservationEntity {
	if m == nil {
		return nil
	}
	return &ReservationEntity{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		StoreID:    m.StoreID,
		Datetime:   m.Datetime.UTC(),
		Status:     string(m.Status),
		Code:       m.Code,
		Notes:      m.Notes,
		Event:      m.Event,
		Room:       m.Room,
		Guests:     m.Guests,
		Audit: pg.Audit{
			CreatedBy: m.CreatedBy,
			UpdatedBy: m.UpdatedBy,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

func toReservationModel(e *ReservationEntity) *model.Reservation {
	if e == nil {
		return nil
	}
	return &model.Reservation{
		ID:         e.ID,
		CustomerID: e.CustomerID,
		StoreID:    e.StoreID,
		Datetime:   e.Datetime,
		Status:     model.ReservationStatus(e.Status),
		Code:       e.Code,
		Notes:      e.Notes,
		Event:      e.Event,
		Room:       e.Room,
		Guests:     e.Guests,
		CreatedBy:  e.CreatedBy,
		UpdatedBy:  e.UpdatedBy,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func toReservationDetail(e *ReservationEntity) *model.ReservationDetail {
	if e == nil {
		return nil
	}
	d := &model.ReservationDetail{Reservation: *toReservationModel(e)}
	if e.Customer != nil {
		d.CustomerName = e.Customer.Name
		d.CustomerTelephone = e.Customer.Telephone
	}
	if e.Store != nil {
		d.StoreName = e.Store.Name
	}
	return d
}

func toReservationDetails(entities []*ReservationEntity) []*model.ReservationDetail {
	details := make([]*model.ReservationDetail, len(entities))
	for i, e := range entities {
		details[i] = toReservationDetail(e)
	}
	return details
}
