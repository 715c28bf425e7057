package repository

import (
	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
)

type CustomerEntity struct {
	ID           int64  `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	Name         string `db:"name"         gorm:"column:name;not null"`
	Code         string `db:"code"         gorm:"column:code;not null;uniqueIndex"`
	IsMember     bool   `db:"is_member"    gorm:"column:is_member;not null"`
	Organization string `db:"organization" gorm:"column:organization"`
	Telephone    string `db:"telephone"    gorm:"column:telephone;index;uniqueIndex:uq_customers_web_telephone,where:code LIKE 'WEB-%'"`
	Email        string `db:"email"        gorm:"column:email"`
	Address      string `db:"address"      gorm:"column:address"`
	WhatsApp     string `db:"whatsapp"     gorm:"column:whatsapp"`
	pg.Audit     `gorm:"embedded"`
}

func (CustomerEntity) TableName() string {
	return "customers"
}

func toCustomerEntity(m *model.Customer) *CustomerEntity {
	if m == nil {
		return nil
	}
	return &CustomerEntity{
		ID:           m.ID,
		Name:         m.Name,
		Code:         m.Code,
		IsMember:     m.IsMember,
		Organization: m.Organization,
		Telephone:    model.NormalizePhone(m.Telephone),
		Email:        m.Email,
		Address:      m.Address,
		WhatsApp:     m.WhatsApp,
		Audit: pg.Audit{
			CreatedBy: m.CreatedBy,
			UpdatedBy: m.UpdatedBy,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

func toCustomerModel(e *CustomerEntity) *model.Customer {
	if e == nil {
		return nil
	}
	return &model.Customer{
		ID:           e.ID,
		Name:         e.Name,
		Code:         e.Code,
		IsMember:     e.IsMember,
		Organization: e.Organization,
		Telephone:    e.Telephone,
		Email:        e.Email,
		Address:      e.Address,
		WhatsApp:     e.WhatsApp,
		CreatedBy:    e.CreatedBy,
		UpdatedBy:    e.UpdatedBy,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toCustomerModels(entities []*CustomerEntity) []*model.Customer {
	models := make([]*model.Customer, len(entities))
	for i, e := range entities {
		models[i] = toCustomerModel(e)
	}
	return models
}
