package models

import (
	"github.com/shopspring/decimal"
	"github.com/tileshop/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer aggregate.
type CustomerModel struct {
	AggregateModel
	Name         string          `gorm:"type:varchar(200);not null;index"`
	Phone        string          `gorm:"type:varchar(50);not null;index"`
	Address      string          `gorm:"type:text;not null"`
	GSTIN        string          `gorm:"column:gstin;type:varchar(20)"`
	TotalPending decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Deleted      bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.root(),
		Name:              m.Name,
		Phone:             m.Phone,
		Address:           m.Address,
		GSTIN:             m.GSTIN,
		TotalPending:      m.TotalPending,
		Deleted:           m.Deleted,
	}
}

// FromDomain populates the persistence model from a domain Customer.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.setRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Phone = c.Phone
	m.Address = c.Address
	m.GSTIN = c.GSTIN
	m.TotalPending = c.TotalPending
	m.Deleted = c.Deleted
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
