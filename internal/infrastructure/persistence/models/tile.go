package models

import (
	"github.com/shopspring/decimal"
	"github.com/tileshop/backend/internal/domain/catalog"
)

// TileModel is the persistence model for the Tile aggregate.
type TileModel struct {
	AggregateModel
	Size       string          `gorm:"type:varchar(50);not null;index"`
	Coverage   decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	BoxPacking int             `gorm:"not null;default:0"`
	Deleted    bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (TileModel) TableName() string {
	return "tiles"
}

// ToDomain converts the persistence model to a domain Tile.
func (m *TileModel) ToDomain() *catalog.Tile {
	return &catalog.Tile{
		BaseAggregateRoot: m.root(),
		Size:              m.Size,
		Coverage:          m.Coverage,
		BoxPacking:        m.BoxPacking,
		Deleted:           m.Deleted,
	}
}

// FromDomain populates the persistence model from a domain Tile.
func (m *TileModel) FromDomain(t *catalog.Tile) {
	m.setRoot(t.BaseAggregateRoot)
	m.Size = t.Size
	m.Coverage = t.Coverage
	m.BoxPacking = t.BoxPacking
	m.Deleted = t.Deleted
}

// TileModelFromDomain creates a new persistence model from a domain Tile.
func TileModelFromDomain(t *catalog.Tile) *TileModel {
	m := &TileModel{}
	m.FromDomain(t)
	return m
}
