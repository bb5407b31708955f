package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tileshop/backend/internal/domain/shared"
)

// AggregateModel holds the identity, timestamps and optimistic lock version
// shared by every aggregate table. IDs are varchar(36) so one schema serves
// postgres, mysql and sqlite.
type AggregateModel struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
}

func (m *AggregateModel) setRoot(root shared.BaseAggregateRoot) {
	m.ID = root.ID
	m.CreatedAt = root.CreatedAt
	m.UpdatedAt = root.UpdatedAt
	m.Version = root.Version
}

// root rebuilds the aggregate header; loaded aggregates carry no pending events.
func (m *AggregateModel) root() shared.BaseAggregateRoot {
	var root shared.BaseAggregateRoot
	root.ID = m.ID
	root.CreatedAt = m.CreatedAt
	root.UpdatedAt = m.UpdatedAt
	root.Version = m.Version
	return root
}
