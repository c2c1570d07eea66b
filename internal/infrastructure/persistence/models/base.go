package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
)

// Record holds the columns every table has.
type Record struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (r Record) Entity() shared.BaseEntity {
	return shared.BaseEntity{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func (r *Record) SetEntity(e shared.BaseEntity) {
	r.ID, r.CreatedAt, r.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

// VersionedRecord is a Record saved with optimistic locking. The repository
// updates it with WHERE version = ? and bumps the column on success.
type VersionedRecord struct {
	Record
	Version int `gorm:"not null;default:1"`
}

func (r VersionedRecord) Aggregate() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: r.Entity(), Version: r.Version}
}

func (r *VersionedRecord) SetAggregate(a shared.BaseAggregateRoot) {
	r.SetEntity(a.BaseEntity)
	r.Version = a.Version
}
