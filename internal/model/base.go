package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identifier and audit fields shared by every
// persisted record. Soft deletion is a flag plus timestamp plus actor:
// rows are never removed through the normal delete path.
type BaseEntity struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedBy string     `gorm:"size:128" json:"created_by,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedBy *string    `gorm:"size:128" json:"updated_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	IsDeleted bool       `gorm:"index;default:false" json:"-"`
	DeletedAt *time.Time `json:"-"`
	DeletedBy *string    `gorm:"size:128" json:"-"`
}

// Audit exposes the embedded base so the generic repository can stamp
// identifiers and audit fields without knowing the concrete entity type.
func (b *BaseEntity) Audit() *BaseEntity { return b }
