package model

import (
	"time"

	"github.com/google/uuid"
)

// Student is an enrolled child, created by staff when an application is
// approved or entered directly.
type Student struct {
	BaseEntity
	FullName  string    `gorm:"size:100" json:"full_name"`
	Birthdate time.Time `json:"birthdate"`
	Gender    Gender    `gorm:"size:10" json:"gender"`
	Grade     string    `gorm:"size:50" json:"grade"`

	ChildID     *uuid.UUID `gorm:"type:uuid;index" json:"child_id,omitempty"`
	Child       *Child     `gorm:"foreignKey:ChildID" json:"-"`
	ParentID    uuid.UUID  `gorm:"type:uuid;index" json:"parent_id"`
	Parent      *User      `gorm:"foreignKey:ParentID" json:"-"`
	ClassroomID *uuid.UUID `gorm:"type:uuid;index" json:"classroom_id,omitempty"`
	Classroom   *Classroom `gorm:"foreignKey:ClassroomID" json:"classroom,omitempty"`
}

func (Student) TableName() string { return "students" }
