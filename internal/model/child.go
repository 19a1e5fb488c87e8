package model

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Child is a parent-registered child. Enrollment applications reference a
// child; BirthCertificateKey and ImageKey point at object-storage paths.
type Child struct {
	BaseEntity
	FullName            string    `gorm:"size:100" json:"full_name"`
	Birthdate           time.Time `json:"birthdate"`
	Gender              Gender    `gorm:"size:10" json:"gender"`
	Address             string    `gorm:"size:500" json:"address"`
	ImageKey            *string   `gorm:"size:512" json:"image_key,omitempty"`
	BirthCertificateKey *string   `gorm:"size:512" json:"birth_certificate_key,omitempty"`

	ParentID uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Parent   *User     `gorm:"foreignKey:ParentID" json:"-"`
}

func (Child) TableName() string { return "children" }
