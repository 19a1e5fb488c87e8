package model

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationPaymentPending   ApplicationStatus = "PaymentPending"
	ApplicationPaymentCompleted ApplicationStatus = "PaymentCompleted"
	ApplicationApproved         ApplicationStatus = "Approved"
	ApplicationRejected         ApplicationStatus = "Rejected"
	ApplicationCancelled        ApplicationStatus = "Cancelled"
)

// Application is an enrollment request submitted by a parent for a child.
// The child snapshot fields are copied at submission time so the application
// stays reviewable even if the child record changes later.
type Application struct {
	BaseEntity
	ChildID *uuid.UUID `gorm:"type:uuid;index" json:"child_id,omitempty"`
	Child   *Child     `gorm:"foreignKey:ChildID" json:"-"`

	StudentName string    `gorm:"size:100" json:"student_name"`
	Birthdate   time.Time `json:"birthdate"`
	Gender      Gender    `gorm:"size:10" json:"gender"`
	Address     string    `gorm:"size:500" json:"address"`
	Grade       string    `gorm:"size:50" json:"grade"`

	// Reason holds the staff explanation when an application is rejected.
	Reason *string           `gorm:"size:1000" json:"reason,omitempty"`
	Status ApplicationStatus `gorm:"size:30;default:'PaymentPending'" json:"status"`

	SubmittedByID uuid.UUID `gorm:"type:uuid;index" json:"submitted_by_id"`
	SubmittedBy   *User     `gorm:"foreignKey:SubmittedByID" json:"-"`

	Payments []Payment `gorm:"foreignKey:ApplicationID" json:"payments,omitempty"`
}

func (Application) TableName() string { return "applications" }
