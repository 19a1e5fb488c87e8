package model

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	AcceptTerms bool   `json:"accept_terms"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type UpdateParentProfileRequest struct {
	FirstName             *string `json:"first_name,omitempty"`
	LastName              *string `json:"last_name,omitempty"`
	PhoneNumber           *string `json:"phone_number,omitempty"`
	AddressLine1          *string `json:"address_line1,omitempty"`
	AddressLine2          *string `json:"address_line2,omitempty"`
	City                  *string `json:"city,omitempty"`
	State                 *string `json:"state,omitempty"`
	PostalCode            *string `json:"postal_code,omitempty"`
	Country               *string `json:"country,omitempty"`
	EmergencyContactName  *string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string `json:"emergency_contact_phone,omitempty"`
	RelationshipToChild   *string `json:"relationship_to_child,omitempty"`
	AcceptTerms           *bool   `json:"accept_terms,omitempty"`
}

type CreateChildRequest struct {
	FullName  string    `json:"full_name"`
	Birthdate time.Time `json:"birthdate"`
	Gender    Gender    `json:"gender"`
	Address   string    `json:"address"`
}

type UpdateChildRequest struct {
	FullName  *string    `json:"full_name,omitempty"`
	Birthdate *time.Time `json:"birthdate,omitempty"`
	Gender    *Gender    `json:"gender,omitempty"`
	Address   *string    `json:"address,omitempty"`
}

type CreateStudentRequest struct {
	FullName    string     `json:"full_name"`
	Birthdate   time.Time  `json:"birthdate"`
	Gender      Gender     `json:"gender"`
	Grade       string     `json:"grade"`
	ParentID    uuid.UUID  `json:"parent_id"`
	ChildID     *uuid.UUID `json:"child_id,omitempty"`
	ClassroomID *uuid.UUID `json:"classroom_id,omitempty"`
}

type UpdateStudentRequest struct {
	FullName    *string    `json:"full_name,omitempty"`
	Grade       *string    `json:"grade,omitempty"`
	ClassroomID *uuid.UUID `json:"classroom_id,omitempty"`
}

type CreateClassroomRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type UpdateClassroomRequest struct {
	Name     *string `json:"name,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
}

type SubmitApplicationRequest struct {
	ChildID uuid.UUID `json:"child_id"`
	Grade   string    `json:"grade"`
}

type RejectApplicationRequest struct {
	Reason string `json:"reason"`
}

type RecordPaymentRequest struct {
	Type        PaymentType `json:"type"`
	AmountCents int64       `json:"amount_cents"`
	Currency    string      `json:"currency"`
	TxnRef      *string     `json:"txn_ref,omitempty"`
	OrderInfo   *string     `json:"order_info,omitempty"`
}

type PageRequest struct {
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	OrderBy   string `json:"order_by"`
	Ascending bool   `json:"ascending"`
}
