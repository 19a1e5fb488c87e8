package model

import (
	"strings"
	"time"
)

// User is the unified local account record, paired one-to-one with an
// identity-provider account through ProviderUID. Seed users additionally
// carry a local bcrypt hash so fixture logins never touch the provider.
type User struct {
	BaseEntity
	ProviderUID   string `gorm:"size:128;uniqueIndex" json:"provider_uid"`
	Email         string `gorm:"size:255;uniqueIndex" json:"email"`
	EmailVerified bool   `gorm:"default:false" json:"email_verified"`
	FirstName     string `gorm:"size:100" json:"first_name"`
	LastName      string `gorm:"size:100" json:"last_name"`
	PhoneNumber   string `gorm:"size:20" json:"phone_number"`
	PhoneVerified bool   `gorm:"default:false" json:"phone_verified"`

	AddressLine1          *string `gorm:"size:255" json:"address_line1,omitempty"`
	AddressLine2          *string `gorm:"size:255" json:"address_line2,omitempty"`
	City                  *string `gorm:"size:100" json:"city,omitempty"`
	State                 *string `gorm:"size:100" json:"state,omitempty"`
	PostalCode            *string `gorm:"size:20" json:"postal_code,omitempty"`
	Country               string  `gorm:"size:100;default:'United States'" json:"country"`
	EmergencyContactName  *string `gorm:"size:100" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string `gorm:"size:20" json:"emergency_contact_phone,omitempty"`
	RelationshipToChild   *string `gorm:"size:50" json:"relationship_to_child,omitempty"`

	Role                        Role       `gorm:"size:20;default:'Parent'" json:"role"`
	IsActive                    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt                 *time.Time `json:"last_login_at,omitempty"`
	ProfileCompletionPercentage int        `gorm:"default:0" json:"profile_completion_percentage"`
	AcceptedTerms               bool       `gorm:"default:false" json:"accepted_terms"`
	TermsAcceptedAt             *time.Time `json:"terms_accepted_at,omitempty"`

	// Seed fixtures only. PasswordHash is a bcrypt hash checked locally
	// instead of calling the identity provider; real accounts keep nil here.
	IsSeedUser   bool    `gorm:"default:false" json:"-"`
	PasswordHash *string `gorm:"size:255" json:"-"`

	Children []Child `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

func (User) TableName() string { return "users" }

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CalculateProfileCompletion recomputes the completion percentage from the
// fields a parent must fill in before enrolling a child, and stores it on
// the record.
func (u *User) CalculateProfileCompletion() int {
	const totalFields = 15
	completed := 0

	for _, present := range []bool{
		u.Email != "",
		u.FirstName != "",
		u.LastName != "",
		u.PhoneNumber != "",
		derefSet(u.AddressLine1),
		derefSet(u.City),
		derefSet(u.State),
		derefSet(u.PostalCode),
		u.Country != "",
		derefSet(u.EmergencyContactName),
		derefSet(u.EmergencyContactPhone),
		derefSet(u.RelationshipToChild),
		u.EmailVerified,
		u.PhoneVerified,
		u.AcceptedTerms,
	} {
		if present {
			completed++
		}
	}

	u.ProfileCompletionPercentage = int(float64(completed)/float64(totalFields)*100 + 0.5)
	return u.ProfileCompletionPercentage
}

// CanEnroll reports whether the account may submit enrollment applications:
// an active parent with a verified email and a sufficiently complete profile.
func (u *User) CanEnroll() bool {
	if u.Role != RoleParent {
		return false
	}
	return u.IsActive && u.EmailVerified && u.ProfileCompletionPercentage >= 80
}

func (u *User) UpdateLastLogin() {
	now := time.Now().UTC()
	u.LastLoginAt = &now
}

func derefSet(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
