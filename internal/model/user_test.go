package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func str(s string) *string { return &s }

func completeParent() *User {
	return &User{
		Email:                 "parent@example.com",
		EmailVerified:         true,
		FirstName:             "Dana",
		LastName:              "Reyes",
		PhoneNumber:           "+1-555-0100",
		PhoneVerified:         true,
		AddressLine1:          str("12 Oak Street"),
		City:                  str("Springfield"),
		State:                 str("IL"),
		PostalCode:            str("62704"),
		Country:               "United States",
		EmergencyContactName:  str("Sam Reyes"),
		EmergencyContactPhone: str("+1-555-0101"),
		RelationshipToChild:   str("Mother"),
		AcceptedTerms:         true,
		Role:                  RoleParent,
		IsActive:              true,
	}
}

func TestCalculateProfileCompletion(t *testing.T) {
	u := completeParent()
	assert.Equal(t, 100, u.CalculateProfileCompletion())

	u.EmergencyContactName = nil
	u.EmergencyContactPhone = nil
	u.RelationshipToChild = nil
	assert.Equal(t, 80, u.CalculateProfileCompletion())

	empty := &User{}
	assert.Equal(t, 0, empty.CalculateProfileCompletion())
}

func TestCalculateProfileCompletionIgnoresWhitespace(t *testing.T) {
	u := completeParent()
	u.AddressLine1 = str("   ")
	full := completeParent()
	full.CalculateProfileCompletion()

	assert.Less(t, u.CalculateProfileCompletion(), full.ProfileCompletionPercentage)
}

func TestCanEnroll(t *testing.T) {
	u := completeParent()
	u.CalculateProfileCompletion()
	assert.True(t, u.CanEnroll())

	inactive := completeParent()
	inactive.CalculateProfileCompletion()
	inactive.IsActive = false
	assert.False(t, inactive.CanEnroll())

	unverified := completeParent()
	unverified.EmailVerified = false
	unverified.CalculateProfileCompletion()
	assert.False(t, unverified.CanEnroll())

	staff := completeParent()
	staff.Role = RoleStaff
	staff.CalculateProfileCompletion()
	assert.False(t, staff.CanEnroll())

	sparse := completeParent()
	sparse.AddressLine1 = nil
	sparse.City = nil
	sparse.State = nil
	sparse.PostalCode = nil
	sparse.EmergencyContactName = nil
	sparse.EmergencyContactPhone = nil
	sparse.RelationshipToChild = nil
	sparse.CalculateProfileCompletion()
	assert.False(t, sparse.CanEnroll())
}

func TestFullName(t *testing.T) {
	u := &User{FirstName: "Dana", LastName: "Reyes"}
	assert.Equal(t, "Dana Reyes", u.FullName())

	only := &User{FirstName: "Dana"}
	assert.Equal(t, "Dana", only.FullName())
}
