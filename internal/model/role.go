package model

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleParent Role = "Parent"
	RoleStaff  Role = "Staff"
	RoleAdmin  Role = "Admin"
)

// ParseRole maps a role claim string onto the enum. Unknown values are an
// error; a token with a missing or unrecognized role claim must never be
// silently treated as a Parent.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "parent":
		return RoleParent, nil
	case "staff", "teacher":
		return RoleStaff, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("invalid role: %q", raw)
	}
}

func (r Role) String() string { return string(r) }

func (r Role) IsAdmin() bool { return r == RoleAdmin }

func (r Role) IsStaffOrAdmin() bool { return r == RoleStaff || r == RoleAdmin }
