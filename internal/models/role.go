package models

import "strings"

// Role is the closed set of account roles recognised by the API.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTeacher    Role = "teacher"
	RoleAccountant Role = "accountant"
	RoleStudent    Role = "student"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleAccountant, RoleStudent:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole normalises raw input into a Role. Unknown values yield an empty role.
func ParseRole(raw string) Role {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return ""
	}
	return role
}

// IsFinanceStaff reports whether the role may manage fees.
func (r Role) IsFinanceStaff() bool {
	return r == RoleAdmin || r == RoleAccountant
}
