package notifications

import (
	"fmt"
	"strings"
)

// Role is the audience category a notification targets.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleAdmin   Role = "admin"
	RoleCompany Role = "company"
)

var allRoles = []Role{RoleStudent, RoleMentor, RoleAdmin, RoleCompany}

// Roles returns the recognised roles.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// RoleNames returns Roles as strings, for validation messages.
func RoleNames() []string {
	out := make([]string, len(allRoles))
	for i, r := range allRoles {
		out[i] = string(r)
	}
	return out
}

func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole trims and lowercases s and returns ErrUnknownRole for anything
// outside the recognised set.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// RoleRoom is the room every connection of role joins.
func RoleRoom(role Role) string {
	return string(role)
}

// RecipientRoom is the room of a single recipient within role, e.g. "student:42".
func RecipientRoom(role Role, recipientID string) string {
	return string(role) + ":" + recipientID
}
