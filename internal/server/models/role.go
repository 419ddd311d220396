package models

import "fmt"

// Role is a principal's authorization level.
type Role string

const (
	RoleUser          Role = "User"
	RoleModerator     Role = "Moderator"
	RoleAdministrator Role = "Administrator"
)

// ParseRole accepts exactly one of the three role names.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleModerator, RoleAdministrator:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether r is one of the three roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
