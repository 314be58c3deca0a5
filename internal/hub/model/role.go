package model

import "strings"

// Role is a user role bitmap. A user may hold several roles at once.
type Role uint8

const (
	RoleNone       Role = 0
	RoleSuperUser  Role = 1
	RoleAdmin      Role = 2
	RoleResearcher Role = 4
	RoleAny        Role = 255
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "NONE"
	case RoleSuperUser:
		return "SUPERUSER"
	case RoleAdmin:
		return "ADMIN"
	case RoleResearcher:
		return "RESEARCHER"
	case RoleAny:
		return "ANY"
	default:
		return "UNKNOWN"
	}
}

// Has reports whether the bitmap contains the given role.
func (r Role) Has(role Role) bool {
	return r&role != 0
}

// ParseRole resolves a role name to its bitmap value.
func ParseRole(name string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "NONE":
		return RoleNone, true
	case "SUPERUSER":
		return RoleSuperUser, true
	case "ADMIN":
		return RoleAdmin, true
	case "RESEARCHER":
		return RoleResearcher, true
	case "ANY":
		return RoleAny, true
	}
	return RoleNone, false
}

// Matches reports whether the candidate identifies one of the roles in the
// bitmap. The candidate may be a Role, a role name, or a raw bitmap value.
func (r Role) Matches(candidate interface{}) bool {
	switch c := candidate.(type) {
	case Role:
		return r.Has(c)
	case string:
		role, ok := ParseRole(c)
		if !ok {
			return false
		}
		return r.Has(role)
	case int:
		return r&Role(c) != 0
	default:
		return false
	}
}
