package rbac

import "fmt"

// Role is server-owned state on a user or teacher document.
// It is never taken from a request body or a token.
type Role string

// Role names. Keep these stable; they are stored in the document store.
const (
	RoleNone    Role = ""
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleNone, RoleAdmin, RoleTeacher:
		return true
	default:
		return false
	}
}

// ParseRole reads a stored role value. Absent or null means RoleNone.
func ParseRole(v any) (Role, error) {
	switch s := v.(type) {
	case nil:
		return RoleNone, nil
	case string:
		r := Role(s)
		if !r.IsValid() {
			return RoleNone, fmt.Errorf("rbac: unknown role %q", s)
		}
		return r, nil
	default:
		return RoleNone, fmt.Errorf("rbac: role has type %T", v)
	}
}
