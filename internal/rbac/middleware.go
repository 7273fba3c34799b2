package rbac

import (
	"context"
	"fmt"

	"classroom-api/internal/auth"
	"classroom-api/internal/guard"

	"github.com/gin-gonic/gin"
)

var ErrForbidden = fmt.Errorf("rbac: %w", guard.ErrForbidden)

// Directory names the record set a role is read from.
type Directory string

const (
	Users    Directory = "users"
	Teachers Directory = "teachers"
)

// RoleLookup answers whether the stored record for email in dir carries role.
// A missing record is (false, nil).
type RoleLookup interface {
	HasRole(ctx context.Context, dir Directory, email string, role Role) (bool, error)
}

// RequireAdmin admits callers whose users record has role admin.
// Must run after auth.Authenticate.
func RequireAdmin(lookup RoleLookup) guard.Guard {
	return requireRole("require_admin", lookup, Users, RoleAdmin)
}

// RequireTeacher admits callers whose teachers record has role teacher.
// Must run after auth.Authenticate.
func RequireTeacher(lookup RoleLookup) guard.Guard {
	return requireRole("require_teacher", lookup, Teachers, RoleTeacher)
}

func requireRole(name string, lookup RoleLookup, dir Directory, role Role) guard.Guard {
	return guard.Guard{
		Name:     name,
		Requires: guard.Identity,
		Check: func(c *gin.Context) (context.Context, error) {
			email, err := auth.Email(c.Request.Context())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			ok, err := lookup.HasRole(c.Request.Context(), dir, email, role)
			if err != nil {
				return nil, fmt.Errorf("%s: role lookup: %w", name, err)
			}
			if !ok {
				return nil, ErrForbidden
			}
			return nil, nil
		},
	}
}

// EmailSource pulls the resource owner's email from the request.
type EmailSource func(c *gin.Context) string

func PathParam(name string) EmailSource {
	return func(c *gin.Context) string { return c.Param(name) }
}

func QueryParam(name string) EmailSource {
	return func(c *gin.Context) string { return c.Query(name) }
}

// RequireSelf admits the caller only when the authenticated email equals the
// requested email exactly. Roles play no part: an admin is refused too.
func RequireSelf(src EmailSource) guard.Guard {
	return guard.Guard{
		Name:     "require_self",
		Requires: guard.Identity,
		Check: func(c *gin.Context) (context.Context, error) {
			email, err := auth.Email(c.Request.Context())
			if err != nil {
				return nil, fmt.Errorf("require_self: %w", err)
			}
			if email != src(c) {
				return nil, ErrForbidden
			}
			return nil, nil
		},
	}
}
