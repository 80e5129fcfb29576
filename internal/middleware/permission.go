package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

// IsAdmin allows only admin access tokens.
func IsAdmin() gin.HandlerFunc {
	return requireType(models.UserTypeAdmin, "admin access required")
}

// IsStudent allows only student access tokens.
func IsStudent() gin.HandlerFunc {
	return requireType(models.UserTypeStudent, "student access required")
}

// CheckPermission passes when the caller holds at least one of the named permissions.
func CheckPermission(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireAccess(c)
		if !ok {
			return
		}
		held := permissionSet(claims.Permissions)
		for _, name := range names {
			if _, ok := held[name]; ok {
				c.Next()
				return
			}
		}
		response.Abort(c, forbidden("required permissions: %s", strings.Join(names, " or ")))
	}
}

// CheckAllPermissions passes only when the caller holds every named permission.
func CheckAllPermissions(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireAccess(c)
		if !ok {
			return
		}
		held := permissionSet(claims.Permissions)
		missing := make([]string, 0)
		for _, name := range names {
			if _, ok := held[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			response.Abort(c, forbidden("missing permissions: %s", strings.Join(missing, ", ")))
			return
		}
		c.Next()
	}
}

// CheckRole passes when the caller's role is one of roles.
func CheckRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireAccess(c)
		if !ok {
			return
		}
		if claims.Role != nil {
			for _, role := range roles {
				if *claims.Role == role {
					c.Next()
					return
				}
			}
		}
		response.Abort(c, forbidden("required roles: %s", strings.Join(roles, " or ")))
	}
}

func requireType(userType models.UserType, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireAccess(c)
		if !ok {
			return
		}
		if claims.Type != userType {
			response.Abort(c, appErrors.Clone(appErrors.ErrForbidden, message))
			return
		}
		c.Next()
	}
}

func permissionSet(perms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

func forbidden(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrForbidden, "access denied, "+fmt.Sprintf(format, args...))
}
