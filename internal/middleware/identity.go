package middleware

// identity.go exposes the caller identity stored by JWTAuth.  Zero values
// mean the request was not authenticated.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// TenantID returns the authenticated tenant.
func TenantID(c echo.Context) uint64 {
	v, _ := c.Get(ctxTenantID).(uint64)
	return v
}

// UserID returns the authenticated user.
func UserID(c echo.Context) uint64 {
	v, _ := c.Get(ctxUserID).(uint64)
	return v
}

// Role returns the role claim of the caller.
func Role(c echo.Context) string {
	v, _ := c.Get(ctxRole).(string)
	return v
}

func idString(id uint64, anon string) string {
	if id == 0 {
		return anon
	}
	return strconv.FormatUint(id, 10)
}
