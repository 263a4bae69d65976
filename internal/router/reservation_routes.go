package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tenant-booking/internal/handler"
	"github.com/iliyamo/tenant-booking/internal/middleware"
	"github.com/iliyamo/tenant-booking/internal/utils"
)

// RegisterReservations registers the tenant-scoped reservation API under
// /v1.  Every route requires a valid JWT carrying a tenant_id claim.  The
// extra middleware (rate limiting, response caching) runs after
// authentication so it can key on the tenant.
func RegisterReservations(e *echo.Echo, spaces *handler.SpaceReservationHandler, tables *handler.TableReservationHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mws := append([]echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret)}, extra...)
	g := e.Group("/v1", mws...)
	staff := middleware.RequireRole(utils.RoleAdmin, utils.RoleStaff)

	g.POST("/spaces/:id/reservations", spaces.Create)
	g.GET("/spaces/:id/overlap", spaces.HasOverlap)
	g.GET("/spaces/:id/conflicts", spaces.Conflicts, staff)
	g.GET("/space-reservations", spaces.List)
	g.GET("/space-reservations/:id", spaces.Get)
	g.PUT("/space-reservations/:id/schedule", spaces.Reschedule)
	g.POST("/space-reservations/:id/:action", spaces.Transition)
	g.DELETE("/space-reservations/:id", spaces.Delete, staff)

	g.POST("/tables/:id/reservations", tables.Create)
	g.GET("/tables/:id/overlap", tables.HasOverlap)
	g.GET("/tables/:id/conflicts", tables.Conflicts, staff)
	g.GET("/table-reservations", tables.List)
	g.GET("/table-reservations/:id", tables.Get)
	g.PUT("/table-reservations/:id/schedule", tables.Reschedule)
	g.POST("/table-reservations/:id/:action", tables.Transition)
	g.DELETE("/table-reservations/:id", tables.Delete, staff)
}
