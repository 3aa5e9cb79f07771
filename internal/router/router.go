// Package router maps URL paths onto handlers and applies the
// middleware each route group needs.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/avezov/cafe-booking/internal/handler"
	"github.com/avezov/cafe-booking/internal/middleware"
	"github.com/avezov/cafe-booking/internal/model"
)

// RegisterHealth registers routes that require no authentication
// beyond the health probe itself.
func RegisterHealth(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication endpoints.  Register, login,
// refresh and logout need no session; /v1/me requires a valid token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated browse endpoints.
// cacheMW is the Redis response cache; pass echo middleware that
// no-ops when caching is disabled.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cacheMW echo.MiddlewareFunc) {
	g := e.Group("/v1", cacheMW)
	g.GET("/cafes", p.ListCafes)
	g.GET("/cafes/:cafe_id", p.GetCafe)
	g.GET("/cafes/:cafe_id/availability", p.Availability)
}

// RegisterBookings registers the booking lifecycle endpoints.  Every
// authenticated role may book; per-record access is enforced in the
// service layer.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1/bookings",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleManager, model.RoleAdmin),
	)
	g.POST("", b.Create)
	g.GET("", b.List)
	g.GET("/:booking_id", b.Get)
	g.PATCH("/:booking_id", b.Update)
	g.DELETE("/:booking_id", b.Delete)
}

// RegisterManager registers cafe administration endpoints.  Creating
// cafes and assigning managers is admin-only; everything else is open
// to managers too, with per-cafe ownership enforced in the handlers.
func RegisterManager(e *echo.Echo, m *handler.ManagerHandler, x *handler.ExportHandler, jwtSecret string) {
	admin := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	admin.POST("/cafes", m.CreateCafe)
	admin.POST("/cafes/:cafe_id/managers", m.AssignManager)

	g := e.Group(
		"/v1/manage/cafes/:cafe_id",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager, model.RoleAdmin),
	)
	g.PATCH("", m.UpdateCafe)

	g.POST("/tables", m.CreateTable)
	g.GET("/tables", m.ListTables)
	g.PATCH("/tables/:table_id", m.UpdateTable)
	g.DELETE("/tables/:table_id", m.DeleteTable)

	g.POST("/slots", m.CreateSlot)
	g.GET("/slots", m.ListSlots)
	g.PATCH("/slots/:slot_id", m.UpdateSlot)
	g.DELETE("/slots/:slot_id", m.DeleteSlot)

	g.POST("/dishes", m.CreateDish)
	g.GET("/dishes", m.ListDishes)
	g.PATCH("/dishes/:dish_id", m.UpdateDish)
	g.DELETE("/dishes/:dish_id", m.DeleteDish)

	g.GET("/bookings.xlsx", x.BookingsXLSX)
}
