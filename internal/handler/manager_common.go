package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avezov/cafe-booking/internal/middleware"
	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/repository"
)

// ManagerHandler bundles the repositories managers and admins use to
// run their cafes: the cafe itself, its tables, slots and menu.
type ManagerHandler struct {
	Cafes  *repository.CafeRepo
	Tables *repository.TableRepo
	Slots  *repository.SlotRepo
	Dishes *repository.DishRepo
	Users  *repository.UserRepo
}

func NewManagerHandler(cafes *repository.CafeRepo, tables *repository.TableRepo, slots *repository.SlotRepo, dishes *repository.DishRepo, users *repository.UserRepo) *ManagerHandler {
	if cafes == nil || tables == nil || slots == nil || dishes == nil || users == nil {
		panic("nil repository passed to NewManagerHandler")
	}
	return &ManagerHandler{Cafes: cafes, Tables: tables, Slots: slots, Dishes: dishes, Users: users}
}

// requireCafeAccess verifies the caller may manage the cafe: admins
// always, managers only when assigned to it.
func (h *ManagerHandler) requireCafeAccess(ctx context.Context, c echo.Context, cafeID uuid.UUID) error {
	uid, role := middleware.Identity(c)
	if role == model.RoleAdmin {
		return nil
	}
	ok, err := h.Cafes.IsManager(ctx, cafeID, uid)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrForbidden
	}
	return nil
}
