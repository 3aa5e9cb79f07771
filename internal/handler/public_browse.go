package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/repository"
	"github.com/avezov/cafe-booking/internal/service"
)

// PublicHandler serves the unauthenticated browsing endpoints: cafe
// listings, cafe details and table availability.  These routes sit
// behind the response cache.
type PublicHandler struct {
	Cafes  *repository.CafeRepo
	Tables *repository.TableRepo
	Slots  *repository.SlotRepo
	Dishes *repository.DishRepo
	Avail  *service.AvailabilityService
}

func NewPublicHandler(cafes *repository.CafeRepo, tables *repository.TableRepo, slots *repository.SlotRepo, dishes *repository.DishRepo, avail *service.AvailabilityService) *PublicHandler {
	if cafes == nil || tables == nil || slots == nil || dishes == nil || avail == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Cafes: cafes, Tables: tables, Slots: slots, Dishes: dishes, Avail: avail}
}

// cafeDetail is a cafe with its bookable inventory and menu.
type cafeDetail struct {
	model.Cafe
	Tables []model.Table `json:"tables"`
	Slots  []model.Slot  `json:"slots"`
	Dishes []model.Dish  `json:"dishes"`
}

// ListCafes returns all active cafes.
func (h *PublicHandler) ListCafes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cafes, err := h.Cafes.List(ctx, true)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, cafes)
}

// GetCafe returns one cafe with its active tables, slots and menu.
func (h *PublicHandler) GetCafe(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cafe, err := h.Cafes.GetByID(ctx, cafeID)
	if err != nil {
		return respondErr(c, err)
	}
	if !cafe.IsActive {
		return respondErr(c, repository.ErrCafeNotFound)
	}
	out := cafeDetail{Cafe: *cafe}
	if out.Tables, err = h.Tables.ListByCafe(ctx, cafeID, true); err != nil {
		return respondErr(c, err)
	}
	if out.Slots, err = h.Slots.ListByCafe(ctx, cafeID, true); err != nil {
		return respondErr(c, err)
	}
	if out.Dishes, err = h.Dishes.ListByCafe(ctx, cafeID, true); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Availability lists the cafe's tables still free for a slot and
// date, given as slot_id and date query parameters.
func (h *PublicHandler) Availability(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}
	slotIDs, err := parseIDs("slot_id", []string{c.QueryParam("slot_id")})
	if err != nil {
		return respondErr(c, err)
	}
	date, err := parseDate("date", c.QueryParam("date"))
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	free, err := h.Avail.FreeTables(ctx, cafeID, slotIDs[0], date)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"cafe_id":     cafeID,
		"slot_id":     slotIDs[0],
		"date":        date.Format("2006-01-02"),
		"free_tables": free,
		"total_seats": model.TotalSeats(free),
	})
}
