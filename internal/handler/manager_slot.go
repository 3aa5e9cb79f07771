package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/repository"
	"github.com/avezov/cafe-booking/internal/service"
)

type createSlotReq struct {
	StartTime   string `json:"start_time"` // HH:MM or HH:MM:SS
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
}

type updateSlotReq struct {
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// normalizeClock validates a wall-clock value and expands HH:MM to
// HH:MM:SS so stored values compare lexically.
func normalizeClock(field, s string) (string, error) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04:05"), nil
	}
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04:05"), nil
	}
	return "", service.Invalid(field, "must be a time in HH:MM or HH:MM:SS form")
}

// CreateSlot adds a time slot to a cafe the caller manages.  The
// window must not overlap any existing slot of the cafe.
func (h *ManagerHandler) CreateSlot(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}
	var req createSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, err := normalizeClock("start_time", req.StartTime)
	if err != nil {
		return respondErr(c, err)
	}
	end, err := normalizeClock("end_time", req.EndTime)
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireCafeAccess(ctx, c, cafeID); err != nil {
		return respondErr(c, err)
	}
	if _, err := h.Cafes.GetByID(ctx, cafeID); err != nil {
		return respondErr(c, err)
	}
	s := &model.Slot{CafeID: cafeID, StartTime: start, EndTime: end, Description: req.Description}
	if err := h.Slots.Create(ctx, s); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// ListSlots returns all slots of a managed cafe, inactive included.
func (h *ManagerHandler) ListSlots(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireCafeAccess(ctx, c, cafeID); err != nil {
		return respondErr(c, err)
	}
	slots, err := h.Slots.ListByCafe(ctx, cafeID, false)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, slots)
}

// UpdateSlot applies a partial update to a slot; window changes are
// re-validated against the cafe's other slots.
func (h *ManagerHandler) UpdateSlot(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}
	slotID, err := pathID(c, "slot_id")
	if err != nil {
		return respondErr(c, err)
	}
	var req updateSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StartTime != nil {
		s, err := normalizeClock("start_time", *req.StartTime)
		if err != nil {
			return respondErr(c, err)
		}
		req.StartTime = &s
	}
	if req.EndTime != nil {
		e, err := normalizeClock("end_time", *req.EndTime)
		if err != nil {
			return respondErr(c, err)
		}
		req.EndTime = &e
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireCafeAccess(ctx, c, cafeID); err != nil {
		return respondErr(c, err)
	}
	if err := h.requireSlotInCafe(ctx, cafeID, slotID); err != nil {
		return respondErr(c, err)
	}
	s, err := h.Slots.Update(ctx, slotID, req.StartTime, req.EndTime, req.Description, req.IsActive)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// DeleteSlot removes a slot.  The database rejects deletion while any
// booking still holds the slot.
func (h *ManagerHandler) DeleteSlot(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}
	slotID, err := pathID(c, "slot_id")
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireCafeAccess(ctx, c, cafeID); err != nil {
		return respondErr(c, err)
	}
	if err := h.requireSlotInCafe(ctx, cafeID, slotID); err != nil {
		return respondErr(c, err)
	}
	if err := h.Slots.Delete(ctx, slotID); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// requireSlotInCafe rejects slot IDs that resolve to another cafe.
func (h *ManagerHandler) requireSlotInCafe(ctx context.Context, cafeID, slotID uuid.UUID) error {
	s, err := h.Slots.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if s.CafeID != cafeID {
		return repository.ErrSlotNotFound
	}
	return nil
}
