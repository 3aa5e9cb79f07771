package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/repository"
)

type createDishReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PriceCents  uint32  `json:"price_cents"`
}

type updateDishReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *uint32 `json:"price_cents"`
	IsActive    *bool   `json:"is_active"`
}

// CreateDish adds a menu item to a cafe the caller manages.
func (h *ManagerHandler) CreateDish(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}
	var req createDishReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireCafeAccess(ctx, c, cafeID); err != nil {
		return respondErr(c, err)
	}
	if _, err := h.Cafes.GetByID(ctx, cafeID); err != nil {
		return respondErr(c, err)
	}
	d := &model.Dish{CafeID: cafeID, Name: req.Name, Description: req.Description, PriceCents: req.PriceCents}
	if err := h.Dishes.Create(ctx, d); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// ListDishes returns the managed cafe's full menu, inactive included.
func (h *ManagerHandler) ListDishes(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireCafeAccess(ctx, c, cafeID); err != nil {
		return respondErr(c, err)
	}
	dishes, err := h.Dishes.ListByCafe(ctx, cafeID, false)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, dishes)
}

// UpdateDish applies a partial update to a menu item.
func (h *ManagerHandler) UpdateDish(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}
	dishID, err := pathID(c, "dish_id")
	if err != nil {
		return respondErr(c, err)
	}
	var req updateDishReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireCafeAccess(ctx, c, cafeID); err != nil {
		return respondErr(c, err)
	}
	if err := h.requireDishInCafe(ctx, cafeID, dishID); err != nil {
		return respondErr(c, err)
	}
	d, err := h.Dishes.Update(ctx, dishID, req.Name, req.Description, req.PriceCents, req.IsActive)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// DeleteDish removes a menu item.
func (h *ManagerHandler) DeleteDish(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}
	dishID, err := pathID(c, "dish_id")
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireCafeAccess(ctx, c, cafeID); err != nil {
		return respondErr(c, err)
	}
	if err := h.requireDishInCafe(ctx, cafeID, dishID); err != nil {
		return respondErr(c, err)
	}
	if err := h.Dishes.Delete(ctx, dishID); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// requireDishInCafe rejects dish IDs that resolve to another cafe.
func (h *ManagerHandler) requireDishInCafe(ctx context.Context, cafeID, dishID uuid.UUID) error {
	d, err := h.Dishes.GetByID(ctx, dishID)
	if err != nil {
		return err
	}
	if d.CafeID != cafeID {
		return repository.ErrDishNotFound
	}
	return nil
}
