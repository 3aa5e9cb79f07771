package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/repository"
)

type createTableReq struct {
	SeatNumber  int     `json:"seat_number"`
	Description *string `json:"description"`
}

type updateTableReq struct {
	SeatNumber  *int    `json:"seat_number"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// CreateTable adds a table to a cafe the caller manages.
func (h *ManagerHandler) CreateTable(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}
	var req createTableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SeatNumber < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number must be at least 1"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireCafeAccess(ctx, c, cafeID); err != nil {
		return respondErr(c, err)
	}
	if _, err := h.Cafes.GetByID(ctx, cafeID); err != nil {
		return respondErr(c, err)
	}
	t := &model.Table{CafeID: cafeID, SeatNumber: req.SeatNumber, Description: req.Description}
	if err := h.Tables.Create(ctx, t); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// ListTables returns all tables of a managed cafe, inactive included.
func (h *ManagerHandler) ListTables(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireCafeAccess(ctx, c, cafeID); err != nil {
		return respondErr(c, err)
	}
	tables, err := h.Tables.ListByCafe(ctx, cafeID, false)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, tables)
}

// UpdateTable applies a partial update to a table.
func (h *ManagerHandler) UpdateTable(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}
	tableID, err := pathID(c, "table_id")
	if err != nil {
		return respondErr(c, err)
	}
	var req updateTableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SeatNumber != nil && *req.SeatNumber < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number must be at least 1"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireCafeAccess(ctx, c, cafeID); err != nil {
		return respondErr(c, err)
	}
	if err := h.requireTableInCafe(ctx, cafeID, tableID); err != nil {
		return respondErr(c, err)
	}
	t, err := h.Tables.Update(ctx, tableID, req.SeatNumber, req.Description, req.IsActive)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// DeleteTable removes a table.  The database rejects deletion while
// any booking still holds the table.
func (h *ManagerHandler) DeleteTable(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}
	tableID, err := pathID(c, "table_id")
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireCafeAccess(ctx, c, cafeID); err != nil {
		return respondErr(c, err)
	}
	if err := h.requireTableInCafe(ctx, cafeID, tableID); err != nil {
		return respondErr(c, err)
	}
	if err := h.Tables.Delete(ctx, tableID); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// requireTableInCafe rejects table IDs that resolve to another cafe.
func (h *ManagerHandler) requireTableInCafe(ctx context.Context, cafeID, tableID uuid.UUID) error {
	t, err := h.Tables.GetByID(ctx, tableID)
	if err != nil {
		return err
	}
	if t.CafeID != cafeID {
		return repository.ErrTableNotFound
	}
	return nil
}
