package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/service"
)

type createCafeReq struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	Description *string `json:"description"`
}

type updateCafeReq struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type assignManagerReq struct {
	UserID string `json:"user_id"`
}

// CreateCafe registers a new cafe.  Admin only.
func (h *ManagerHandler) CreateCafe(c echo.Context) error {
	var req createCafeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Address == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/address/phone required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cafe := &model.Cafe{Name: req.Name, Address: req.Address, Phone: req.Phone, Description: req.Description}
	if err := h.Cafes.Create(ctx, cafe); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, cafe)
}

// UpdateCafe applies a partial update to a cafe the caller manages.
func (h *ManagerHandler) UpdateCafe(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}
	var req updateCafeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireCafeAccess(ctx, c, cafeID); err != nil {
		return respondErr(c, err)
	}
	cafe, err := h.Cafes.Update(ctx, cafeID, req.Name, req.Address, req.Phone, req.Description, req.IsActive)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, cafe)
}

// AssignManager promotes a user to MANAGER and assigns them to the
// cafe.  Admin only.
func (h *ManagerHandler) AssignManager(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}
	var req assignManagerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ids, err := parseIDs("user_id", []string{req.UserID})
	if err != nil {
		return respondErr(c, err)
	}
	userID := ids[0]

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Cafes.GetByID(ctx, cafeID); err != nil {
		return respondErr(c, err)
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return respondErr(c, service.Invalid("user_id", "user not found"))
	}
	if u.Role == model.RoleUser {
		if err := h.Users.SetRole(ctx, userID, model.RoleManager); err != nil {
			return respondErr(c, err)
		}
	}
	if err := h.Cafes.AddManager(ctx, cafeID, userID); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
