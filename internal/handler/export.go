package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avezov/cafe-booking/internal/export"
	"github.com/avezov/cafe-booking/internal/middleware"
	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/repository"
	"github.com/avezov/cafe-booking/internal/service"
)

// ExportHandler streams booking reports as Excel workbooks for cafe
// managers.
type ExportHandler struct {
	Cafes    *repository.CafeRepo
	Bookings *repository.BookingRepo
}

func NewExportHandler(cafes *repository.CafeRepo, bookings *repository.BookingRepo) *ExportHandler {
	if cafes == nil || bookings == nil {
		panic("nil repository passed to NewExportHandler")
	}
	return &ExportHandler{Cafes: cafes, Bookings: bookings}
}

// BookingsXLSX exports the cafe's bookings, optionally narrowed by
// date and status query parameters, as an .xlsx attachment.
func (h *ExportHandler) BookingsXLSX(c echo.Context) error {
	cafeID, err := pathID(c, "cafe_id")
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, role := middleware.Identity(c)
	if role != model.RoleAdmin {
		ok, err := h.Cafes.IsManager(ctx, cafeID, uid)
		if err != nil {
			return respondErr(c, err)
		}
		if !ok {
			return respondErr(c, repository.ErrForbidden)
		}
	}

	cafe, err := h.Cafes.GetByID(ctx, cafeID)
	if err != nil {
		return respondErr(c, err)
	}

	f := repository.ListFilter{CafeID: cafeID}
	if v := c.QueryParam("date"); v != "" {
		d, err := parseDate("date", v)
		if err != nil {
			return respondErr(c, err)
		}
		f.Date = &d
	}
	if v := c.QueryParam("status"); v != "" {
		st := model.BookingStatus(v)
		if !st.Valid() {
			return respondErr(c, service.Invalid("status", "unknown status %q", v))
		}
		f.Status = st
	}

	bookings, err := h.Bookings.List(ctx, f)
	if err != nil {
		return respondErr(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "bookings-"+cafeID.String()+".xlsx"))
	c.Response().WriteHeader(http.StatusOK)
	return export.WriteBookingsXLSX(c.Response(), cafe.Name, bookings)
}
