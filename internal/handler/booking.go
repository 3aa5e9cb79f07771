package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avezov/cafe-booking/internal/middleware"
	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/repository"
	"github.com/avezov/cafe-booking/internal/service"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Svc *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc}
}

type createBookingReq struct {
	CafeID      string   `json:"cafe_id"`
	BookingDate string   `json:"booking_date"` // YYYY-MM-DD
	GuestNumber int      `json:"guest_number"`
	Note        *string  `json:"note"`
	TableIDs    []string `json:"table_ids"`
	SlotIDs     []string `json:"slot_ids"`
}

type updateBookingReq struct {
	BookingDate *string  `json:"booking_date"`
	GuestNumber *int     `json:"guest_number"`
	Note        *string  `json:"note"`
	Status      *string  `json:"status"`
	TableIDs    []string `json:"table_ids"`
	SlotIDs     []string `json:"slot_ids"`
}

// Create books tables and slots for the authenticated user.  A 409
// response means one of the requested (table, slot) combinations is
// already held for the date, whether the pre-check or the database
// constraint caught it.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, _ := middleware.Identity(c)
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in, err := h.createInput(req)
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Svc.Create(ctx, uid, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// Get returns one booking; owners, their cafe's managers and admins
// may read it.
func (h *BookingHandler) Get(c echo.Context) error {
	uid, role := middleware.Identity(c)
	id, err := pathID(c, "booking_id")
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Svc.Get(ctx, uid, role, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// List returns bookings visible to the caller, optionally filtered by
// cafe_id, date and status query parameters.
func (h *BookingHandler) List(c echo.Context) error {
	uid, role := middleware.Identity(c)
	f, err := listFilterFrom(c)
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ds, err := h.Svc.List(ctx, uid, role, f)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, ds)
}

// Update applies a partial update: reschedule, change the selection,
// cancel or mark done.
func (h *BookingHandler) Update(c echo.Context) error {
	uid, role := middleware.Identity(c)
	id, err := pathID(c, "booking_id")
	if err != nil {
		return respondErr(c, err)
	}
	var req updateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in, err := h.updateInput(req)
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Svc.Update(ctx, uid, role, id, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Delete soft-deletes a booking and frees its holds.
func (h *BookingHandler) Delete(c echo.Context) error {
	uid, role := middleware.Identity(c)
	id, err := pathID(c, "booking_id")
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Svc.Delete(ctx, uid, role, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BookingHandler) createInput(req createBookingReq) (service.CreateBookingInput, error) {
	var in service.CreateBookingInput
	ids, err := parseIDs("cafe_id", []string{req.CafeID})
	if err != nil {
		return in, err
	}
	in.CafeID = ids[0]
	in.BookingDate, err = parseDate("booking_date", req.BookingDate)
	if err != nil {
		return in, err
	}
	in.TableIDs, err = parseIDs("table_ids", req.TableIDs)
	if err != nil {
		return in, err
	}
	in.SlotIDs, err = parseIDs("slot_ids", req.SlotIDs)
	if err != nil {
		return in, err
	}
	in.GuestNumber = req.GuestNumber
	in.Note = req.Note
	return in, nil
}

func (h *BookingHandler) updateInput(req updateBookingReq) (service.UpdateBookingInput, error) {
	var in service.UpdateBookingInput
	if req.BookingDate != nil {
		d, err := parseDate("booking_date", *req.BookingDate)
		if err != nil {
			return in, err
		}
		in.BookingDate = &d
	}
	if req.Status != nil {
		st := model.BookingStatus(*req.Status)
		if !st.Valid() {
			return in, service.Invalid("status", "unknown status %q", *req.Status)
		}
		in.Status = &st
	}
	if req.TableIDs != nil {
		ids, err := parseIDs("table_ids", req.TableIDs)
		if err != nil {
			return in, err
		}
		in.TableIDs = ids
	}
	if req.SlotIDs != nil {
		ids, err := parseIDs("slot_ids", req.SlotIDs)
		if err != nil {
			return in, err
		}
		in.SlotIDs = ids
	}
	in.GuestNumber = req.GuestNumber
	in.Note = req.Note
	return in, nil
}

func listFilterFrom(c echo.Context) (repository.ListFilter, error) {
	var f repository.ListFilter
	if v := c.QueryParam("cafe_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, service.Invalid("cafe_id", "must be a valid UUID")
		}
		f.CafeID = id
	}
	if v := c.QueryParam("date"); v != "" {
		d, err := parseDate("date", v)
		if err != nil {
			return f, err
		}
		f.Date = &d
	}
	if v := c.QueryParam("status"); v != "" {
		st := model.BookingStatus(v)
		if !st.Valid() {
			return f, service.Invalid("status", "unknown status %q", v)
		}
		f.Status = st
	}
	return f, nil
}
