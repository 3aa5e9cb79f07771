// Package handler defines the HTTP layer: request decoding, error
// mapping and response shaping over the service and repository
// layers.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/avezov/cafe-booking/internal/repository"
	"github.com/avezov/cafe-booking/internal/service"
)

// dbTimeout bounds every request-scoped database call.
const dbTimeout = 5 * time.Second

// respondErr maps domain errors onto HTTP responses.  Validation
// failures are 400, permission failures 403, missing records 404 and
// uniqueness clashes 409; anything unrecognized is logged and hidden
// behind a generic 500.
func respondErr(c echo.Context, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
	case errors.Is(err, repository.ErrSlotInterval):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrCafeNotFound),
		errors.Is(err, repository.ErrTableNotFound),
		errors.Is(err, repository.ErrSlotNotFound),
		errors.Is(err, repository.ErrDishNotFound),
		errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrUnitConflict),
		errors.Is(err, repository.ErrSlotOverlap),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// pathID parses a UUID path parameter.
func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, service.Invalid(name, "must be a valid UUID")
	}
	return id, nil
}

// parseDate parses a YYYY-MM-DD value.
func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, service.Invalid(field, "must be a date in YYYY-MM-DD form")
	}
	return t, nil
}

// parseIDs parses a slice of UUID strings.
func parseIDs(field string, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, service.Invalid(field, "%q is not a valid UUID", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
