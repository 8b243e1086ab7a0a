package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hospitality-reservation/internal/middleware"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

type RestaurantHandler struct {
	svc *service.RestaurantService
}

// NewRestaurantHandler constructs a RestaurantHandler over svc.
func NewRestaurantHandler(svc *service.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{svc: svc}
}

// Create accepts guest bookings; a bearer token, when present, links the
// booking to the caller.
func (h *RestaurantHandler) Create(c echo.Context) error {
	var req service.RestaurantBookingInput
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.svc.Create(c.Request().Context(), middleware.Principal(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "restaurant booking created successfully", res)
}

// List handles GET /api/restaurant. Customers see their own bookings,
// staff see all of them, one page at a time.
func (h *RestaurantHandler) List(c echo.Context) error {
	f, err := bookingFilter(c)
	if err != nil {
		return err
	}
	out, total, err := h.svc.List(c.Request().Context(), middleware.Principal(c), f)
	if err != nil {
		return err
	}
	return respondPage(c, "restaurant bookings retrieved", out, f.Page, total)
}

// Get handles GET /api/restaurant/:id. It answers 403 when the booking
// belongs to someone else.
func (h *RestaurantHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	b, err := h.svc.Get(c.Request().Context(), middleware.Principal(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "restaurant booking retrieved", b)
}

// Update handles PUT /api/restaurant/:id for staff. Moving the booking
// to another table or slot re-checks availability.
func (h *RestaurantHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var patch service.RestaurantBookingPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	b, err := h.svc.Update(c.Request().Context(), middleware.Principal(c), id, patch)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "restaurant booking updated", b)
}

// Delete handles DELETE /api/restaurant/:id for staff.
func (h *RestaurantHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.Principal(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "restaurant booking deleted", nil)
}

// DateRange handles GET /api/restaurant/date-range, earliest booking
// first.
func (h *RestaurantHandler) DateRange(c echo.Context) error {
	out, err := h.svc.ListByDateRange(c.Request().Context(), middleware.Principal(c),
		c.QueryParam("startDate"), c.QueryParam("endDate"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "restaurant bookings retrieved", out)
}

// AvailableTables handles GET /api/restaurant/available-tables for a
// date, time and party size.
func (h *RestaurantHandler) AvailableTables(c echo.Context) error {
	party, err := intQuery(c, "partySize", 0)
	if err != nil {
		return err
	}
	res, err := h.svc.AvailableTables(c.Request().Context(), c.QueryParam("date"), c.QueryParam("time"),
		party, c.QueryParam("location"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "available tables retrieved", res)
}
