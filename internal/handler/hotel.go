package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/middleware"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

type HotelHandler struct {
	svc *service.HotelService
}

// NewHotelHandler constructs a HotelHandler over svc.
func NewHotelHandler(svc *service.HotelService) *HotelHandler {
	return &HotelHandler{svc: svc}
}

// Create handles POST /api/hotel/bookings. Guests may book without a
// token; the stay is priced from the room unless totalPrice is sent.
func (h *HotelHandler) Create(c echo.Context) error {
	var req service.HotelBookingInput
	if err := bind(c, &req); err != nil {
		return err
	}
	b, err := h.svc.Create(c.Request().Context(), middleware.Principal(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "hotel booking created successfully", b)
}

// List handles GET /api/hotel/bookings. Customers see their own stays,
// staff see all of them.
func (h *HotelHandler) List(c echo.Context) error {
	f, err := bookingFilter(c)
	if err != nil {
		return err
	}
	out, total, err := h.svc.List(c.Request().Context(), middleware.Principal(c), f)
	if err != nil {
		return err
	}
	return respondPage(c, "hotel bookings retrieved", out, f.Page, total)
}

// Get handles GET /api/hotel/bookings/:id. It answers 403 when the
// booking belongs to someone else.
func (h *HotelHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	b, err := h.svc.Get(c.Request().Context(), middleware.Principal(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "hotel booking retrieved", b)
}

// Update handles PUT /api/hotel/bookings/:id for staff.
func (h *HotelHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var patch service.HotelBookingPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	b, err := h.svc.Update(c.Request().Context(), middleware.Principal(c), id, patch)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "hotel booking updated", b)
}

// Delete handles DELETE /api/hotel/bookings/:id for staff.
func (h *HotelHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.Principal(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "hotel booking deleted", nil)
}

// DateRange handles GET /api/hotel/bookings/date-range, listing stays
// that check in between startDate and endDate.
func (h *HotelHandler) DateRange(c echo.Context) error {
	out, err := h.svc.ListByDateRange(c.Request().Context(), middleware.Principal(c),
		c.QueryParam("startDate"), c.QueryParam("endDate"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "hotel bookings retrieved", out)
}

// CheckAvailability handles GET /api/hotel/bookings/check-availability
// for one roomId and stay.
func (h *HotelHandler) CheckAvailability(c echo.Context) error {
	roomID, err := strconv.ParseUint(c.QueryParam("roomId"), 10, 64)
	if err != nil {
		return apperr.Validation("roomId is required")
	}
	res, err := h.svc.CheckRoom(c.Request().Context(), roomID, c.QueryParam("checkInDate"), c.QueryParam("checkOutDate"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "room availability checked", res)
}

// AvailableRooms handles GET /api/hotel/rooms/available.
func (h *HotelHandler) AvailableRooms(c echo.Context) error {
	guests, err := intQuery(c, "numberOfGuests", 0)
	if err != nil {
		return err
	}
	res, err := h.svc.AvailableRooms(c.Request().Context(), c.QueryParam("checkInDate"), c.QueryParam("checkOutDate"),
		guests, c.QueryParam("roomType"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "available rooms retrieved", res)
}

// Stats handles GET /api/hotel/bookings/stats.
func (h *HotelHandler) Stats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context(), middleware.Principal(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "booking statistics retrieved", st)
}
