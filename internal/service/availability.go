package service

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
)

// Availability is the checker's verdict for one resource and window.
type Availability struct {
	Available     bool    `json:"available"`
	ConflictingID *uint64 `json:"conflictingId,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

func conflictWith(id uint64) Availability {
	return Availability{Available: false, ConflictingID: &id, Reason: "overlaps an existing reservation"}
}

// Checker decides whether a table slot or a room stay is free. Only
// non-terminal reservations occupy a resource. It is advisory: the
// stores enforce the same rule atomically when a booking is written.
type Checker struct {
	tables     TableStore
	rooms      RoomStore
	restaurant RestaurantBookingStore
	hotel      HotelBookingStore
}

// NewChecker reads resources and bookings from st.
func NewChecker(st Stores) *Checker {
	return &Checker{tables: st.Tables, rooms: st.Rooms, restaurant: st.Restaurant, hotel: st.Hotel}
}

// TableAvailability checks one (table, date, slot). Slots match exactly.
// excludeID skips a booking, typically the one being updated.
func (c *Checker) TableAvailability(ctx context.Context, tableNumber string, date time.Time, slot string, excludeID uint64) (Availability, error) {
	_, a, err := c.table(ctx, tableNumber, date, slot, excludeID)
	return a, err
}

func (c *Checker) table(ctx context.Context, tableNumber string, date time.Time, slot string, excludeID uint64) (model.Table, Availability, error) {
	t, err := c.tables.GetByNumber(ctx, tableNumber)
	if err != nil {
		return model.Table{}, Availability{}, storeErr("load table", "table", err)
	}
	if !t.IsActive {
		return t, Availability{Reason: "table is not active"}, nil
	}
	active, err := c.restaurant.ActiveForSlot(ctx, date, slot)
	if err != nil {
		return t, Availability{}, apperr.Internal("scan table slot", err)
	}
	for _, b := range active {
		if b.TableNumber == t.TableNumber && b.ID != excludeID {
			return t, conflictWith(b.ID), nil
		}
	}
	return t, Availability{Available: true}, nil
}

// RoomAvailability checks the half-open stay [in, out) on one room.
func (c *Checker) RoomAvailability(ctx context.Context, roomID uint64, in, out time.Time, excludeID uint64) (Availability, error) {
	_, a, err := c.room(ctx, roomID, in, out, excludeID)
	return a, err
}

func (c *Checker) room(ctx context.Context, roomID uint64, in, out time.Time, excludeID uint64) (model.Room, Availability, error) {
	r, err := c.rooms.GetByID(ctx, roomID)
	if err != nil {
		return model.Room{}, Availability{}, storeErr("load room", "room", err)
	}
	switch {
	case !r.IsActive:
		return r, Availability{Reason: "room is not active"}, nil
	case !r.IsAvailable:
		return r, Availability{Reason: "room is not available"}, nil
	}
	overlapping, err := c.hotel.ActiveOverlapping(ctx, roomID, in, out)
	if err != nil {
		return r, Availability{}, apperr.Internal("scan room stays", err)
	}
	for _, b := range overlapping {
		if b.ID != excludeID {
			return r, conflictWith(b.ID), nil
		}
	}
	return r, Availability{Available: true}, nil
}

const dateLayout = "2006-01-02"

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and keeps the
// calendar date only.
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperr.Validation("%s is required", field)
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return model.DateOf(t), nil
	}
	return time.Time{}, apperr.Validation("%s must be a date in YYYY-MM-DD format", field)
}

// parseSlot normalises an H:MM or HH:MM time slot to HH:MM.
func parseSlot(s string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return "", apperr.Validation("bookingTime must be in HH:MM format")
	}
	return t.Format("15:04"), nil
}
