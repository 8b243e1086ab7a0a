package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

func stayInput(roomID uint64, in, out string) HotelBookingInput {
	return HotelBookingInput{RoomID: roomID, CheckInDate: in, CheckOutDate: out, NumberOfGuests: 2}
}

func TestHotelCreatePricesAndBlocksOverlap(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	room := e.room(t, "101", 2, 100)

	b, err := e.hotel.Create(ctx, e.alice, stayInput(room.ID, "2025-03-01", "2025-03-04"))
	require.NoError(t, err)
	assert.Equal(t, "300.00", b.TotalPrice.StringFixed(2))
	assert.Equal(t, model.PaymentPending, b.PaymentStatus)
	assert.Equal(t, "website", b.BookingSource)
	assert.Equal(t, "Alice", b.Guest.Name)

	_, err = e.hotel.Create(ctx, e.bob, stayInput(room.ID, "2025-03-03", "2025-03-05"))
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	// Back-to-back stays share only the boundary date.
	_, err = e.hotel.Create(ctx, e.bob, stayInput(room.ID, "2025-03-04", "2025-03-06"))
	require.NoError(t, err)
	_, err = e.hotel.Create(ctx, e.bob, stayInput(room.ID, "2025-02-27", "2025-03-01"))
	require.NoError(t, err)

	explicit := stayInput(room.ID, "2025-04-01", "2025-04-03")
	explicit.TotalPrice = dec("150")
	b, err = e.hotel.Create(ctx, e.bob, explicit)
	require.NoError(t, err)
	assert.Equal(t, "150.00", b.TotalPrice.StringFixed(2))
}

func TestHotelCreateValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	room := e.room(t, "101", 2, 100)
	closed := e.room(t, "102", 2, 100)
	closed.IsAvailable = false
	require.NoError(t, e.st.Rooms.Update(ctx, closed))

	cases := map[string]struct {
		p    *Principal
		in   HotelBookingInput
		kind apperr.Kind
	}{
		"checkout before checkin": {e.alice, stayInput(room.ID, "2025-03-04", "2025-03-01"), apperr.KindValidation},
		"zero nights":             {e.alice, stayInput(room.ID, "2025-03-04", "2025-03-04"), apperr.KindValidation},
		"stay too long":           {e.alice, stayInput(room.ID, "2025-01-01", "2026-06-01"), apperr.KindValidation},
		"too many guests":         {e.alice, HotelBookingInput{RoomID: room.ID, CheckInDate: "2025-03-01", CheckOutDate: "2025-03-02", NumberOfGuests: 3}, apperr.KindValidation},
		"no guests":               {e.alice, HotelBookingInput{RoomID: room.ID, CheckInDate: "2025-03-01", CheckOutDate: "2025-03-02"}, apperr.KindValidation},
		"anonymous without name":  {nil, stayInput(room.ID, "2025-03-01", "2025-03-02"), apperr.KindValidation},
		"unknown room":            {e.alice, stayInput(999, "2025-03-01", "2025-03-02"), apperr.KindNotFound},
		"room switched off":       {e.alice, stayInput(closed.ID, "2025-03-01", "2025-03-02"), apperr.KindConflict},
		"bad source": {e.alice, HotelBookingInput{RoomID: room.ID, CheckInDate: "2025-03-01", CheckOutDate: "2025-03-02",
			NumberOfGuests: 1, BookingSource: "fax"}, apperr.KindValidation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.hotel.Create(ctx, tc.p, tc.in)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err), "got %v", err)
		})
	}
}

func TestHotelGuestBooking(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	room := e.room(t, "101", 2, 80)
	in := stayInput(room.ID, "2025-03-01", "2025-03-02")
	in.GuestName = "Walk In"
	in.GuestPhone = "555-0111"
	b, err := e.hotel.Create(ctx, nil, in)
	require.NoError(t, err)
	assert.Nil(t, b.CustomerID)
	assert.Equal(t, "80.00", b.TotalPrice.StringFixed(2))
}

func TestHotelVisibility(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	room := e.room(t, "101", 2, 100)
	mine, err := e.hotel.Create(ctx, e.alice, stayInput(room.ID, "2025-03-01", "2025-03-03"))
	require.NoError(t, err)
	theirs, err := e.hotel.Create(ctx, e.bob, stayInput(room.ID, "2025-03-05", "2025-03-06"))
	require.NoError(t, err)

	_, _, err = e.hotel.List(ctx, nil, repository.BookingFilter{})
	assert.True(t, apperr.Is(err, apperr.KindAuthentication), "got %v", err)
	_, err = e.hotel.Get(ctx, nil, mine.ID)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication), "got %v", err)
	_, err = e.hotel.ListByDateRange(ctx, nil, "2025-03-01", "2025-03-31")
	assert.True(t, apperr.Is(err, apperr.KindAuthentication), "got %v", err)

	own, total, err := e.hotel.List(ctx, e.alice, repository.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	ranged, err := e.hotel.ListByDateRange(ctx, e.bob, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, theirs.ID, ranged[0].ID)

	ranged, err = e.hotel.ListByDateRange(ctx, e.admin, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, mine.ID, ranged[0].ID)

	_, err = e.hotel.Get(ctx, e.bob, mine.ID)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization), "got %v", err)
	got, err := e.hotel.Get(ctx, e.alice, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)
	_, err = e.hotel.Get(ctx, e.admin, theirs.ID)
	require.NoError(t, err)

	assert.True(t, apperr.Is(e.hotel.Delete(ctx, e.alice, mine.ID), apperr.KindAuthorization))
}

func TestHotelBookingsCarryRoomSummary(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	room := e.room(t, "101", 2, 100)
	other := e.room(t, "202", 3, 180)

	b, err := e.hotel.Create(ctx, e.alice, stayInput(room.ID, "2025-03-01", "2025-03-03"))
	require.NoError(t, err)
	require.NotNil(t, b.Room)
	assert.Equal(t, "101", b.Room.RoomNumber)
	assert.Equal(t, "double", b.Room.RoomType)
	assert.Equal(t, "100.00", b.Room.PricePerNight.StringFixed(2))

	got, err := e.hotel.Get(ctx, e.alice, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Room)
	assert.Equal(t, room.ID, got.Room.ID)

	list, _, err := e.hotel.List(ctx, e.admin, repository.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Room)
	assert.Equal(t, "101", list[0].Room.RoomNumber)

	ranged, err := e.hotel.ListByDateRange(ctx, e.alice, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.NotNil(t, ranged[0].Room)

	moved, err := e.hotel.Update(ctx, e.admin, b.ID, HotelBookingPatch{RoomID: ptr(other.ID)})
	require.NoError(t, err)
	require.NotNil(t, moved.Room)
	assert.Equal(t, "202", moved.Room.RoomNumber)
}

func TestHotelUpdate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	room := e.room(t, "101", 2, 100)
	other := e.room(t, "102", 4, 200)
	a, err := e.hotel.Create(ctx, e.alice, stayInput(room.ID, "2025-03-01", "2025-03-04"))
	require.NoError(t, err)
	b, err := e.hotel.Create(ctx, e.alice, stayInput(room.ID, "2025-03-10", "2025-03-12"))
	require.NoError(t, err)

	_, err = e.hotel.Update(ctx, e.admin, b.ID, HotelBookingPatch{CheckInDate: ptr("2025-03-03")})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	// Extending a stay over its own nights is fine and reprices it.
	got, err := e.hotel.Update(ctx, e.admin, a.ID, HotelBookingPatch{CheckOutDate: ptr("2025-03-06")})
	require.NoError(t, err)
	assert.Equal(t, "500.00", got.TotalPrice.StringFixed(2))

	got, err = e.hotel.Update(ctx, e.admin, b.ID, HotelBookingPatch{RoomID: ptr(other.ID)})
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.RoomID)
	assert.Equal(t, "400.00", got.TotalPrice.StringFixed(2))

	_, err = e.hotel.Update(ctx, e.admin, a.ID, HotelBookingPatch{Status: ptr(model.StatusCheckedIn)})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "pending cannot check in")
	for _, s := range []model.BookingStatus{model.StatusConfirmed, model.StatusCheckedIn, model.StatusCheckedOut} {
		_, err = e.hotel.Update(ctx, e.admin, a.ID, HotelBookingPatch{Status: ptr(s)})
		require.NoError(t, err, s)
	}

	// Checked out releases the nights.
	_, err = e.hotel.Create(ctx, e.bob, stayInput(room.ID, "2025-03-02", "2025-03-05"))
	require.NoError(t, err)

	_, err = e.hotel.Update(ctx, e.alice, b.ID, HotelBookingPatch{Notes: ptr("late arrival")})
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
}

func TestHotelAvailability(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	cheap := e.room(t, "101", 2, 80)
	e.room(t, "201", 4, 150)
	suite := e.room(t, "301", 2, 300)
	_, err := e.hotel.Create(ctx, e.alice, stayInput(cheap.ID, "2025-03-01", "2025-03-03"))
	require.NoError(t, err)

	chk, err := e.hotel.CheckRoom(ctx, cheap.ID, "2025-03-02", "2025-03-04")
	require.NoError(t, err)
	assert.False(t, chk.IsAvailable)
	assert.NotNil(t, chk.ConflictID)

	chk, err = e.hotel.CheckRoom(ctx, cheap.ID, "2025-03-03", "2025-03-04")
	require.NoError(t, err)
	assert.True(t, chk.IsAvailable)

	res, err := e.hotel.AvailableRooms(ctx, "2025-03-02", "2025-03-04", 0, "")
	require.NoError(t, err)
	require.Equal(t, 2, res.TotalAvailable)
	assert.Equal(t, 2, res.Nights)
	assert.Equal(t, "201", res.Rooms[0].RoomNumber)
	assert.Equal(t, suite.ID, res.Rooms[1].ID)

	res, err = e.hotel.AvailableRooms(ctx, "2025-03-02", "2025-03-04", 3, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalAvailable)
}

func TestHotelStats(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	room := e.room(t, "101", 2, 100)
	a, err := e.hotel.Create(ctx, e.alice, stayInput(room.ID, "2025-03-01", "2025-03-03"))
	require.NoError(t, err)
	_, err = e.hotel.Create(ctx, e.alice, stayInput(room.ID, "2025-03-05", "2025-03-06"))
	require.NoError(t, err)
	_, err = e.hotel.Update(ctx, e.admin, a.ID, HotelBookingPatch{Status: ptr(model.StatusCancelled)})
	require.NoError(t, err)

	_, err = e.hotel.Stats(ctx, e.alice)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	st, err := e.hotel.Stats(ctx, e.admin)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalBookings)
	assert.Equal(t, 1, st.PendingBookings)
	assert.Equal(t, 1, st.CancelledBookings)
	assert.Equal(t, 2, st.RecentBookings)
	require.Len(t, st.StatusStats, 2)
	assert.Equal(t, model.StatusCancelled, st.StatusStats[0].Status)
	assert.Equal(t, "200.00", st.StatusStats[0].TotalRevenue.StringFixed(2))
}
