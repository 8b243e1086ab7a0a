package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
)

func TestParseSlot(t *testing.T) {
	good := map[string]string{
		"19:00":   "19:00",
		"9:30":    "09:30",
		" 07:05 ": "07:05",
		"0:00":    "00:00",
		"23:59":   "23:59",
	}
	for in, want := range good {
		got, err := parseSlot(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "12:5x", "+1:30", "24:00", "12:60", "1230", "12:30:00", "12:3", "-1:30", "12:30pm"} {
		_, err := parseSlot(in)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "%q should be rejected", in)
	}
}

func TestCheckerTableAvailability(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.table(t, "T1", 4)
	closed := e.table(t, "T9", 4)
	closed.IsActive = false
	require.NoError(t, e.st.Tables.Update(ctx, closed))
	checker := NewChecker(e.st)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	a, err := checker.TableAvailability(ctx, "T1", day, "19:00", 0)
	require.NoError(t, err)
	assert.True(t, a.Available)

	b, err := e.restaurant.Create(ctx, e.alice, tableBooking("T1", "2025-03-01", "19:00"))
	require.NoError(t, err)

	a, err = checker.TableAvailability(ctx, "T1", day, "19:00", 0)
	require.NoError(t, err)
	assert.False(t, a.Available)
	require.NotNil(t, a.ConflictingID)
	assert.Equal(t, b.Booking.ID, *a.ConflictingID)

	a, err = checker.TableAvailability(ctx, "T1", day, "19:00", b.Booking.ID)
	require.NoError(t, err)
	assert.True(t, a.Available, "a booking does not conflict with itself")

	a, err = checker.TableAvailability(ctx, "T1", day, "19:30", 0)
	require.NoError(t, err)
	assert.True(t, a.Available, "slots match exactly")

	a, err = checker.TableAvailability(ctx, "T9", day, "19:00", 0)
	require.NoError(t, err)
	assert.False(t, a.Available)
	assert.Equal(t, "table is not active", a.Reason)

	_, err = checker.TableAvailability(ctx, "T404", day, "19:00", 0)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCheckerRoomAvailability(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	room := e.room(t, "101", 2, 100)
	checker := NewChecker(e.st)
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }

	b, err := e.hotel.Create(ctx, e.alice, stayInput(room.ID, "2025-03-02", "2025-03-05"))
	require.NoError(t, err)

	a, err := checker.RoomAvailability(ctx, room.ID, day(4), day(6), 0)
	require.NoError(t, err)
	assert.False(t, a.Available)
	require.NotNil(t, a.ConflictingID)
	assert.Equal(t, b.ID, *a.ConflictingID)

	a, err = checker.RoomAvailability(ctx, room.ID, day(5), day(7), 0)
	require.NoError(t, err)
	assert.True(t, a.Available, "check-out day is free")

	a, err = checker.RoomAvailability(ctx, room.ID, day(1), day(2), 0)
	require.NoError(t, err)
	assert.True(t, a.Available, "check-in day of the next stay is free")

	a, err = checker.RoomAvailability(ctx, room.ID, day(1), day(9), b.ID)
	require.NoError(t, err)
	assert.True(t, a.Available)

	room.IsAvailable = false
	require.NoError(t, e.st.Rooms.Update(ctx, room))
	a, err = checker.RoomAvailability(ctx, room.ID, day(10), day(11), 0)
	require.NoError(t, err)
	assert.False(t, a.Available)
	assert.Equal(t, "room is not available", a.Reason)
}
