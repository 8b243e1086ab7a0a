package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/queue"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

func tableBooking(number, date, slot string) RestaurantBookingInput {
	return RestaurantBookingInput{
		CustomerName:  "Guest",
		CustomerEmail: "guest@example.com",
		PartySize:     2,
		BookingDate:   date,
		BookingTime:   slot,
		TableNumber:   number,
	}
}

func TestRestaurantCreateAndDoubleBooking(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.table(t, "T1", 4)

	res, err := e.restaurant.Create(ctx, nil, tableBooking("T1", "2025-03-01", "19:00"))
	require.NoError(t, err)
	b := res.Booking
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, "table", b.BookingType)
	assert.Nil(t, b.CustomerID)

	_, err = e.restaurant.Create(ctx, e.alice, tableBooking("T1", "2025-03-01", "19:00"))
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	// Other slot and other date are free.
	_, err = e.restaurant.Create(ctx, e.alice, tableBooking("T1", "2025-03-01", "20:00"))
	require.NoError(t, err)
	_, err = e.restaurant.Create(ctx, e.alice, tableBooking("T1", "2025-03-02", "19:00"))
	require.NoError(t, err)

	// Cancelling frees the slot.
	_, err = e.restaurant.Update(ctx, e.admin, b.ID, RestaurantBookingPatch{Status: ptr(model.StatusCancelled)})
	require.NoError(t, err)
	_, err = e.restaurant.Create(ctx, e.bob, tableBooking("T1", "2025-03-01", "19:00"))
	require.NoError(t, err)

	assert.Equal(t, []string{queue.BookingCreated, queue.BookingCreated, queue.BookingCreated,
		queue.BookingUpdated, queue.BookingCreated}, e.events.types())
}

func TestRestaurantConcurrentCreateSingleWinner(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.table(t, "T1", 4)

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.restaurant.Create(ctx, e.alice, tableBooking("T1", "2025-03-01", "19:00"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case apperr.Is(err, apperr.KindConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, conflicts)
}

func TestRestaurantCreateValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.table(t, "T1", 4)
	inactive := e.table(t, "T2", 4)
	inactive.IsActive = false
	require.NoError(t, e.st.Tables.Update(ctx, inactive))

	cases := map[string]struct {
		p    *Principal
		in   func(*RestaurantBookingInput)
		kind apperr.Kind
	}{
		"guest without name":    {nil, func(in *RestaurantBookingInput) { in.CustomerName = "" }, apperr.KindValidation},
		"guest without contact": {nil, func(in *RestaurantBookingInput) { in.CustomerEmail = "" }, apperr.KindValidation},
		"party too large":       {e.alice, func(in *RestaurantBookingInput) { in.PartySize = 21 }, apperr.KindValidation},
		"party over capacity":   {e.alice, func(in *RestaurantBookingInput) { in.PartySize = 6 }, apperr.KindValidation},
		"bad time":              {e.alice, func(in *RestaurantBookingInput) { in.BookingTime = "7pm" }, apperr.KindValidation},
		"bad date":              {e.alice, func(in *RestaurantBookingInput) { in.BookingDate = "03/01/2025" }, apperr.KindValidation},
		"bad booking type":      {e.alice, func(in *RestaurantBookingInput) { in.BookingType = "banquet" }, apperr.KindValidation},
		"unknown table":         {e.alice, func(in *RestaurantBookingInput) { in.TableNumber = "T9" }, apperr.KindNotFound},
		"inactive table":        {e.alice, func(in *RestaurantBookingInput) { in.TableNumber = "T2" }, apperr.KindConflict},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := tableBooking("T1", "2025-03-01", "19:00")
			tc.in(&in)
			_, err := e.restaurant.Create(ctx, tc.p, in)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err), "got %v", err)
		})
	}
}

func TestRestaurantGuestPhoneOnlyAndProfileFill(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.table(t, "T1", 4)

	in := tableBooking("T1", "2025-03-01", "19:00")
	in.CustomerEmail = ""
	in.CustomerPhone = "555-0199"
	_, err := e.restaurant.Create(ctx, nil, in)
	require.NoError(t, err)

	res, err := e.restaurant.Create(ctx, e.alice, RestaurantBookingInput{
		PartySize: 2, BookingDate: "2025-03-01", BookingTime: "9:30", TableNumber: "T1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", res.Booking.Customer.Name)
	assert.Equal(t, "alice@example.com", res.Booking.Customer.Email)
	assert.Equal(t, "09:30", res.Booking.BookingTime)
	require.NotNil(t, res.Booking.CustomerID)
	assert.Equal(t, e.alice.UserID, *res.Booking.CustomerID)
}

func TestRestaurantOrderEnrichment(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.table(t, "T1", 4)
	curry := e.dish(t, "Curry", "12.50")

	in := tableBooking("T1", "2025-03-01", "19:00")
	in.OrderDetails = []OrderItemInput{{ItemID: curry.ID, Quantity: 2}, {ItemID: 9999, Quantity: 1}}
	res, err := e.restaurant.Create(ctx, e.alice, in)
	require.NoError(t, err)
	assert.Equal(t, []uint64{9999}, res.DroppedItems)
	require.Len(t, res.Booking.OrderDetails, 1)
	line := res.Booking.OrderDetails[0]
	assert.Equal(t, "Curry", line.ItemName)
	assert.Equal(t, []string{"vegetarian"}, line.DietaryOptions)
	assert.Equal(t, "25.00", res.Booking.TotalAmount.StringFixed(2))

	// Later menu edits do not reach the snapshot.
	curry.Price = curry.Price.Add(curry.Price)
	require.NoError(t, e.st.Menu.Update(ctx, curry))
	got, err := e.restaurant.Get(ctx, e.alice, res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.50", got.OrderDetails[0].Price.StringFixed(2))

	in = tableBooking("T1", "2025-03-01", "20:00")
	in.OrderDetails = []OrderItemInput{{ItemID: curry.ID, Quantity: 0}}
	_, err = e.restaurant.Create(ctx, e.alice, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRestaurantVisibility(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.table(t, "T1", 4)
	mine, err := e.restaurant.Create(ctx, e.alice, tableBooking("T1", "2025-03-01", "19:00"))
	require.NoError(t, err)
	_, err = e.restaurant.Create(ctx, e.bob, tableBooking("T1", "2025-03-01", "20:00"))
	require.NoError(t, err)

	_, _, err = e.restaurant.List(ctx, nil, repository.BookingFilter{})
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))

	own, total, err := e.restaurant.List(ctx, e.alice, repository.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, mine.Booking.ID, own[0].ID)

	_, total, err = e.restaurant.List(ctx, e.admin, repository.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, err = e.restaurant.Get(ctx, e.bob, mine.Booking.ID)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	_, err = e.restaurant.Update(ctx, e.alice, mine.Booking.ID, RestaurantBookingPatch{Notes: ptr("x")})
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
	assert.True(t, apperr.Is(e.restaurant.Delete(ctx, e.alice, mine.Booking.ID), apperr.KindAuthorization))
}

func TestRestaurantBookingsCarryTableSummary(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	t1 := e.table(t, "T1", 4)
	e.table(t, "T2", 6)

	created, err := e.restaurant.Create(ctx, e.alice, tableBooking("T1", "2025-03-01", "19:00"))
	require.NoError(t, err)
	require.NotNil(t, created.Booking.Table)
	assert.Equal(t, t1.ID, created.Booking.Table.ID)
	assert.Equal(t, 4, created.Booking.Table.Capacity)
	assert.Equal(t, "indoor", created.Booking.Table.Location)

	got, err := e.restaurant.Get(ctx, e.alice, created.Booking.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Table)
	assert.Equal(t, "T1", got.Table.TableNumber)

	list, _, err := e.restaurant.List(ctx, e.admin, repository.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Table)
	assert.Equal(t, t1.ID, list[0].Table.ID)

	ranged, err := e.restaurant.ListByDateRange(ctx, e.alice, "2025-03-01", "2025-03-01")
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.NotNil(t, ranged[0].Table)

	moved, err := e.restaurant.Update(ctx, e.admin, created.Booking.ID, RestaurantBookingPatch{TableNumber: ptr("T2")})
	require.NoError(t, err)
	require.NotNil(t, moved.Table)
	assert.Equal(t, 6, moved.Table.Capacity)
}

func TestRestaurantUpdate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.table(t, "T1", 4)
	e.table(t, "T2", 2)
	a, err := e.restaurant.Create(ctx, e.alice, tableBooking("T1", "2025-03-01", "19:00"))
	require.NoError(t, err)
	b, err := e.restaurant.Create(ctx, e.alice, tableBooking("T2", "2025-03-01", "19:00"))
	require.NoError(t, err)

	// Moving onto an occupied table conflicts and leaves the booking alone.
	_, err = e.restaurant.Update(ctx, e.admin, b.Booking.ID, RestaurantBookingPatch{TableNumber: ptr("T1")})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
	got, err := e.restaurant.Get(ctx, e.admin, b.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "T2", got.TableNumber)

	// Re-saving the same window is not a conflict with itself.
	_, err = e.restaurant.Update(ctx, e.admin, a.Booking.ID, RestaurantBookingPatch{BookingTime: ptr("19:00"), Notes: ptr("window seat")})
	require.NoError(t, err)

	_, err = e.restaurant.Update(ctx, e.admin, a.Booking.ID, RestaurantBookingPatch{Status: ptr(model.StatusCheckedIn)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = e.restaurant.Update(ctx, e.admin, a.Booking.ID, RestaurantBookingPatch{Status: ptr(model.StatusCompleted)})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "pending cannot complete")

	for _, s := range []model.BookingStatus{model.StatusConfirmed, model.StatusCompleted} {
		_, err = e.restaurant.Update(ctx, e.admin, a.Booking.ID, RestaurantBookingPatch{Status: ptr(s)})
		require.NoError(t, err)
	}
	_, err = e.restaurant.Update(ctx, e.admin, a.Booking.ID, RestaurantBookingPatch{Status: ptr(model.StatusCancelled)})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "completed is terminal")

	// The completed booking no longer holds T1.
	moved, err := e.restaurant.Update(ctx, e.admin, b.Booking.ID, RestaurantBookingPatch{TableNumber: ptr("T1")})
	require.NoError(t, err)
	assert.Equal(t, "T1", moved.TableNumber)

	require.NoError(t, e.restaurant.Delete(ctx, e.admin, b.Booking.ID))
	_, err = e.restaurant.Get(ctx, e.admin, b.Booking.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAvailableTablesAndDateRange(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.table(t, "T4", 4)
	e.table(t, "T2", 2)
	e.table(t, "T6", 6)
	_, err := e.restaurant.Create(ctx, e.alice, tableBooking("T4", "2025-03-01", "19:00"))
	require.NoError(t, err)
	_, err = e.restaurant.Create(ctx, e.alice, tableBooking("T2", "2025-03-03", "12:00"))
	require.NoError(t, err)

	res, err := e.restaurant.AvailableTables(ctx, "2025-03-01", "19:00", 2, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"T4"}, res.BookedTables)
	require.Equal(t, 2, res.TotalAvailable)
	assert.Equal(t, "T2", res.Available[0].TableNumber)
	assert.Equal(t, "T6", res.Available[1].TableNumber)

	res, err = e.restaurant.AvailableTables(ctx, "2025-03-01", "19:00", 5, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalAvailable)

	list, err := e.restaurant.ListByDateRange(ctx, e.alice, "2025-03-01", "2025-03-03")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "T4", list[0].TableNumber)

	_, err = e.restaurant.ListByDateRange(ctx, e.alice, "2025-03-03", "2025-03-01")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
