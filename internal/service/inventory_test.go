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

func TestInventoryTables(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.inventory.CreateTable(ctx, e.alice, TableInput{TableNumber: ptr("T1"), Capacity: ptr(4)})
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	tbl, err := e.inventory.CreateTable(ctx, e.admin, TableInput{TableNumber: ptr("T1"), Capacity: ptr(4)})
	require.NoError(t, err)
	assert.Equal(t, "indoor", tbl.Location)
	assert.True(t, tbl.IsActive)

	_, err = e.inventory.CreateTable(ctx, e.admin, TableInput{TableNumber: ptr("T1"), Capacity: ptr(2)})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	_, err = e.inventory.CreateTable(ctx, e.admin, TableInput{TableNumber: ptr("T2"), Capacity: ptr(0)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = e.inventory.CreateTable(ctx, e.admin, TableInput{TableNumber: ptr("T2"), Capacity: ptr(2), Location: ptr("roof")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = e.restaurant.Create(ctx, e.alice, tableBooking("T1", "2025-03-01", "19:00"))
	require.NoError(t, err)
	err = e.inventory.DeleteTable(ctx, e.admin, tbl.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	tbl, err = e.inventory.UpdateTable(ctx, e.admin, tbl.ID, TableInput{Location: ptr("patio"), Features: ptr([]string{"window"})})
	require.NoError(t, err)
	assert.Equal(t, "patio", tbl.Location)
	assert.Equal(t, "T1", tbl.TableNumber)

	list, err := e.inventory.ListTables(ctx, repository.TableFilter{Location: "patio"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInventoryRoomsAndMenu(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	room, err := e.inventory.CreateRoom(ctx, e.admin, RoomInput{RoomNumber: ptr("101"), RoomType: ptr("suite"), Capacity: ptr(2), PricePerNight: dec("199.999")})
	require.NoError(t, err)
	assert.Equal(t, "200.00", room.PricePerNight.StringFixed(2))
	assert.True(t, room.IsAvailable)

	_, err = e.inventory.CreateRoom(ctx, e.admin, RoomInput{RoomNumber: ptr("102"), RoomType: ptr("castle"), Capacity: ptr(2)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = e.hotel.Create(ctx, e.alice, stayInput(room.ID, "2025-03-01", "2025-03-02"))
	require.NoError(t, err)
	assert.True(t, apperr.Is(e.inventory.DeleteRoom(ctx, e.admin, room.ID), apperr.KindConflict))

	room, err = e.inventory.UpdateRoom(ctx, e.admin, room.ID, RoomInput{IsAvailable: ptr(false), MaintenanceNotes: ptr("painting")})
	require.NoError(t, err)
	assert.False(t, room.IsAvailable)

	item, err := e.inventory.CreateMenuItem(ctx, e.admin, MenuItemInput{Name: ptr("Soup"), Price: dec("6.5"), Category: ptr("appetizer")})
	require.NoError(t, err)
	assert.Equal(t, []string{}, item.DietaryOptions)
	_, err = e.inventory.CreateMenuItem(ctx, e.admin, MenuItemInput{Name: ptr("Free"), Price: dec("0"), Category: ptr("appetizer")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	item, err = e.inventory.UpdateMenuItem(ctx, e.admin, item.ID, MenuItemInput{IsActive: ptr(false)})
	require.NoError(t, err)
	active, err := e.inventory.ListMenu(ctx, repository.MenuFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, e.inventory.DeleteMenuItem(ctx, e.admin, item.ID))
	_, err = e.inventory.GetMenuItem(ctx, item.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.table(t, "T1", 4)
	room := e.room(t, "101", 2, 100)
	b := bookedDinner(t, e, "T1", "19:00")
	_, err := e.hotel.Create(ctx, e.alice, stayInput(room.ID, "2025-03-01", "2025-03-02"))
	require.NoError(t, err)
	o, err := e.billing.CreateFromBooking(ctx, e.admin, CreateBillInput{BookingID: b.ID})
	require.NoError(t, err)
	_, err = e.billing.Update(ctx, e.admin, o.ID, BillPatch{PaymentStatus: ptr(model.PaymentPaid)})
	require.NoError(t, err)

	_, err = e.dashboard.Stats(ctx, e.bob)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	st, err := e.dashboard.Stats(ctx, e.admin)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Users)
	assert.Equal(t, 1, st.RestaurantBookings)
	assert.Equal(t, 1, st.HotelBookings)
	assert.Equal(t, 2, st.ActiveReservations)
	assert.Equal(t, 1, st.Orders)
	assert.Equal(t, "295.00", st.PaidRevenue.StringFixed(2))
}
