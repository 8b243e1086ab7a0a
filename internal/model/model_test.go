package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIntervalOverlapsIsHalfOpen(t *testing.T) {
	a := Interval{Start: date("2025-03-01"), End: date("2025-03-04")}

	cases := []struct {
		name string
		b    Interval
		want bool
	}{
		{"touching at checkout", Interval{date("2025-03-04"), date("2025-03-06")}, false},
		{"touching at checkin", Interval{date("2025-02-27"), date("2025-03-01")}, false},
		{"inside", Interval{date("2025-03-02"), date("2025-03-03")}, true},
		{"straddling start", Interval{date("2025-02-28"), date("2025-03-02")}, true},
		{"covering", Interval{date("2025-02-01"), date("2025-04-01")}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(a))
		})
	}
}

func TestIntervalNightsRoundsUp(t *testing.T) {
	in := date("2025-03-01")
	assert.Equal(t, 3, Interval{in, date("2025-03-04")}.Nights())
	assert.Equal(t, 1, Interval{in, in.Add(5 * time.Hour)}.Nights())
	assert.Equal(t, 0, Interval{in, in}.Nights())

	nights := Interval{in, date("2025-03-03")}.EachNight()
	require.Len(t, nights, 2)
	assert.Equal(t, date("2025-03-02"), nights[1])
}

func TestComputeTotals(t *testing.T) {
	items := []OrderItem{
		{ItemID: 1, ItemName: "Paneer Tikka", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		{ItemID: 2, ItemName: "Lassi", Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
	}
	got := ComputeTotals(items, decimal.NewFromInt(18), decimal.NewFromInt(10))

	assert.True(t, decimal.NewFromInt(200).Equal(items[0].TotalPrice))
	assert.True(t, decimal.NewFromInt(250).Equal(got.Subtotal), got.Subtotal.String())
	assert.True(t, decimal.NewFromInt(25).Equal(got.DiscountAmount), got.DiscountAmount.String())
	assert.True(t, decimal.RequireFromString("40.5").Equal(got.GSTAmount), got.GSTAmount.String())
	assert.True(t, decimal.RequireFromString("265.5").Equal(got.TotalAmount), got.TotalAmount.String())

	again := got.Recompute(decimal.NewFromInt(5), decimal.Zero)
	assert.True(t, decimal.RequireFromString("262.5").Equal(again.TotalAmount), again.TotalAmount.String())
	assert.True(t, again.TotalAmount.Equal(again.Subtotal.Sub(again.DiscountAmount).Add(again.GSTAmount)))
}

func TestFormatBillNumber(t *testing.T) {
	assert.Equal(t, "BILL-20250307-0001", FormatBillNumber(date("2025-03-07"), 1))
	assert.Equal(t, "BILL-20250307-0123", FormatBillNumber(date("2025-03-07"), 123))
}

func TestStatusLifecycle(t *testing.T) {
	assert.True(t, CanTransition(KindHotel, StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(KindHotel, StatusConfirmed, StatusNoShow))
	assert.True(t, CanTransition(KindHotel, StatusCheckedIn, StatusCheckedOut))
	assert.False(t, CanTransition(KindRestaurant, StatusConfirmed, StatusNoShow))
	assert.False(t, CanTransition(KindHotel, StatusPending, StatusCheckedOut))
	assert.False(t, CanTransition(KindRestaurant, StatusCancelled, StatusConfirmed))
	assert.True(t, CanTransition(KindRestaurant, StatusConfirmed, StatusCompleted))

	assert.True(t, ValidStatus(KindRestaurant, StatusCompleted))
	assert.False(t, ValidStatus(KindRestaurant, StatusCheckedIn))
	assert.True(t, ValidStatus(KindHotel, StatusNoShow))

	assert.True(t, StatusCheckedIn.IsActive())
	assert.False(t, StatusNoShow.IsActive())
}

func TestRolesRoundTripThroughColumn(t *testing.T) {
	roles := SplitRoles("customer, ADMIN,unknown")
	assert.Equal(t, []Role{RoleCustomer, RoleAdmin}, roles)
	assert.Equal(t, "customer,admin", JoinRoles(roles))
	assert.True(t, User{Roles: roles}.HasRole(RoleAdmin))
}
