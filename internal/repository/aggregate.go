package repository

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// GroupTotal is one row of a COUNT/SUM rollup grouped by a status column.
type GroupTotal struct {
	Key    string
	Count  int
	Amount decimal.Decimal
}

// AddGroup folds one row into totals, keeping them sorted by key. The
// memory store builds its rollups with it.
func AddGroup(totals []GroupTotal, key string, amount decimal.Decimal) []GroupTotal {
	i := sort.Search(len(totals), func(i int) bool { return totals[i].Key >= key })
	if i < len(totals) && totals[i].Key == key {
		totals[i].Count++
		totals[i].Amount = totals[i].Amount.Add(amount)
		return totals
	}
	totals = append(totals, GroupTotal{})
	copy(totals[i+1:], totals[i:])
	totals[i] = GroupTotal{Key: key, Count: 1, Amount: amount}
	return totals
}

func groupTotals(ctx context.Context, c Conn, query string, args ...any) ([]GroupTotal, error) {
	db, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []GroupTotal{}
	for rows.Next() {
		var g GroupTotal
		if err := rows.Scan(&g.Key, &g.Count, &g.Amount); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// StatusTotals counts restaurant bookings and sums their amounts per
// status.
func (r *RestaurantBookingRepo) StatusTotals(ctx context.Context) ([]GroupTotal, error) {
	return groupTotals(ctx, r.db,
		"SELECT status, COUNT(*), COALESCE(SUM(total_amount),0) FROM restaurant_bookings GROUP BY status ORDER BY status")
}

// StatusTotals counts hotel bookings and sums their prices per status.
func (r *HotelBookingRepo) StatusTotals(ctx context.Context) ([]GroupTotal, error) {
	return groupTotals(ctx, r.db,
		"SELECT status, COUNT(*), COALESCE(SUM(total_price),0) FROM hotel_bookings GROUP BY status ORDER BY status")
}

// CountCreatedSince counts hotel bookings created at or after since.
func (r *HotelBookingRepo) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hotel_bookings WHERE created_at>=?", since.UTC()).Scan(&n)
	return n, err
}

// PaymentTotals counts invoices and sums their totals per payment
// status. A non-nil day limits the rollup to that bill date.
func (r *OrderRepo) PaymentTotals(ctx context.Context, day *time.Time) ([]GroupTotal, error) {
	q := "SELECT payment_status, COUNT(*), COALESCE(SUM(total_amount),0) FROM orders"
	var args []any
	if day != nil {
		q += " WHERE bill_date=?"
		args = append(args, sqlDate(*day))
	}
	return groupTotals(ctx, r.db, q+" GROUP BY payment_status ORDER BY payment_status", args...)
}
