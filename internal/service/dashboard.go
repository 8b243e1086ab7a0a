package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

// DashboardService is a read-only rollup across modules.
type DashboardService struct {
	st Stores
}

// NewDashboardService reads from every store in st.
func NewDashboardService(st Stores) *DashboardService {
	return &DashboardService{st: st}
}

type DashboardStats struct {
	Users              int             `json:"users"`
	RestaurantBookings int             `json:"restaurantBookings"`
	HotelBookings      int             `json:"hotelBookings"`
	ActiveReservations int             `json:"activeReservations"`
	Orders             int             `json:"orders"`
	PaidRevenue        decimal.Decimal `json:"paidRevenue"`
}

// Stats counts users, bookings and invoices. Active reservations are the
// non-terminal bookings of both kinds; revenue counts paid invoices only.
func (s *DashboardService) Stats(ctx context.Context, p *Principal) (DashboardStats, error) {
	if err := Authorize(p, CapDashboardView); err != nil {
		return DashboardStats{}, err
	}
	var out DashboardStats
	var err error
	if out.Users, err = s.st.Users.Count(ctx); err != nil {
		return out, apperr.Internal("count users", err)
	}
	restaurant, err := s.st.Restaurant.StatusTotals(ctx)
	if err != nil {
		return out, apperr.Internal("count restaurant bookings", err)
	}
	hotel, err := s.st.Hotel.StatusTotals(ctx)
	if err != nil {
		return out, apperr.Internal("count hotel bookings", err)
	}
	orders, err := s.st.Orders.PaymentTotals(ctx, nil)
	if err != nil {
		return out, apperr.Internal("count orders", err)
	}
	out.RestaurantBookings = countAll(restaurant)
	out.HotelBookings = countAll(hotel)
	out.ActiveReservations = countActive(restaurant) + countActive(hotel)
	out.Orders = countAll(orders)
	out.PaidRevenue = group(orders, string(model.PaymentPaid)).Amount
	return out, nil
}

func countAll(totals []repository.GroupTotal) int {
	n := 0
	for _, g := range totals {
		n += g.Count
	}
	return n
}

func countActive(totals []repository.GroupTotal) int {
	n := 0
	for _, g := range totals {
		if model.BookingStatus(g.Key).IsActive() {
			n += g.Count
		}
	}
	return n
}

// group returns the row for key, or an empty one with a zero amount.
func group(totals []repository.GroupTotal, key string) repository.GroupTotal {
	for _, g := range totals {
		if g.Key == key {
			return g
		}
	}
	return repository.GroupTotal{Key: key, Amount: decimal.Zero}
}
