package repository

import (
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
)

// Page selects a 1-based page. A zero Limit means no paging.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	if p.Limit <= 0 || p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Window applies the page to n items and returns the slice bounds.
func (p Page) Window(n int) (lo, hi int) {
	if p.Limit <= 0 {
		return 0, n
	}
	lo = p.Offset()
	if lo > n {
		lo = n
	}
	hi = lo + p.Limit
	if hi > n {
		hi = n
	}
	return lo, hi
}

// BookingFilter narrows booking listings. From and To bound the booking
// date (restaurant) or check-in date (hotel), both inclusive.
type BookingFilter struct {
	CustomerID *uint64
	Status     model.BookingStatus
	From       *time.Time
	To         *time.Time
	Page
}

// OrderFilter narrows invoice listings. CustomerName and BillNumber are
// case-insensitive substring matches; From and To bound the bill date.
type OrderFilter struct {
	PaymentStatus model.PaymentStatus
	CustomerName  string
	BillNumber    string
	From          *time.Time
	To            *time.Time
	Page
}

// UserFilter narrows account listings. Email is a case-insensitive
// substring match.
type UserFilter struct {
	Role  model.Role
	Email string
	Page
}

type TableFilter struct {
	Location    string
	MinCapacity int
	ActiveOnly  bool
}

// RoomFilter narrows room listings. BookableOnly keeps rooms that are both
// active and manually available.
type RoomFilter struct {
	RoomType     string
	MinCapacity  int
	BookableOnly bool
}

type MenuFilter struct {
	Category   string
	ActiveOnly bool
}
