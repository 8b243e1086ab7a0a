// Package memory is an in-process implementation of the record store.
// It enforces the same uniqueness and claim rules as the MySQL
// repositories under a single mutex and is used by tests and by
// STORAGE_DRIVER=memory deployments. Every read returns a copy.
package memory

import (
	"sync"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
)

type slotKey struct {
	table string
	date  string
	time  string
}

type nightKey struct {
	room  uint64
	night string
}

// state is shared by every repository of one Store.
type state struct {
	mu sync.Mutex

	nextID uint64

	users    map[uint64]model.User
	emails   map[string]uint64
	revoked  map[string]time.Time
	tables   map[uint64]model.Table
	rooms    map[uint64]model.Room
	menu     map[uint64]model.MenuItem
	rBooking map[uint64]model.RestaurantBooking
	hBooking map[uint64]model.HotelBooking
	orders   map[uint64]model.Order

	slots    map[slotKey]uint64
	nights   map[nightKey]uint64
	billSeqs map[string]int
}

func (s *state) id() uint64 {
	s.nextID++
	return s.nextID
}

// Store groups the repositories backed by one shared state.
type Store struct {
	Users              *UserRepo
	Tokens             *TokenRepo
	Tables             *TableRepo
	Rooms              *RoomRepo
	Menu               *MenuRepo
	RestaurantBookings *RestaurantBookingRepo
	HotelBookings      *HotelBookingRepo
	Orders             *OrderRepo
}

func New() *Store {
	s := &state{
		users:    map[uint64]model.User{},
		emails:   map[string]uint64{},
		revoked:  map[string]time.Time{},
		tables:   map[uint64]model.Table{},
		rooms:    map[uint64]model.Room{},
		menu:     map[uint64]model.MenuItem{},
		rBooking: map[uint64]model.RestaurantBooking{},
		hBooking: map[uint64]model.HotelBooking{},
		orders:   map[uint64]model.Order{},
		slots:    map[slotKey]uint64{},
		nights:   map[nightKey]uint64{},
		billSeqs: map[string]int{},
	}
	return &Store{
		Users:              &UserRepo{s},
		Tokens:             &TokenRepo{s},
		Tables:             &TableRepo{s},
		Rooms:              &RoomRepo{s},
		Menu:               &MenuRepo{s},
		RestaurantBookings: &RestaurantBookingRepo{s},
		HotelBookings:      &HotelBookingRepo{s},
		Orders:             &OrderRepo{s},
	}
}

func now() time.Time { return time.Now().UTC().Truncate(time.Second) }

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

func copyID(p *uint64) *uint64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyStrings(v []string) []string {
	return append([]string{}, v...)
}

func inRange(d time.Time, from, to *time.Time) bool {
	k := dayKey(d)
	if from != nil && k < dayKey(*from) {
		return false
	}
	if to != nil && k > dayKey(*to) {
		return false
	}
	return true
}
