// Package service holds the business rules: access control, the
// availability checker, booking and billing. Services depend on the small
// store interfaces below, which are satisfied by both the MySQL
// repositories and the in-memory store.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
	"github.com/iliyamo/hospitality-reservation/internal/repository/memory"
)

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Update(ctx context.Context, u model.User) error
	List(ctx context.Context, f repository.UserFilter) ([]model.User, int, error)
	Delete(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int, error)
}

type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, userID uint64, exp time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type TableStore interface {
	Create(ctx context.Context, t *model.Table) error
	GetByID(ctx context.Context, id uint64) (model.Table, error)
	GetByNumber(ctx context.Context, number string) (model.Table, error)
	List(ctx context.Context, f repository.TableFilter) ([]model.Table, error)
	Update(ctx context.Context, t model.Table) error
	Delete(ctx context.Context, id uint64) error
}

type RoomStore interface {
	Create(ctx context.Context, m *model.Room) error
	GetByID(ctx context.Context, id uint64) (model.Room, error)
	List(ctx context.Context, f repository.RoomFilter) ([]model.Room, error)
	Update(ctx context.Context, m model.Room) error
	Delete(ctx context.Context, id uint64) error
}

type MenuStore interface {
	Create(ctx context.Context, m *model.MenuItem) error
	GetByID(ctx context.Context, id uint64) (model.MenuItem, error)
	GetMany(ctx context.Context, ids []uint64) (map[uint64]model.MenuItem, error)
	List(ctx context.Context, f repository.MenuFilter) ([]model.MenuItem, error)
	Update(ctx context.Context, m model.MenuItem) error
	Delete(ctx context.Context, id uint64) error
}

// RestaurantBookingStore writes bookings together with their slot claim.
// Create and Update return repository.ErrSlotTaken when another active
// booking holds the slot.
type RestaurantBookingStore interface {
	Create(ctx context.Context, b *model.RestaurantBooking) error
	GetByID(ctx context.Context, id uint64) (model.RestaurantBooking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]model.RestaurantBooking, int, error)
	ActiveForSlot(ctx context.Context, date time.Time, slot string) ([]model.RestaurantBooking, error)
	StatusTotals(ctx context.Context) ([]repository.GroupTotal, error)
	Update(ctx context.Context, b model.RestaurantBooking) error
	Delete(ctx context.Context, id uint64) error
}

// HotelBookingStore writes bookings together with their night claims.
type HotelBookingStore interface {
	Create(ctx context.Context, b *model.HotelBooking) error
	GetByID(ctx context.Context, id uint64) (model.HotelBooking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]model.HotelBooking, int, error)
	ActiveOverlapping(ctx context.Context, roomID uint64, in, out time.Time) ([]model.HotelBooking, error)
	StatusTotals(ctx context.Context) ([]repository.GroupTotal, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	Update(ctx context.Context, b model.HotelBooking) error
	Delete(ctx context.Context, id uint64) error
}

// OrderStore allocates bill numbers atomically with the insert.
type OrderStore interface {
	CreateWithBillNumber(ctx context.Context, o *model.Order, day time.Time) error
	GetByID(ctx context.Context, id uint64) (model.Order, error)
	GetByBookingID(ctx context.Context, bookingID uint64) (model.Order, error)
	List(ctx context.Context, f repository.OrderFilter) ([]model.Order, int, error)
	PaymentTotals(ctx context.Context, day *time.Time) ([]repository.GroupTotal, error)
	Update(ctx context.Context, o model.Order) error
	Delete(ctx context.Context, id uint64) error
}

// Stores bundles every store a service might need.
type Stores struct {
	Users      UserStore
	Tokens     TokenStore
	Tables     TableStore
	Rooms      RoomStore
	Menu       MenuStore
	Restaurant RestaurantBookingStore
	Hotel      HotelBookingStore
	Orders     OrderStore
}

// MySQLStores wires the MySQL repositories over one connection handle.
func MySQLStores(db repository.Conn) Stores {
	return Stores{
		Users:      repository.NewUserRepo(db),
		Tokens:     repository.NewTokenRepo(db),
		Tables:     repository.NewTableRepo(db),
		Rooms:      repository.NewRoomRepo(db),
		Menu:       repository.NewMenuRepo(db),
		Restaurant: repository.NewRestaurantBookingRepo(db),
		Hotel:      repository.NewHotelBookingRepo(db),
		Orders:     repository.NewOrderRepo(db),
	}
}

// MemoryStores wires an in-memory store.
func MemoryStores(m *memory.Store) Stores {
	return Stores{
		Users:      m.Users,
		Tokens:     m.Tokens,
		Tables:     m.Tables,
		Rooms:      m.Rooms,
		Menu:       m.Menu,
		Restaurant: m.RestaurantBookings,
		Hotel:      m.HotelBookings,
		Orders:     m.Orders,
	}
}
