package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Table is a bookable restaurant table. TableNumber is the public key
// used by reservations; ID is the storage key.
//
// Fields:
//
//	ID          – primary key identifier.
//	TableNumber – unique number shown to staff and guests.
//	Capacity    – maximum party size.
//	Location    – indoor, outdoor, patio, vip or bar_area.
//	Shape       – round, square, rectangle, oval or semi_circle.
//	Features    – free-form tags such as "window".
//	IsActive    – inactive tables cannot be booked.
type Table struct {
	ID          uint64    `json:"id"`
	TableNumber string    `json:"tableNumber"`
	Capacity    int       `json:"capacity"`
	Location    string    `json:"location"`
	Shape       string    `json:"shape,omitempty"`
	Features    []string  `json:"features"`
	IsActive    bool      `json:"isActive"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableSummary is the part of a table shown alongside its bookings.
type TableSummary struct {
	ID          uint64 `json:"id"`
	TableNumber string `json:"tableNumber"`
	Capacity    int    `json:"capacity"`
	Location    string `json:"location"`
}

func (t Table) Summary() *TableSummary {
	return &TableSummary{ID: t.ID, TableNumber: t.TableNumber, Capacity: t.Capacity, Location: t.Location}
}

var TableLocations = []string{"indoor", "outdoor", "patio", "vip", "bar_area"}

// Room is a bookable hotel room. IsAvailable is a manual override (for
// example maintenance) and is independent of reservation based
// availability.
//
// Fields:
//
//	ID            – primary key identifier.
//	RoomNumber    – unique room number.
//	RoomType      – single, double, twin, suite, deluxe, family or presidential.
//	Floor         – floor number.
//	Capacity      – maximum number of guests.
//	PricePerNight – nightly rate used when a booking carries no explicit price.
//	IsActive      – room exists and is in service.
//	IsAvailable   – manual booking switch.
type Room struct {
	ID               uint64          `json:"id"`
	RoomNumber       string          `json:"roomNumber"`
	RoomType         string          `json:"roomType"`
	Floor            int             `json:"floor"`
	Capacity         int             `json:"capacity"`
	PricePerNight    decimal.Decimal `json:"pricePerNight"`
	Amenities        []string        `json:"amenities"`
	ViewType         string          `json:"viewType,omitempty"`
	BedType          string          `json:"bedType,omitempty"`
	IsActive         bool            `json:"isActive"`
	IsAvailable      bool            `json:"isAvailable"`
	MaintenanceNotes string          `json:"maintenanceNotes,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

var RoomTypes = []string{"single", "double", "twin", "suite", "deluxe", "family", "presidential"}

// MenuItem is a dish or drink that restaurant bookings may pre-order.
type MenuItem struct {
	ID             uint64          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Category       string          `json:"category"`
	DietaryOptions []string        `json:"dietaryOptions"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

var MenuCategories = []string{
	"appetizer", "main_course", "dessert", "beverage",
	"alcoholic_beverage", "non_alcoholic_beverage", "specials",
}

// OneOf reports whether v is in set.
func OneOf(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// RoomSummary is the part of a room shown alongside its bookings.
type RoomSummary struct {
	ID            uint64          `json:"id"`
	RoomNumber    string          `json:"roomNumber"`
	RoomType      string          `json:"roomType"`
	Floor         int             `json:"floor"`
	PricePerNight decimal.Decimal `json:"pricePerNight"`
}

func (r Room) Summary() *RoomSummary {
	return &RoomSummary{ID: r.ID, RoomNumber: r.RoomNumber, RoomType: r.RoomType, Floor: r.Floor, PricePerNight: r.PricePerNight}
}
