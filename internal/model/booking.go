package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is a pre-ordered menu item embedded in a restaurant booking.
// Name, price, category and dietary options are copied from the menu
// when the booking is written and do not follow later menu edits.
type OrderLine struct {
	ItemID         uint64          `json:"itemId"`
	ItemName       string          `json:"itemName"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	Category       string          `json:"category"`
	DietaryOptions []string        `json:"dietaryOptions"`
}

// Contact is the guest contact block shared by both booking kinds.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// RestaurantBooking reserves one table for one (date, time slot).
//
// Fields:
//
//	ID           – primary key identifier.
//	CustomerID   – registered customer, nil for guest bookings.
//	Customer     – contact details, filled from the profile when absent.
//	PartySize    – number of guests.
//	BookingDate  – calendar date of the visit.
//	BookingTime  – HH:MM slot; a booking occupies the whole slot.
//	TableNumber  – booked table.
//	Status       – lifecycle state.
//	BookingType  – table, event, private_dining or regular.
//	OrderDetails – pre-ordered items (snapshot).
//	TotalAmount  – sum of the pre-order, or an explicit amount.
type RestaurantBooking struct {
	ID              uint64          `json:"id"`
	CustomerID      *uint64         `json:"customerId,omitempty"`
	Customer        Contact         `json:"customer"`
	PartySize       int             `json:"partySize"`
	BookingDate     time.Time       `json:"bookingDate"`
	BookingTime     string          `json:"bookingTime"`
	TableNumber     string          `json:"tableNumber"`
	Status          BookingStatus   `json:"status"`
	BookingType     string          `json:"bookingType"`
	SpecialRequests string          `json:"specialRequests,omitempty"`
	OrderDetails    []OrderLine     `json:"orderDetails"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	// Table is filled by the service on reads; it is not stored.
	Table *TableSummary `json:"table,omitempty"`
}

var BookingTypes = []string{"table", "event", "private_dining", "regular"}

// OwnedBy reports whether the booking belongs to user id.
func (b RestaurantBooking) OwnedBy(id uint64) bool {
	return b.CustomerID != nil && *b.CustomerID == id
}

// HotelBooking reserves one room for the half-open stay
// [CheckInDate, CheckOutDate).
type HotelBooking struct {
	ID              uint64          `json:"id"`
	CustomerID      *uint64         `json:"customerId,omitempty"`
	Guest           Contact         `json:"guest"`
	RoomID          uint64          `json:"roomId"`
	CheckInDate     time.Time       `json:"checkInDate"`
	CheckOutDate    time.Time       `json:"checkOutDate"`
	NumberOfGuests  int             `json:"numberOfGuests"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Status          BookingStatus   `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod,omitempty"`
	BookingSource   string          `json:"bookingSource"`
	SpecialRequests string          `json:"specialRequests,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	Room *RoomSummary `json:"room,omitempty"`
}

var BookingSources = []string{"website", "phone", "walk_in", "travel_agent", "booking_com", "expedia", "other"}

func (b HotelBooking) OwnedBy(id uint64) bool {
	return b.CustomerID != nil && *b.CustomerID == id
}

// Stay returns the booked interval.
func (b HotelBooking) Stay() Interval {
	return Interval{Start: b.CheckInDate, End: b.CheckOutDate}
}
