package model

// BookingKind distinguishes the two reservation variants. The lifecycle
// rules differ between them.
type BookingKind string

const (
	KindRestaurant BookingKind = "restaurant"
	KindHotel      BookingKind = "hotel"
)

// BookingStatus is the lifecycle state of a reservation.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusCheckedIn  BookingStatus = "checked_in"
	StatusCheckedOut BookingStatus = "checked_out"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
)

// IsActive reports whether a reservation in this status still occupies
// its resource.
func (s BookingStatus) IsActive() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return true
	}
	return false
}

// transitions lists, per kind, the statuses reachable from each
// non-terminal status. Terminal statuses have no entry.
var transitions = map[BookingKind]map[BookingStatus][]BookingStatus{
	KindRestaurant: {
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCompleted, StatusCancelled},
	},
	KindHotel: {
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusNoShow},
		StatusCheckedIn: {StatusCheckedOut, StatusCancelled},
	},
}

// ValidStatus reports whether s belongs to the lifecycle of kind k.
func ValidStatus(k BookingKind, s BookingStatus) bool {
	if _, ok := transitions[k][s]; ok {
		return true
	}
	for _, next := range transitions[k] {
		for _, n := range next {
			if n == s {
				return true
			}
		}
	}
	return false
}

// CanTransition reports whether a reservation of kind k may move from one
// status to another. Staying in the same status is always allowed.
func CanTransition(k BookingKind, from, to BookingStatus) bool {
	if from == to {
		return true
	}
	for _, n := range transitions[k][from] {
		if n == to {
			return true
		}
	}
	return false
}

// PaymentStatus tracks an invoice or hotel booking payment. Payment
// gateways are not integrated; the value is set by staff.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

// ValidOrderPayment reports whether s is accepted on an invoice.
func ValidOrderPayment(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentCancelled, PaymentRefunded:
		return true
	}
	return false
}

// ValidHotelPayment reports whether s is accepted on a hotel booking.
func ValidHotelPayment(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentPartial, PaymentRefunded:
		return true
	}
	return false
}

// PaymentMethod records how a bill was settled.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodUPI          PaymentMethod = "upi"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodOther        PaymentMethod = "other"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodCard, MethodUPI, MethodBankTransfer, MethodOther:
		return true
	}
	return false
}
