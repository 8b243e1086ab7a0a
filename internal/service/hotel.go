package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/queue"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

const maxStayNights = 365

// HotelService books rooms for multi-night stays.
type HotelService struct {
	bookings HotelBookingStore
	rooms    RoomStore
	checker  *Checker
	events   notifier
	now      func() time.Time
}

// NewHotelService wires the hotel service to its stores and publisher.
func NewHotelService(st Stores, checker *Checker, pub EventPublisher, log *slog.Logger) *HotelService {
	return &HotelService{
		bookings: st.Hotel,
		rooms:    st.Rooms,
		checker:  checker,
		events:   notifier{pub: pub, log: log},
		now:      time.Now,
	}
}

type HotelBookingInput struct {
	RoomID          uint64              `json:"roomId"`
	CheckInDate     string              `json:"checkInDate"`
	CheckOutDate    string              `json:"checkOutDate"`
	NumberOfGuests  int                 `json:"numberOfGuests"`
	TotalPrice      *decimal.Decimal    `json:"totalPrice"`
	GuestName       string              `json:"guestName"`
	GuestEmail      string              `json:"guestEmail"`
	GuestPhone      string              `json:"guestPhone"`
	PaymentStatus   model.PaymentStatus `json:"paymentStatus"`
	PaymentMethod   model.PaymentMethod `json:"paymentMethod"`
	BookingSource   string              `json:"bookingSource"`
	SpecialRequests string              `json:"specialRequests"`
	Notes           string              `json:"notes"`
}

type HotelBookingPatch struct {
	RoomID          *uint64              `json:"roomId"`
	CheckInDate     *string              `json:"checkInDate"`
	CheckOutDate    *string              `json:"checkOutDate"`
	NumberOfGuests  *int                 `json:"numberOfGuests"`
	TotalPrice      *decimal.Decimal     `json:"totalPrice"`
	GuestName       *string              `json:"guestName"`
	GuestEmail      *string              `json:"guestEmail"`
	GuestPhone      *string              `json:"guestPhone"`
	Status          *model.BookingStatus `json:"status"`
	PaymentStatus   *model.PaymentStatus `json:"paymentStatus"`
	PaymentMethod   *model.PaymentMethod `json:"paymentMethod"`
	BookingSource   *string              `json:"bookingSource"`
	SpecialRequests *string              `json:"specialRequests"`
	Notes           *string              `json:"notes"`
}

// stay validates a check-in/check-out pair and returns the night count.
func stay(in, out time.Time) (int, error) {
	if !out.After(in) {
		return 0, apperr.Validation("checkOutDate must be after checkInDate")
	}
	n := model.Interval{Start: in, End: out}.Nights()
	if n > maxStayNights {
		return 0, apperr.Validation("a stay cannot exceed %d nights", maxStayNights)
	}
	return n, nil
}

func parseStay(in, out string) (time.Time, time.Time, int, error) {
	checkIn, err := parseDate("checkInDate", in)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	checkOut, err := parseDate("checkOutDate", out)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	nights, err := stay(checkIn, checkOut)
	return checkIn, checkOut, nights, err
}

func roomPrice(r model.Room, nights int) decimal.Decimal {
	return r.PricePerNight.Mul(decimal.NewFromInt(int64(nights))).Round(2)
}

func checkGuests(n int, r model.Room) error {
	if n < 1 {
		return apperr.Validation("numberOfGuests must be at least 1")
	}
	if n > r.Capacity {
		return apperr.Validation("room %s holds at most %d guests", r.RoomNumber, r.Capacity)
	}
	return nil
}

// Create books a room for a stay. p may be nil for a guest booking.
func (s *HotelService) Create(ctx context.Context, p *Principal, in HotelBookingInput) (model.HotelBooking, error) {
	if p != nil {
		if err := Authorize(p, CapBookingCreate); err != nil {
			return model.HotelBooking{}, err
		}
	}
	guest, err := resolveContact(p, in.GuestName, in.GuestEmail, in.GuestPhone)
	if err != nil {
		return model.HotelBooking{}, err
	}
	if in.RoomID == 0 {
		return model.HotelBooking{}, apperr.Validation("roomId is required")
	}
	checkIn, checkOut, nights, err := parseStay(in.CheckInDate, in.CheckOutDate)
	if err != nil {
		return model.HotelBooking{}, err
	}
	source := strings.TrimSpace(in.BookingSource)
	if source == "" {
		source = "website"
	}
	if !model.OneOf(source, model.BookingSources) {
		return model.HotelBooking{}, apperr.Validation("bookingSource must be one of %s", strings.Join(model.BookingSources, ", "))
	}
	payment := in.PaymentStatus
	if payment == "" {
		payment = model.PaymentPending
	}
	if !model.ValidHotelPayment(payment) {
		return model.HotelBooking{}, apperr.Validation("invalid paymentStatus %q", payment)
	}
	if in.PaymentMethod != "" && !model.ValidPaymentMethod(in.PaymentMethod) {
		return model.HotelBooking{}, apperr.Validation("invalid paymentMethod %q", in.PaymentMethod)
	}
	if in.TotalPrice != nil && in.TotalPrice.IsNegative() {
		return model.HotelBooking{}, apperr.Validation("totalPrice cannot be negative")
	}

	room, avail, err := s.checker.room(ctx, in.RoomID, checkIn, checkOut, 0)
	if err != nil {
		return model.HotelBooking{}, err
	}
	if !avail.Available {
		return model.HotelBooking{}, unavailable("room "+room.RoomNumber, avail)
	}
	if err := checkGuests(in.NumberOfGuests, room); err != nil {
		return model.HotelBooking{}, err
	}
	price := roomPrice(room, nights)
	if in.TotalPrice != nil {
		price = in.TotalPrice.Round(2)
	}

	b := model.HotelBooking{
		CustomerID:      ownerID(p),
		Guest:           guest,
		RoomID:          room.ID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		NumberOfGuests:  in.NumberOfGuests,
		TotalPrice:      price,
		Status:          model.StatusPending,
		PaymentStatus:   payment,
		PaymentMethod:   in.PaymentMethod,
		BookingSource:   source,
		SpecialRequests: strings.TrimSpace(in.SpecialRequests),
		Notes:           strings.TrimSpace(in.Notes),
	}
	if err := s.bookings.Create(ctx, &b); err != nil {
		return model.HotelBooking{}, storeErr("create hotel booking", "room "+room.RoomNumber, err)
	}
	s.events.emit(ctx, hotelEvent(queue.BookingCreated, b, room.RoomNumber, p))
	b.Room = room.Summary()
	return b, nil
}

func hotelEvent(typ string, b model.HotelBooking, roomNumber string, p *Principal) queue.Event {
	ev := queue.Event{
		Type:     typ,
		Kind:     string(model.KindHotel),
		EntityID: b.ID,
		ActorID:  actorID(p),
		Status:   string(b.Status),
		Amount:   b.TotalPrice.StringFixed(2),
	}
	if roomNumber != "" {
		ev.Resource = "room " + roomNumber
	}
	return ev
}

// List returns every stay for managers and only the caller's own
// otherwise. Anonymous callers are rejected.
func (s *HotelService) List(ctx context.Context, p *Principal, f repository.BookingFilter) ([]model.HotelBooking, int, error) {
	owner, err := ownerFilter(p)
	if err != nil {
		return nil, 0, err
	}
	f.CustomerID = owner
	out, total, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal("list hotel bookings", err)
	}
	if err := s.withRooms(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// withRooms attaches the room summary to each booking with one room query.
func (s *HotelService) withRooms(ctx context.Context, bs []model.HotelBooking) error {
	if len(bs) == 0 {
		return nil
	}
	rooms, err := s.rooms.List(ctx, repository.RoomFilter{})
	if err != nil {
		return apperr.Internal("list rooms", err)
	}
	byID := make(map[uint64]model.Room, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	for i := range bs {
		if r, ok := byID[bs[i].RoomID]; ok {
			bs[i].Room = r.Summary()
		}
	}
	return nil
}

func (s *HotelService) withRoom(ctx context.Context, b model.HotelBooking) (model.HotelBooking, error) {
	r, err := s.rooms.GetByID(ctx, b.RoomID)
	switch {
	case err == nil:
		b.Room = r.Summary()
	case !errors.Is(err, repository.ErrNotFound):
		return model.HotelBooking{}, apperr.Internal("load room", err)
	}
	return b, nil
}

// ListByDateRange returns stays checking in within [start, end], earliest
// first.
func (s *HotelService) ListByDateRange(ctx context.Context, p *Principal, start, end string) ([]model.HotelBooking, error) {
	from, err := parseDate("startDate", start)
	if err != nil {
		return nil, err
	}
	to, err := parseDate("endDate", end)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, apperr.Validation("endDate must not be before startDate")
	}
	out, _, err := s.List(ctx, p, repository.BookingFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CheckInDate.Before(out[j].CheckInDate) })
	return out, nil
}

// Get returns one stay to its owner or to staff.
func (s *HotelService) Get(ctx context.Context, p *Principal, id uint64) (model.HotelBooking, error) {
	if err := Authorize(p, CapBookingReadOwn); err != nil {
		return model.HotelBooking{}, err
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return model.HotelBooking{}, storeErr("load hotel booking", "booking", err)
	}
	if !p.Can(CapBookingManage) && !b.OwnedBy(p.UserID) {
		return model.HotelBooking{}, apperr.Authorization("access denied")
	}
	return s.withRoom(ctx, b)
}

// Update applies an admin patch. When the room or the dates change the
// stay is re-checked excluding the booking itself, and the price is
// recomputed unless the patch sets one.
func (s *HotelService) Update(ctx context.Context, p *Principal, id uint64, patch HotelBookingPatch) (model.HotelBooking, error) {
	if err := Authorize(p, CapBookingManage); err != nil {
		return model.HotelBooking{}, err
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return model.HotelBooking{}, storeErr("load hotel booking", "booking", err)
	}
	moved := false

	if patch.Status != nil {
		to := *patch.Status
		if !model.ValidStatus(model.KindHotel, to) {
			return model.HotelBooking{}, apperr.Validation("invalid hotel booking status %q", to)
		}
		if !model.CanTransition(model.KindHotel, b.Status, to) {
			return model.HotelBooking{}, apperr.Validation("cannot change status from %s to %s", b.Status, to)
		}
		b.Status = to
	}
	if patch.RoomID != nil && *patch.RoomID != b.RoomID {
		b.RoomID = *patch.RoomID
		moved = true
	}
	if patch.CheckInDate != nil {
		d, err := parseDate("checkInDate", *patch.CheckInDate)
		if err != nil {
			return model.HotelBooking{}, err
		}
		moved = moved || !d.Equal(b.CheckInDate)
		b.CheckInDate = d
	}
	if patch.CheckOutDate != nil {
		d, err := parseDate("checkOutDate", *patch.CheckOutDate)
		if err != nil {
			return model.HotelBooking{}, err
		}
		moved = moved || !d.Equal(b.CheckOutDate)
		b.CheckOutDate = d
	}
	nights, err := stay(b.CheckInDate, b.CheckOutDate)
	if err != nil {
		return model.HotelBooking{}, err
	}
	if patch.NumberOfGuests != nil {
		b.NumberOfGuests = *patch.NumberOfGuests
	}
	if patch.GuestName != nil {
		b.Guest.Name = strings.TrimSpace(*patch.GuestName)
	}
	if patch.GuestEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.GuestEmail))
		if email != "" && !validEmail(email) {
			return model.HotelBooking{}, apperr.Validation("guestEmail is not valid")
		}
		b.Guest.Email = email
	}
	if patch.GuestPhone != nil {
		b.Guest.Phone = strings.TrimSpace(*patch.GuestPhone)
	}
	if patch.PaymentStatus != nil {
		if !model.ValidHotelPayment(*patch.PaymentStatus) {
			return model.HotelBooking{}, apperr.Validation("invalid paymentStatus %q", *patch.PaymentStatus)
		}
		b.PaymentStatus = *patch.PaymentStatus
	}
	if patch.PaymentMethod != nil {
		if *patch.PaymentMethod != "" && !model.ValidPaymentMethod(*patch.PaymentMethod) {
			return model.HotelBooking{}, apperr.Validation("invalid paymentMethod %q", *patch.PaymentMethod)
		}
		b.PaymentMethod = *patch.PaymentMethod
	}
	if patch.BookingSource != nil {
		if !model.OneOf(*patch.BookingSource, model.BookingSources) {
			return model.HotelBooking{}, apperr.Validation("bookingSource must be one of %s", strings.Join(model.BookingSources, ", "))
		}
		b.BookingSource = *patch.BookingSource
	}
	if patch.SpecialRequests != nil {
		b.SpecialRequests = strings.TrimSpace(*patch.SpecialRequests)
	}
	if patch.Notes != nil {
		b.Notes = strings.TrimSpace(*patch.Notes)
	}

	room, err := s.rooms.GetByID(ctx, b.RoomID)
	if err != nil {
		return model.HotelBooking{}, storeErr("load room", "room", err)
	}
	if moved && b.Status.IsActive() {
		var avail Availability
		room, avail, err = s.checker.room(ctx, b.RoomID, b.CheckInDate, b.CheckOutDate, b.ID)
		if err != nil {
			return model.HotelBooking{}, err
		}
		if !avail.Available {
			return model.HotelBooking{}, unavailable("room "+room.RoomNumber, avail)
		}
	}
	if patch.NumberOfGuests != nil || moved {
		if err := checkGuests(b.NumberOfGuests, room); err != nil {
			return model.HotelBooking{}, err
		}
	}
	switch {
	case patch.TotalPrice != nil:
		if patch.TotalPrice.IsNegative() {
			return model.HotelBooking{}, apperr.Validation("totalPrice cannot be negative")
		}
		b.TotalPrice = patch.TotalPrice.Round(2)
	case moved:
		b.TotalPrice = roomPrice(room, nights)
	}

	if err := s.bookings.Update(ctx, b); err != nil {
		return model.HotelBooking{}, storeErr("update hotel booking", "room "+room.RoomNumber, err)
	}
	s.events.emit(ctx, hotelEvent(queue.BookingUpdated, b, room.RoomNumber, p))
	updated, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return model.HotelBooking{}, storeErr("load hotel booking", "booking", err)
	}
	updated.Room = room.Summary()
	return updated, nil
}

// Delete hard-deletes a stay and frees its nights.
func (s *HotelService) Delete(ctx context.Context, p *Principal, id uint64) error {
	if err := Authorize(p, CapBookingManage); err != nil {
		return err
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return storeErr("load hotel booking", "booking", err)
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return storeErr("delete hotel booking", "booking", err)
	}
	s.events.emit(ctx, hotelEvent(queue.BookingDeleted, b, "", p))
	return nil
}

// RoomCheck answers a single-room availability question.
type RoomCheck struct {
	RoomID       uint64  `json:"roomId"`
	CheckInDate  string  `json:"checkInDate"`
	CheckOutDate string  `json:"checkOutDate"`
	IsAvailable  bool    `json:"isAvailable"`
	ConflictID   *uint64 `json:"conflictingBookingId,omitempty"`
	Reason       string  `json:"reason,omitempty"`
}

// CheckRoom reports whether one room is free for the stay.
func (s *HotelService) CheckRoom(ctx context.Context, roomID uint64, in, out string) (RoomCheck, error) {
	if roomID == 0 {
		return RoomCheck{}, apperr.Validation("roomId is required")
	}
	checkIn, checkOut, _, err := parseStay(in, out)
	if err != nil {
		return RoomCheck{}, err
	}
	a, err := s.checker.RoomAvailability(ctx, roomID, checkIn, checkOut, 0)
	if err != nil {
		return RoomCheck{}, err
	}
	reason := a.Reason
	if a.Available {
		reason = "room is available for the selected dates"
	}
	return RoomCheck{
		RoomID:       roomID,
		CheckInDate:  checkIn.Format(dateLayout),
		CheckOutDate: checkOut.Format(dateLayout),
		IsAvailable:  a.Available,
		ConflictID:   a.ConflictingID,
		Reason:       reason,
	}, nil
}

// RoomSearch is the answer to an available-rooms query.
type RoomSearch struct {
	CheckInDate    string       `json:"checkInDate"`
	CheckOutDate   string       `json:"checkOutDate"`
	Nights         int          `json:"nights"`
	Rooms          []model.Room `json:"availableRooms"`
	TotalAvailable int          `json:"totalAvailable"`
}

// AvailableRooms lists bookable rooms with no active stay overlapping
// [in, out), cheapest first.
func (s *HotelService) AvailableRooms(ctx context.Context, in, out string, guests int, roomType string) (RoomSearch, error) {
	checkIn, checkOut, nights, err := parseStay(in, out)
	if err != nil {
		return RoomSearch{}, err
	}
	if guests < 0 {
		return RoomSearch{}, apperr.Validation("numberOfGuests cannot be negative")
	}
	if roomType != "" && !model.OneOf(roomType, model.RoomTypes) {
		return RoomSearch{}, apperr.Validation("roomType must be one of %s", strings.Join(model.RoomTypes, ", "))
	}
	rooms, err := s.rooms.List(ctx, repository.RoomFilter{RoomType: roomType, MinCapacity: guests, BookableOnly: true})
	if err != nil {
		return RoomSearch{}, apperr.Internal("list rooms", err)
	}
	busy, err := s.bookings.ActiveOverlapping(ctx, 0, checkIn, checkOut)
	if err != nil {
		return RoomSearch{}, apperr.Internal("scan room stays", err)
	}
	taken := make(map[uint64]bool, len(busy))
	for _, b := range busy {
		taken[b.RoomID] = true
	}
	res := RoomSearch{
		CheckInDate:  checkIn.Format(dateLayout),
		CheckOutDate: checkOut.Format(dateLayout),
		Nights:       nights,
		Rooms:        []model.Room{},
	}
	for _, r := range rooms {
		if !taken[r.ID] {
			res.Rooms = append(res.Rooms, r)
		}
	}
	res.TotalAvailable = len(res.Rooms)
	return res, nil
}

type StatusStat struct {
	Status       model.BookingStatus `json:"status"`
	Count        int                 `json:"count"`
	TotalRevenue decimal.Decimal     `json:"totalRevenue"`
}

type HotelStats struct {
	TotalBookings      int          `json:"totalBookings"`
	PendingBookings    int          `json:"pendingBookings"`
	ConfirmedBookings  int          `json:"confirmedBookings"`
	CheckedInBookings  int          `json:"checkedInBookings"`
	CheckedOutBookings int          `json:"checkedOutBookings"`
	CancelledBookings  int          `json:"cancelledBookings"`
	StatusStats        []StatusStat `json:"statusStats"`
	RecentBookings     int          `json:"recentBookings"`
}

// Stats rolls up hotel bookings by status. Recent bookings are those
// created in the last 30 days.
func (s *HotelService) Stats(ctx context.Context, p *Principal) (HotelStats, error) {
	if err := Authorize(p, CapDashboardView); err != nil {
		return HotelStats{}, err
	}
	totals, err := s.bookings.StatusTotals(ctx)
	if err != nil {
		return HotelStats{}, apperr.Internal("count hotel bookings", err)
	}
	recent, err := s.bookings.CountCreatedSince(ctx, s.now().AddDate(0, 0, -30))
	if err != nil {
		return HotelStats{}, apperr.Internal("count recent hotel bookings", err)
	}
	st := HotelStats{TotalBookings: countAll(totals), RecentBookings: recent, StatusStats: []StatusStat{}}
	for _, g := range totals {
		status := model.BookingStatus(g.Key)
		switch status {
		case model.StatusPending:
			st.PendingBookings = g.Count
		case model.StatusConfirmed:
			st.ConfirmedBookings = g.Count
		case model.StatusCheckedIn:
			st.CheckedInBookings = g.Count
		case model.StatusCheckedOut:
			st.CheckedOutBookings = g.Count
		case model.StatusCancelled:
			st.CancelledBookings = g.Count
		}
		st.StatusStats = append(st.StatusStats, StatusStat{Status: status, Count: g.Count, TotalRevenue: g.Amount})
	}
	sort.Slice(st.StatusStats, func(i, j int) bool { return st.StatusStats[i].Status < st.StatusStats[j].Status })
	return st, nil
}
