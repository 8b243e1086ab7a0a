package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

type RestaurantBookingRepo struct{ s *state }

func cloneRestaurant(b model.RestaurantBooking) model.RestaurantBooking {
	b.CustomerID = copyID(b.CustomerID)
	lines := make([]model.OrderLine, len(b.OrderDetails))
	for i, l := range b.OrderDetails {
		l.DietaryOptions = copyStrings(l.DietaryOptions)
		lines[i] = l
	}
	b.OrderDetails = lines
	b.Table = nil
	return b
}

func slotOf(b model.RestaurantBooking) slotKey {
	return slotKey{table: b.TableNumber, date: dayKey(b.BookingDate), time: b.BookingTime}
}

func (s *state) tableExists(number string) bool {
	for _, t := range s.tables {
		if t.TableNumber == number {
			return true
		}
	}
	return false
}

// claimSlot takes the slot of b if it is active. Callers hold the lock.
func (s *state) claimSlot(b model.RestaurantBooking) error {
	if !b.Status.IsActive() {
		return nil
	}
	if !s.tableExists(b.TableNumber) {
		return repository.ErrNotFound
	}
	k := slotOf(b)
	if holder, ok := s.slots[k]; ok && holder != b.ID {
		return repository.ErrSlotTaken
	}
	s.slots[k] = b.ID
	return nil
}

func (s *state) releaseSlots(bookingID uint64) {
	for k, id := range s.slots {
		if id == bookingID {
			delete(s.slots, k)
		}
	}
}

func (r *RestaurantBookingRepo) Create(_ context.Context, b *model.RestaurantBooking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := r.s.id()
	b.ID = id
	if err := r.s.claimSlot(*b); err != nil {
		b.ID = 0
		return err
	}
	b.CreatedAt, b.UpdatedAt = now(), now()
	r.s.rBooking[id] = cloneRestaurant(*b)
	return nil
}

func (r *RestaurantBookingRepo) GetByID(_ context.Context, id uint64) (model.RestaurantBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.rBooking[id]
	if !ok {
		return model.RestaurantBooking{}, repository.ErrNotFound
	}
	return cloneRestaurant(b), nil
}

func (r *RestaurantBookingRepo) List(_ context.Context, f repository.BookingFilter) ([]model.RestaurantBooking, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := []model.RestaurantBooking{}
	for _, b := range r.s.rBooking {
		if f.CustomerID != nil && !b.OwnedBy(*f.CustomerID) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if !inRange(b.BookingDate, f.From, f.To) {
			continue
		}
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool {
		di, dj := dayKey(all[i].BookingDate), dayKey(all[j].BookingDate)
		if di != dj {
			return di > dj
		}
		if all[i].BookingTime != all[j].BookingTime {
			return all[i].BookingTime > all[j].BookingTime
		}
		return all[i].ID > all[j].ID
	})
	lo, hi := f.Window(len(all))
	out := make([]model.RestaurantBooking, 0, hi-lo)
	for _, b := range all[lo:hi] {
		out = append(out, cloneRestaurant(b))
	}
	return out, len(all), nil
}

func (r *RestaurantBookingRepo) ActiveForSlot(_ context.Context, date time.Time, slot string) ([]model.RestaurantBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.RestaurantBooking
	day := dayKey(date)
	for _, b := range r.s.rBooking {
		if b.Status.IsActive() && dayKey(b.BookingDate) == day && b.BookingTime == slot {
			out = append(out, cloneRestaurant(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update moves the slot claim with the booking. On conflict the previous
// claim is restored and the booking is left unchanged.
func (r *RestaurantBookingRepo) Update(_ context.Context, b model.RestaurantBooking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.rBooking[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	r.s.releaseSlots(b.ID)
	if err := r.s.claimSlot(b); err != nil {
		if cur.Status.IsActive() {
			r.s.slots[slotOf(cur)] = cur.ID
		}
		return err
	}
	b.CustomerID = cur.CustomerID
	b.CreatedAt, b.UpdatedAt = cur.CreatedAt, now()
	r.s.rBooking[b.ID] = cloneRestaurant(b)
	return nil
}

func (r *RestaurantBookingRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rBooking[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.releaseSlots(id)
	delete(r.s.rBooking, id)
	return nil
}

type HotelBookingRepo struct{ s *state }

func cloneHotel(b model.HotelBooking) model.HotelBooking {
	b.CustomerID = copyID(b.CustomerID)
	b.Room = nil
	return b
}

// claimNights takes every night of b's stay if it is active. Callers hold
// the lock.
func (s *state) claimNights(b model.HotelBooking) error {
	if !b.Status.IsActive() {
		return nil
	}
	if _, ok := s.rooms[b.RoomID]; !ok {
		return repository.ErrNotFound
	}
	nights := b.Stay().EachNight()
	for _, n := range nights {
		if holder, ok := s.nights[nightKey{b.RoomID, dayKey(n)}]; ok && holder != b.ID {
			return repository.ErrSlotTaken
		}
	}
	for _, n := range nights {
		s.nights[nightKey{b.RoomID, dayKey(n)}] = b.ID
	}
	return nil
}

func (s *state) releaseNights(bookingID uint64) {
	for k, id := range s.nights {
		if id == bookingID {
			delete(s.nights, k)
		}
	}
}

func (r *HotelBookingRepo) Create(_ context.Context, b *model.HotelBooking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b.ID = r.s.id()
	if err := r.s.claimNights(*b); err != nil {
		b.ID = 0
		return err
	}
	b.CreatedAt, b.UpdatedAt = now(), now()
	r.s.hBooking[b.ID] = cloneHotel(*b)
	return nil
}

func (r *HotelBookingRepo) GetByID(_ context.Context, id uint64) (model.HotelBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.hBooking[id]
	if !ok {
		return model.HotelBooking{}, repository.ErrNotFound
	}
	return cloneHotel(b), nil
}

func (r *HotelBookingRepo) List(_ context.Context, f repository.BookingFilter) ([]model.HotelBooking, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := []model.HotelBooking{}
	for _, b := range r.s.hBooking {
		if f.CustomerID != nil && !b.OwnedBy(*f.CustomerID) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if !inRange(b.CheckInDate, f.From, f.To) {
			continue
		}
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CheckInDate.Equal(all[j].CheckInDate) {
			return all[i].CheckInDate.After(all[j].CheckInDate)
		}
		return all[i].ID > all[j].ID
	})
	lo, hi := f.Window(len(all))
	out := make([]model.HotelBooking, 0, hi-lo)
	for _, b := range all[lo:hi] {
		out = append(out, cloneHotel(b))
	}
	return out, len(all), nil
}

func (r *HotelBookingRepo) ActiveOverlapping(_ context.Context, roomID uint64, in, out time.Time) ([]model.HotelBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := model.Interval{Start: in, End: out}
	res := []model.HotelBooking{}
	for _, b := range r.s.hBooking {
		if roomID != 0 && b.RoomID != roomID {
			continue
		}
		if b.Status.IsActive() && b.Stay().Overlaps(want) {
			res = append(res, cloneHotel(b))
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CheckInDate.Equal(res[j].CheckInDate) {
			return res[i].CheckInDate.Before(res[j].CheckInDate)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (r *HotelBookingRepo) Update(_ context.Context, b model.HotelBooking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.hBooking[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	r.s.releaseNights(b.ID)
	if err := r.s.claimNights(b); err != nil {
		_ = r.s.claimNights(cur)
		return err
	}
	b.CustomerID = cur.CustomerID
	b.CreatedAt, b.UpdatedAt = cur.CreatedAt, now()
	r.s.hBooking[b.ID] = cloneHotel(b)
	return nil
}

func (r *HotelBookingRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.hBooking[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.releaseNights(id)
	delete(r.s.hBooking, id)
	return nil
}

func (r *RestaurantBookingRepo) StatusTotals(context.Context) ([]repository.GroupTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []repository.GroupTotal{}
	for _, b := range r.s.rBooking {
		out = repository.AddGroup(out, string(b.Status), b.TotalAmount)
	}
	return out, nil
}

func (r *HotelBookingRepo) StatusTotals(context.Context) ([]repository.GroupTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []repository.GroupTotal{}
	for _, b := range r.s.hBooking {
		out = repository.AddGroup(out, string(b.Status), b.TotalPrice)
	}
	return out, nil
}

func (r *HotelBookingRepo) CountCreatedSince(_ context.Context, since time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, b := range r.s.hBooking {
		if !b.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
