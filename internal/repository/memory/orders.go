package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

type OrderRepo struct{ s *state }

func cloneOrder(o model.Order) model.Order {
	o.CustomerID = copyID(o.CustomerID)
	o.UpdatedBy = copyID(o.UpdatedBy)
	items := make([]model.OrderItem, len(o.Items))
	for i, it := range o.Items {
		it.DietaryOptions = copyStrings(it.DietaryOptions)
		items[i] = it
	}
	o.Items = items
	return o
}

// CreateWithBillNumber allocates the day's next sequence and stores o
// under the same lock.
func (r *OrderRepo) CreateWithBillNumber(_ context.Context, o *model.Order, day time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.orders {
		if existing.BookingID == o.BookingID {
			return repository.ErrDuplicate
		}
	}
	key := dayKey(day)
	seq := r.s.billSeqs[key] + 1
	r.s.billSeqs[key] = seq
	o.BillNumber = model.FormatBillNumber(day, seq)
	o.BillDate = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	o.ID = r.s.id()
	o.CreatedAt, o.UpdatedAt = now(), now()
	r.s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id uint64) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepo) GetByBookingID(_ context.Context, bookingID uint64) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.BookingID == bookingID {
			return cloneOrder(o), nil
		}
	}
	return model.Order{}, repository.ErrNotFound
}

func (r *OrderRepo) List(_ context.Context, f repository.OrderFilter) ([]model.Order, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	name := strings.ToLower(strings.TrimSpace(f.CustomerName))
	bill := strings.ToLower(strings.TrimSpace(f.BillNumber))
	all := []model.Order{}
	for _, o := range r.s.orders {
		if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(o.Customer.Name), name) {
			continue
		}
		if bill != "" && !strings.Contains(strings.ToLower(o.BillNumber), bill) {
			continue
		}
		if !inRange(o.BillDate, f.From, f.To) {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	lo, hi := f.Window(len(all))
	out := make([]model.Order, 0, hi-lo)
	for _, o := range all[lo:hi] {
		out = append(out, cloneOrder(o))
	}
	return out, len(all), nil
}

// Update writes the mutable invoice fields only.
func (r *OrderRepo) Update(_ context.Context, o model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[o.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Totals = o.Totals
	cur.PaymentStatus = o.PaymentStatus
	cur.PaymentMethod = o.PaymentMethod
	cur.PaymentReference = o.PaymentReference
	cur.BillNotes = o.BillNotes
	cur.UpdatedBy = copyID(o.UpdatedBy)
	cur.UpdatedAt = now()
	r.s.orders[o.ID] = cur
	return nil
}

func (r *OrderRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.orders, id)
	return nil
}

func (r *OrderRepo) PaymentTotals(_ context.Context, day *time.Time) ([]repository.GroupTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []repository.GroupTotal{}
	for _, o := range r.s.orders {
		if day != nil && dayKey(o.BillDate) != dayKey(*day) {
			continue
		}
		out = repository.AddGroup(out, string(o.PaymentStatus), o.TotalAmount)
	}
	return out, nil
}
