package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/queue"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

const guestCustomer = "Guest Customer"

var (
	defaultGST = decimal.NewFromInt(18)
	maxPercent = decimal.NewFromInt(100)
)

// BillingService turns restaurant bookings into invoices.
type BillingService struct {
	orders   OrderStore
	bookings RestaurantBookingStore
	users    UserStore
	loc      *time.Location
	events   notifier
	log      *slog.Logger
	now      func() time.Time
}

// NewBillingService builds the service. loc decides which calendar day a
// bill number belongs to; nil means UTC.
func NewBillingService(st Stores, loc *time.Location, pub EventPublisher, log *slog.Logger) *BillingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BillingService{
		orders:   st.Orders,
		bookings: st.Restaurant,
		users:    st.Users,
		loc:      loc,
		events:   notifier{pub: pub, log: log},
		log:      log,
		now:      time.Now,
	}
}

type CreateBillInput struct {
	BookingID          uint64           `json:"bookingId"`
	GSTPercentage      *decimal.Decimal `json:"gstPercentage"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage"`
	BillNotes          string           `json:"billNotes"`
}

// BillPatch is the allow-list of invoice fields staff may change.
type BillPatch struct {
	GSTPercentage      *decimal.Decimal     `json:"gstPercentage"`
	DiscountPercentage *decimal.Decimal     `json:"discountPercentage"`
	BillNotes          *string              `json:"billNotes"`
	PaymentStatus      *model.PaymentStatus `json:"paymentStatus"`
	PaymentMethod      *model.PaymentMethod `json:"paymentMethod"`
	PaymentReference   *string              `json:"paymentReference"`
}

func percentage(field string, v *decimal.Decimal, def decimal.Decimal) (decimal.Decimal, error) {
	if v == nil {
		return def, nil
	}
	if v.IsNegative() || v.GreaterThan(maxPercent) {
		return decimal.Zero, apperr.Validation("%s must be between 0 and 100", field)
	}
	// Stored as DECIMAL(5,2); a finer value would not survive a reload.
	if !v.Equal(v.Round(2)) {
		return decimal.Zero, apperr.Validation("%s allows at most 2 decimal places", field)
	}
	return *v, nil
}

// billableItems keeps the pre-order lines that can be priced.
func billableItems(lines []model.OrderLine) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		if l.ItemID == 0 || strings.TrimSpace(l.ItemName) == "" || !l.Price.IsPositive() || l.Quantity < 1 {
			continue
		}
		items = append(items, model.OrderItem{
			ItemID:         l.ItemID,
			ItemName:       l.ItemName,
			Quantity:       l.Quantity,
			UnitPrice:      l.Price,
			Category:       l.Category,
			DietaryOptions: l.DietaryOptions,
		})
	}
	return items
}

func (s *BillingService) customerName(ctx context.Context, b model.RestaurantBooking) string {
	if name := strings.TrimSpace(b.Customer.Name); name != "" {
		return name
	}
	if b.CustomerID != nil {
		u, err := s.users.GetByID(ctx, *b.CustomerID)
		if err == nil && strings.TrimSpace(u.FullName) != "" {
			return u.FullName
		}
	}
	return guestCustomer
}

// CreateFromBooking issues the single invoice of a restaurant booking.
// The bill number is allocated by the store in the same write as the
// invoice, so concurrent issuers never share a number.
func (s *BillingService) CreateFromBooking(ctx context.Context, p *Principal, in CreateBillInput) (model.Order, error) {
	if err := Authorize(p, CapBillingManage); err != nil {
		return model.Order{}, err
	}
	if in.BookingID == 0 {
		return model.Order{}, apperr.Validation("bookingId is required")
	}
	gst, err := percentage("gstPercentage", in.GSTPercentage, defaultGST)
	if err != nil {
		return model.Order{}, err
	}
	disc, err := percentage("discountPercentage", in.DiscountPercentage, decimal.Zero)
	if err != nil {
		return model.Order{}, err
	}
	b, err := s.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		return model.Order{}, storeErr("load restaurant booking", "booking", err)
	}
	if _, err := s.orders.GetByBookingID(ctx, b.ID); err == nil {
		return model.Order{}, apperr.Conflict("an order already exists for booking %d", b.ID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.Order{}, apperr.Internal("check existing order", err)
	}
	if len(b.OrderDetails) == 0 {
		return model.Order{}, apperr.Validation("booking has no order items")
	}
	items := billableItems(b.OrderDetails)
	if len(items) == 0 {
		return model.Order{}, apperr.Validation("booking has no billable order items")
	}

	o := model.Order{
		BookingID:   b.ID,
		CustomerID:  b.CustomerID,
		Customer:    model.Contact{Name: s.customerName(ctx, b), Email: b.Customer.Email, Phone: b.Customer.Phone},
		Items:       items,
		TableNumber: b.TableNumber,
		PartySize:   b.PartySize,
		Totals:      model.ComputeTotals(items, gst, disc),

		PaymentStatus: model.PaymentPending,
		PaymentMethod: model.MethodCash,
		BillNotes:     strings.TrimSpace(in.BillNotes),
		CreatedBy:     p.UserID,
	}
	if err := s.orders.CreateWithBillNumber(ctx, &o, s.now().In(s.loc)); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Order{}, apperr.Conflict("an order already exists for booking %d", b.ID)
		}
		return model.Order{}, apperr.Internal("create order", err)
	}
	s.log.Info("bill issued", "order_id", o.ID, "bill_number", o.BillNumber, "booking_id", b.ID)
	s.events.emit(ctx, orderEvent(queue.InvoiceCreated, o, p))
	return o, nil
}

func orderEvent(typ string, o model.Order, p *Principal) queue.Event {
	return queue.Event{
		Type:      typ,
		Kind:      "invoice",
		EntityID:  o.ID,
		ActorID:   actorID(p),
		Resource:  o.TableNumber,
		Status:    string(o.PaymentStatus),
		Amount:    o.TotalAmount.StringFixed(2),
		Reference: o.BillNumber,
	}
}

// Get returns one invoice with its line items.
func (s *BillingService) Get(ctx context.Context, p *Principal, id uint64) (model.Order, error) {
	if err := Authorize(p, CapBillingManage); err != nil {
		return model.Order{}, err
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return model.Order{}, storeErr("load order", "order", err)
	}
	return o, nil
}

// List pages through invoices, newest first.
func (s *BillingService) List(ctx context.Context, p *Principal, f repository.OrderFilter) ([]model.Order, int, error) {
	if err := Authorize(p, CapBillingManage); err != nil {
		return nil, 0, err
	}
	if f.PaymentStatus != "" && !model.ValidOrderPayment(f.PaymentStatus) {
		return nil, 0, apperr.Validation("invalid paymentStatus %q", f.PaymentStatus)
	}
	out, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal("list orders", err)
	}
	return out, total, nil
}

// Update applies the allow-listed fields. A percentage change recomputes
// the totals from the frozen line items.
func (s *BillingService) Update(ctx context.Context, p *Principal, id uint64, patch BillPatch) (model.Order, error) {
	if err := Authorize(p, CapBillingManage); err != nil {
		return model.Order{}, err
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return model.Order{}, storeErr("load order", "order", err)
	}
	if patch.GSTPercentage != nil || patch.DiscountPercentage != nil {
		gst, err := percentage("gstPercentage", patch.GSTPercentage, o.GSTPercentage)
		if err != nil {
			return model.Order{}, err
		}
		disc, err := percentage("discountPercentage", patch.DiscountPercentage, o.DiscountPercentage)
		if err != nil {
			return model.Order{}, err
		}
		o.Totals = o.Totals.Recompute(gst, disc)
	}
	if patch.PaymentStatus != nil {
		if !model.ValidOrderPayment(*patch.PaymentStatus) {
			return model.Order{}, apperr.Validation("invalid paymentStatus %q", *patch.PaymentStatus)
		}
		o.PaymentStatus = *patch.PaymentStatus
	}
	if patch.PaymentMethod != nil {
		if !model.ValidPaymentMethod(*patch.PaymentMethod) {
			return model.Order{}, apperr.Validation("invalid paymentMethod %q", *patch.PaymentMethod)
		}
		o.PaymentMethod = *patch.PaymentMethod
	}
	if patch.PaymentReference != nil {
		o.PaymentReference = strings.TrimSpace(*patch.PaymentReference)
	}
	if patch.BillNotes != nil {
		o.BillNotes = strings.TrimSpace(*patch.BillNotes)
	}
	o.UpdatedBy = ownerID(p)
	if err := s.orders.Update(ctx, o); err != nil {
		return model.Order{}, storeErr("update order", "order", err)
	}
	s.events.emit(ctx, orderEvent(queue.InvoiceUpdated, o, p))
	return s.orders.GetByID(ctx, id)
}

// Delete removes an invoice. The booking it came from can be billed
// again afterwards.
func (s *BillingService) Delete(ctx context.Context, p *Principal, id uint64) error {
	if err := Authorize(p, CapBillingManage); err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return storeErr("delete order", "order", err)
	}
	return nil
}

// PrintableBill reshapes an invoice for display.
func (s *BillingService) PrintableBill(ctx context.Context, p *Principal, id uint64) (model.Bill, error) {
	o, err := s.Get(ctx, p, id)
	if err != nil {
		return model.Bill{}, err
	}
	return o.PrintableBill(s.now()), nil
}

type BillingStats struct {
	TotalOrders   int             `json:"totalOrders"`
	PendingOrders int             `json:"pendingOrders"`
	PaidOrders    int             `json:"paidOrders"`
	TodayOrders   int             `json:"todayOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TodayRevenue  decimal.Decimal `json:"todayRevenue"`
}

// Stats counts invoices. Revenue only includes paid invoices; "today" is
// the current bill day.
func (s *BillingService) Stats(ctx context.Context, p *Principal) (BillingStats, error) {
	if err := Authorize(p, CapBillingManage); err != nil {
		return BillingStats{}, err
	}
	all, err := s.orders.PaymentTotals(ctx, nil)
	if err != nil {
		return BillingStats{}, apperr.Internal("count orders", err)
	}
	today := model.DateOf(s.now().In(s.loc))
	daily, err := s.orders.PaymentTotals(ctx, &today)
	if err != nil {
		return BillingStats{}, apperr.Internal("count orders", err)
	}
	paid := string(model.PaymentPaid)
	st := BillingStats{
		TotalOrders:   countAll(all),
		PendingOrders: group(all, string(model.PaymentPending)).Count,
		PaidOrders:    group(all, paid).Count,
		TodayOrders:   countAll(daily),
		TotalRevenue:  group(all, paid).Amount,
		TodayRevenue:  group(daily, paid).Amount,
	}
	return st, nil
}
