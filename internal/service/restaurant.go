package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/queue"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

const (
	maxPartySize   = 20
	maxRequestsLen = 500
)

// RestaurantService books tables, optionally with a pre-order.
type RestaurantService struct {
	bookings RestaurantBookingStore
	tables   TableStore
	menu     MenuStore
	checker  *Checker
	events   notifier
	log      *slog.Logger
}

// NewRestaurantService wires the restaurant service to its stores and
// publisher.
func NewRestaurantService(st Stores, checker *Checker, pub EventPublisher, log *slog.Logger) *RestaurantService {
	return &RestaurantService{
		bookings: st.Restaurant,
		tables:   st.Tables,
		menu:     st.Menu,
		checker:  checker,
		events:   notifier{pub: pub, log: log},
		log:      log,
	}
}

type OrderItemInput struct {
	ItemID   uint64 `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type RestaurantBookingInput struct {
	CustomerName    string           `json:"customerName"`
	CustomerEmail   string           `json:"customerEmail"`
	CustomerPhone   string           `json:"customerPhone"`
	PartySize       int              `json:"partySize"`
	BookingDate     string           `json:"bookingDate"`
	BookingTime     string           `json:"bookingTime"`
	TableNumber     string           `json:"tableNumber"`
	BookingType     string           `json:"bookingType"`
	SpecialRequests string           `json:"specialRequests"`
	OrderDetails    []OrderItemInput `json:"orderDetails"`
	TotalAmount     *decimal.Decimal `json:"totalAmount"`
	Notes           string           `json:"notes"`
}

// RestaurantBookingPatch carries the fields an admin may change. Nil
// fields are left untouched.
type RestaurantBookingPatch struct {
	CustomerName    *string              `json:"customerName"`
	CustomerEmail   *string              `json:"customerEmail"`
	CustomerPhone   *string              `json:"customerPhone"`
	PartySize       *int                 `json:"partySize"`
	BookingDate     *string              `json:"bookingDate"`
	BookingTime     *string              `json:"bookingTime"`
	TableNumber     *string              `json:"tableNumber"`
	Status          *model.BookingStatus `json:"status"`
	BookingType     *string              `json:"bookingType"`
	SpecialRequests *string              `json:"specialRequests"`
	OrderDetails    *[]OrderItemInput    `json:"orderDetails"`
	TotalAmount     *decimal.Decimal     `json:"totalAmount"`
	Notes           *string              `json:"notes"`
}

// RestaurantCreated is the result of Create. DroppedItems lists the menu
// item ids that could not be resolved and were left out of the order.
type RestaurantCreated struct {
	Booking      model.RestaurantBooking `json:"booking"`
	DroppedItems []uint64                `json:"droppedItems,omitempty"`
}

// enrich snapshots menu data into order lines. Unknown item ids are
// dropped and returned.
func (s *RestaurantService) enrich(ctx context.Context, in []OrderItemInput) ([]model.OrderLine, []uint64, error) {
	if len(in) == 0 {
		return []model.OrderLine{}, nil, nil
	}
	ids := make([]uint64, 0, len(in))
	for _, it := range in {
		if it.Quantity < 1 {
			return nil, nil, apperr.Validation("order item quantity must be at least 1")
		}
		ids = append(ids, it.ItemID)
	}
	found, err := s.menu.GetMany(ctx, ids)
	if err != nil {
		return nil, nil, apperr.Internal("load menu items", err)
	}
	lines := make([]model.OrderLine, 0, len(in))
	var dropped []uint64
	for _, it := range in {
		m, ok := found[it.ItemID]
		if !ok {
			dropped = append(dropped, it.ItemID)
			continue
		}
		lines = append(lines, model.OrderLine{
			ItemID:         m.ID,
			ItemName:       m.Name,
			Quantity:       it.Quantity,
			Price:          m.Price,
			Category:       m.Category,
			DietaryOptions: m.DietaryOptions,
		})
	}
	return lines, dropped, nil
}

func orderTotal(lines []model.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total.Round(2)
}

func validPartySize(n int) error {
	if n < 1 || n > maxPartySize {
		return apperr.Validation("partySize must be between 1 and %d", maxPartySize)
	}
	return nil
}

// Create books a table. p may be nil for a guest booking.
func (s *RestaurantService) Create(ctx context.Context, p *Principal, in RestaurantBookingInput) (RestaurantCreated, error) {
	if p != nil {
		if err := Authorize(p, CapBookingCreate); err != nil {
			return RestaurantCreated{}, err
		}
	}
	contact, err := resolveContact(p, in.CustomerName, in.CustomerEmail, in.CustomerPhone)
	if err != nil {
		return RestaurantCreated{}, err
	}
	if err := validPartySize(in.PartySize); err != nil {
		return RestaurantCreated{}, err
	}
	date, err := parseDate("bookingDate", in.BookingDate)
	if err != nil {
		return RestaurantCreated{}, err
	}
	slot, err := parseSlot(in.BookingTime)
	if err != nil {
		return RestaurantCreated{}, err
	}
	number := strings.TrimSpace(in.TableNumber)
	if number == "" {
		return RestaurantCreated{}, apperr.Validation("tableNumber is required")
	}
	kind := strings.TrimSpace(in.BookingType)
	if kind == "" {
		kind = "table"
	}
	if !model.OneOf(kind, model.BookingTypes) {
		return RestaurantCreated{}, apperr.Validation("bookingType must be one of %s", strings.Join(model.BookingTypes, ", "))
	}
	if in.TotalAmount != nil && in.TotalAmount.IsNegative() {
		return RestaurantCreated{}, apperr.Validation("totalAmount cannot be negative")
	}
	if len(in.SpecialRequests) > maxRequestsLen {
		return RestaurantCreated{}, apperr.Validation("specialRequests cannot exceed %d characters", maxRequestsLen)
	}

	table, avail, err := s.checker.table(ctx, number, date, slot, 0)
	if err != nil {
		return RestaurantCreated{}, err
	}
	if !avail.Available {
		return RestaurantCreated{}, unavailable("table "+number, avail)
	}
	if in.PartySize > table.Capacity {
		return RestaurantCreated{}, apperr.Validation("party of %d exceeds the capacity of table %s (%d)", in.PartySize, number, table.Capacity)
	}

	lines, dropped, err := s.enrich(ctx, in.OrderDetails)
	if err != nil {
		return RestaurantCreated{}, err
	}
	total := orderTotal(lines)
	if in.TotalAmount != nil {
		total = in.TotalAmount.Round(2)
	}

	b := model.RestaurantBooking{
		CustomerID:      ownerID(p),
		Customer:        contact,
		PartySize:       in.PartySize,
		BookingDate:     date,
		BookingTime:     slot,
		TableNumber:     table.TableNumber,
		Status:          model.StatusPending,
		BookingType:     kind,
		SpecialRequests: strings.TrimSpace(in.SpecialRequests),
		OrderDetails:    lines,
		TotalAmount:     total,
		Notes:           strings.TrimSpace(in.Notes),
	}
	if err := s.bookings.Create(ctx, &b); err != nil {
		return RestaurantCreated{}, storeErr("create restaurant booking", "table "+number, err)
	}
	if len(dropped) > 0 {
		s.log.Warn("unresolved menu items dropped from booking", "booking_id", b.ID, "item_ids", dropped)
	}
	s.events.emit(ctx, restaurantEvent(queue.BookingCreated, b, p))
	b.Table = table.Summary()
	return RestaurantCreated{Booking: b, DroppedItems: dropped}, nil
}

func restaurantEvent(typ string, b model.RestaurantBooking, p *Principal) queue.Event {
	return queue.Event{
		Type:     typ,
		Kind:     string(model.KindRestaurant),
		EntityID: b.ID,
		ActorID:  actorID(p),
		Resource: b.TableNumber,
		Status:   string(b.Status),
		Amount:   b.TotalAmount.StringFixed(2),
	}
}

// List returns every booking for managers and only the caller's own
// bookings otherwise. Anonymous callers are rejected.
func (s *RestaurantService) List(ctx context.Context, p *Principal, f repository.BookingFilter) ([]model.RestaurantBooking, int, error) {
	owner, err := ownerFilter(p)
	if err != nil {
		return nil, 0, err
	}
	f.CustomerID = owner
	out, total, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal("list restaurant bookings", err)
	}
	if err := s.withTables(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// withTables attaches the table summary to each booking with one table
// query. A booking whose table was removed keeps a nil summary.
func (s *RestaurantService) withTables(ctx context.Context, bs []model.RestaurantBooking) error {
	if len(bs) == 0 {
		return nil
	}
	tables, err := s.tables.List(ctx, repository.TableFilter{})
	if err != nil {
		return apperr.Internal("list tables", err)
	}
	byNumber := make(map[string]model.Table, len(tables))
	for _, t := range tables {
		byNumber[t.TableNumber] = t
	}
	for i := range bs {
		if t, ok := byNumber[bs[i].TableNumber]; ok {
			bs[i].Table = t.Summary()
		}
	}
	return nil
}

func (s *RestaurantService) withTable(ctx context.Context, b model.RestaurantBooking) (model.RestaurantBooking, error) {
	t, err := s.tables.GetByNumber(ctx, b.TableNumber)
	switch {
	case err == nil:
		b.Table = t.Summary()
	case !errors.Is(err, repository.ErrNotFound):
		return model.RestaurantBooking{}, apperr.Internal("load table", err)
	}
	return b, nil
}

// ListByDateRange returns bookings whose date lies in [start, end],
// earliest first, under the same visibility rules as List.
func (s *RestaurantService) ListByDateRange(ctx context.Context, p *Principal, start, end string) ([]model.RestaurantBooking, error) {
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
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].BookingDate.Equal(out[j].BookingDate) {
			return out[i].BookingDate.Before(out[j].BookingDate)
		}
		return out[i].BookingTime < out[j].BookingTime
	})
	return out, nil
}

// Get returns one booking to its owner or to staff.
func (s *RestaurantService) Get(ctx context.Context, p *Principal, id uint64) (model.RestaurantBooking, error) {
	if err := Authorize(p, CapBookingReadOwn); err != nil {
		return model.RestaurantBooking{}, err
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return model.RestaurantBooking{}, storeErr("load restaurant booking", "booking", err)
	}
	if !p.Can(CapBookingManage) && !b.OwnedBy(p.UserID) {
		return model.RestaurantBooking{}, apperr.Authorization("access denied")
	}
	return s.withTable(ctx, b)
}

// Update applies an admin patch. Status changes follow the restaurant
// lifecycle. A changed table, date or slot is re-checked excluding the
// booking itself, and the store moves the slot claim atomically.
func (s *RestaurantService) Update(ctx context.Context, p *Principal, id uint64, patch RestaurantBookingPatch) (model.RestaurantBooking, error) {
	if err := Authorize(p, CapBookingManage); err != nil {
		return model.RestaurantBooking{}, err
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return model.RestaurantBooking{}, storeErr("load restaurant booking", "booking", err)
	}
	moved := false

	if patch.Status != nil {
		to := *patch.Status
		if !model.ValidStatus(model.KindRestaurant, to) {
			return model.RestaurantBooking{}, apperr.Validation("invalid restaurant booking status %q", to)
		}
		if !model.CanTransition(model.KindRestaurant, b.Status, to) {
			return model.RestaurantBooking{}, apperr.Validation("cannot change status from %s to %s", b.Status, to)
		}
		b.Status = to
	}
	if patch.CustomerName != nil {
		b.Customer.Name = strings.TrimSpace(*patch.CustomerName)
	}
	if patch.CustomerEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.CustomerEmail))
		if email != "" && !validEmail(email) {
			return model.RestaurantBooking{}, apperr.Validation("customerEmail is not valid")
		}
		b.Customer.Email = email
	}
	if patch.CustomerPhone != nil {
		b.Customer.Phone = strings.TrimSpace(*patch.CustomerPhone)
	}
	if patch.PartySize != nil {
		if err := validPartySize(*patch.PartySize); err != nil {
			return model.RestaurantBooking{}, err
		}
		b.PartySize = *patch.PartySize
	}
	if patch.BookingDate != nil {
		d, err := parseDate("bookingDate", *patch.BookingDate)
		if err != nil {
			return model.RestaurantBooking{}, err
		}
		moved = moved || !d.Equal(b.BookingDate)
		b.BookingDate = d
	}
	if patch.BookingTime != nil {
		slot, err := parseSlot(*patch.BookingTime)
		if err != nil {
			return model.RestaurantBooking{}, err
		}
		moved = moved || slot != b.BookingTime
		b.BookingTime = slot
	}
	if patch.TableNumber != nil {
		n := strings.TrimSpace(*patch.TableNumber)
		if n == "" {
			return model.RestaurantBooking{}, apperr.Validation("tableNumber cannot be empty")
		}
		moved = moved || n != b.TableNumber
		b.TableNumber = n
	}
	if patch.BookingType != nil {
		if !model.OneOf(*patch.BookingType, model.BookingTypes) {
			return model.RestaurantBooking{}, apperr.Validation("bookingType must be one of %s", strings.Join(model.BookingTypes, ", "))
		}
		b.BookingType = *patch.BookingType
	}
	if patch.SpecialRequests != nil {
		if len(*patch.SpecialRequests) > maxRequestsLen {
			return model.RestaurantBooking{}, apperr.Validation("specialRequests cannot exceed %d characters", maxRequestsLen)
		}
		b.SpecialRequests = strings.TrimSpace(*patch.SpecialRequests)
	}
	if patch.Notes != nil {
		b.Notes = strings.TrimSpace(*patch.Notes)
	}
	if patch.OrderDetails != nil {
		lines, dropped, err := s.enrich(ctx, *patch.OrderDetails)
		if err != nil {
			return model.RestaurantBooking{}, err
		}
		if len(dropped) > 0 {
			s.log.Warn("unresolved menu items dropped from booking", "booking_id", b.ID, "item_ids", dropped)
		}
		b.OrderDetails = lines
		b.TotalAmount = orderTotal(lines)
	}
	if patch.TotalAmount != nil {
		if patch.TotalAmount.IsNegative() {
			return model.RestaurantBooking{}, apperr.Validation("totalAmount cannot be negative")
		}
		b.TotalAmount = patch.TotalAmount.Round(2)
	}

	if moved && b.Status.IsActive() {
		table, avail, err := s.checker.table(ctx, b.TableNumber, b.BookingDate, b.BookingTime, b.ID)
		if err != nil {
			return model.RestaurantBooking{}, err
		}
		if !avail.Available {
			return model.RestaurantBooking{}, unavailable("table "+b.TableNumber, avail)
		}
		if b.PartySize > table.Capacity {
			return model.RestaurantBooking{}, apperr.Validation("party of %d exceeds the capacity of table %s (%d)", b.PartySize, b.TableNumber, table.Capacity)
		}
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		return model.RestaurantBooking{}, storeErr("update restaurant booking", "table "+b.TableNumber, err)
	}
	s.events.emit(ctx, restaurantEvent(queue.BookingUpdated, b, p))
	updated, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return model.RestaurantBooking{}, storeErr("load restaurant booking", "booking", err)
	}
	return s.withTable(ctx, updated)
}

// Delete hard-deletes a booking and frees its slot.
func (s *RestaurantService) Delete(ctx context.Context, p *Principal, id uint64) error {
	if err := Authorize(p, CapBookingManage); err != nil {
		return err
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return storeErr("load restaurant booking", "booking", err)
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return storeErr("delete restaurant booking", "booking", err)
	}
	s.events.emit(ctx, restaurantEvent(queue.BookingDeleted, b, p))
	return nil
}

// TableSearch is the answer to an available-tables query.
type TableSearch struct {
	Date           string        `json:"date"`
	Time           string        `json:"time"`
	Available      []model.Table `json:"availableTables"`
	BookedTables   []string      `json:"bookedTables"`
	TotalAvailable int           `json:"totalAvailable"`
}

// AvailableTables lists active tables seating at least partySize that
// have no active booking at (date, slot), smallest first.
func (s *RestaurantService) AvailableTables(ctx context.Context, date, slot string, partySize int, location string) (TableSearch, error) {
	d, err := parseDate("date", date)
	if err != nil {
		return TableSearch{}, err
	}
	t, err := parseSlot(slot)
	if err != nil {
		return TableSearch{}, err
	}
	if partySize < 0 || partySize > maxPartySize {
		return TableSearch{}, apperr.Validation("partySize must be between 1 and %d", maxPartySize)
	}
	tables, err := s.tables.List(ctx, repository.TableFilter{Location: location, MinCapacity: partySize, ActiveOnly: true})
	if err != nil {
		return TableSearch{}, apperr.Internal("list tables", err)
	}
	active, err := s.bookings.ActiveForSlot(ctx, d, t)
	if err != nil {
		return TableSearch{}, apperr.Internal("scan table slot", err)
	}
	booked := map[string]bool{}
	res := TableSearch{Date: d.Format(dateLayout), Time: t, Available: []model.Table{}, BookedTables: []string{}}
	for _, b := range active {
		if !booked[b.TableNumber] {
			booked[b.TableNumber] = true
			res.BookedTables = append(res.BookedTables, b.TableNumber)
		}
	}
	sort.Strings(res.BookedTables)
	for _, tbl := range tables {
		if !booked[tbl.TableNumber] {
			res.Available = append(res.Available, tbl)
		}
	}
	res.TotalAvailable = len(res.Available)
	return res, nil
}
