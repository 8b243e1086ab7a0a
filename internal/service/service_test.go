package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hospitality-reservation/internal/logger"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/queue"
	"github.com/iliyamo/hospitality-reservation/internal/repository/memory"
)

type recorder struct {
	mu     sync.Mutex
	events []queue.Event
}

func (r *recorder) Publish(_ context.Context, ev queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type env struct {
	st         Stores
	events     *recorder
	restaurant *RestaurantService
	hotel      *HotelService
	billing    *BillingService
	inventory  *InventoryService
	dashboard  *DashboardService
	admin      *Principal
	alice      *Principal
	bob        *Principal
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := MemoryStores(memory.New())
	log := logger.Discard()
	rec := &recorder{}
	checker := NewChecker(st)
	e := &env{
		st:         st,
		events:     rec,
		restaurant: NewRestaurantService(st, checker, rec, log),
		hotel:      NewHotelService(st, checker, rec, log),
		billing:    NewBillingService(st, nil, rec, log),
		inventory:  NewInventoryService(st),
		dashboard:  NewDashboardService(st),
	}
	e.admin = e.user(t, "admin@example.com", "Admin", model.RoleCustomer, model.RoleAdmin)
	e.alice = e.user(t, "alice@example.com", "Alice", model.RoleCustomer)
	e.bob = e.user(t, "bob@example.com", "Bob", model.RoleCustomer)
	return e
}

func (e *env) user(t *testing.T, email, name string, roles ...model.Role) *Principal {
	t.Helper()
	u := model.User{Email: email, FullName: name, Phone: "555-0100", Roles: roles, IsActive: true}
	require.NoError(t, e.st.Users.Create(context.Background(), &u))
	return NewPrincipal(u)
}

func (e *env) table(t *testing.T, number string, capacity int) model.Table {
	t.Helper()
	tbl := model.Table{TableNumber: number, Capacity: capacity, Location: "indoor", IsActive: true}
	require.NoError(t, e.st.Tables.Create(context.Background(), &tbl))
	return tbl
}

func (e *env) room(t *testing.T, number string, capacity int, price int64) model.Room {
	t.Helper()
	r := model.Room{RoomNumber: number, RoomType: "double", Capacity: capacity,
		PricePerNight: decimal.NewFromInt(price), IsActive: true, IsAvailable: true}
	require.NoError(t, e.st.Rooms.Create(context.Background(), &r))
	return r
}

func (e *env) dish(t *testing.T, name string, price string) model.MenuItem {
	t.Helper()
	m := model.MenuItem{Name: name, Price: decimal.RequireFromString(price), Category: "main_course",
		DietaryOptions: []string{"vegetarian"}, IsActive: true}
	require.NoError(t, e.st.Menu.Create(context.Background(), &m))
	return m
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ptr[T any](v T) *T { return &v }
