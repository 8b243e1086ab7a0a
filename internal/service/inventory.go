package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

// InventoryService manages tables, rooms and menu items. Reads are public;
// writes need CapInventoryManage.
type InventoryService struct {
	tables TableStore
	rooms  RoomStore
	menu   MenuStore
}

// NewInventoryService manages tables, rooms and menu items in st.
func NewInventoryService(st Stores) *InventoryService {
	return &InventoryService{tables: st.Tables, rooms: st.Rooms, menu: st.Menu}
}

type TableInput struct {
	TableNumber *string   `json:"tableNumber"`
	Capacity    *int      `json:"capacity"`
	Location    *string   `json:"location"`
	Shape       *string   `json:"shape"`
	Features    *[]string `json:"features"`
	IsActive    *bool     `json:"isActive"`
	Notes       *string   `json:"notes"`
}

var tableShapes = []string{"round", "square", "rectangle", "oval", "semi_circle"}

func (in TableInput) apply(t *model.Table) error {
	if in.TableNumber != nil {
		t.TableNumber = strings.TrimSpace(*in.TableNumber)
	}
	if in.Capacity != nil {
		t.Capacity = *in.Capacity
	}
	if in.Location != nil {
		t.Location = *in.Location
	}
	if in.Shape != nil {
		t.Shape = *in.Shape
	}
	if in.Features != nil {
		t.Features = append([]string{}, (*in.Features)...)
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	if in.Notes != nil {
		t.Notes = strings.TrimSpace(*in.Notes)
	}
	switch {
	case t.TableNumber == "":
		return apperr.Validation("tableNumber is required")
	case t.Capacity < 1 || t.Capacity > maxPartySize:
		return apperr.Validation("capacity must be between 1 and %d", maxPartySize)
	case !model.OneOf(t.Location, model.TableLocations):
		return apperr.Validation("location must be one of %s", strings.Join(model.TableLocations, ", "))
	case t.Shape != "" && !model.OneOf(t.Shape, tableShapes):
		return apperr.Validation("shape must be one of %s", strings.Join(tableShapes, ", "))
	}
	if t.Features == nil {
		t.Features = []string{}
	}
	return nil
}

// CreateTable adds a table. Table numbers are unique.
func (s *InventoryService) CreateTable(ctx context.Context, p *Principal, in TableInput) (model.Table, error) {
	if err := Authorize(p, CapInventoryManage); err != nil {
		return model.Table{}, err
	}
	t := model.Table{Location: "indoor", IsActive: true}
	if err := in.apply(&t); err != nil {
		return model.Table{}, err
	}
	if err := s.tables.Create(ctx, &t); err != nil {
		return model.Table{}, storeErr("create table", "table "+t.TableNumber, err)
	}
	return t, nil
}

// GetTable is public.
func (s *InventoryService) GetTable(ctx context.Context, id uint64) (model.Table, error) {
	t, err := s.tables.GetByID(ctx, id)
	if err != nil {
		return model.Table{}, storeErr("load table", "table", err)
	}
	return t, nil
}

// ListTables is public.
func (s *InventoryService) ListTables(ctx context.Context, f repository.TableFilter) ([]model.Table, error) {
	out, err := s.tables.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("list tables", err)
	}
	return out, nil
}

// UpdateTable overwrites a table.
func (s *InventoryService) UpdateTable(ctx context.Context, p *Principal, id uint64, in TableInput) (model.Table, error) {
	if err := Authorize(p, CapInventoryManage); err != nil {
		return model.Table{}, err
	}
	t, err := s.tables.GetByID(ctx, id)
	if err != nil {
		return model.Table{}, storeErr("load table", "table", err)
	}
	if err := in.apply(&t); err != nil {
		return model.Table{}, err
	}
	if err := s.tables.Update(ctx, t); err != nil {
		return model.Table{}, storeErr("update table", "table "+t.TableNumber, err)
	}
	return s.tables.GetByID(ctx, id)
}

// DeleteTable fails with a conflict while an active booking holds the
// table.
func (s *InventoryService) DeleteTable(ctx context.Context, p *Principal, id uint64) error {
	if err := Authorize(p, CapInventoryManage); err != nil {
		return err
	}
	if err := s.tables.Delete(ctx, id); err != nil {
		return storeErr("delete table", "table", err)
	}
	return nil
}

type RoomInput struct {
	RoomNumber       *string          `json:"roomNumber"`
	RoomType         *string          `json:"roomType"`
	Floor            *int             `json:"floor"`
	Capacity         *int             `json:"capacity"`
	PricePerNight    *decimal.Decimal `json:"pricePerNight"`
	Amenities        *[]string        `json:"amenities"`
	ViewType         *string          `json:"viewType"`
	BedType          *string          `json:"bedType"`
	IsActive         *bool            `json:"isActive"`
	IsAvailable      *bool            `json:"isAvailable"`
	MaintenanceNotes *string          `json:"maintenanceNotes"`
}

func (in RoomInput) apply(r *model.Room) error {
	if in.RoomNumber != nil {
		r.RoomNumber = strings.TrimSpace(*in.RoomNumber)
	}
	if in.RoomType != nil {
		r.RoomType = *in.RoomType
	}
	if in.Floor != nil {
		r.Floor = *in.Floor
	}
	if in.Capacity != nil {
		r.Capacity = *in.Capacity
	}
	if in.PricePerNight != nil {
		r.PricePerNight = in.PricePerNight.Round(2)
	}
	if in.Amenities != nil {
		r.Amenities = append([]string{}, (*in.Amenities)...)
	}
	if in.ViewType != nil {
		r.ViewType = *in.ViewType
	}
	if in.BedType != nil {
		r.BedType = *in.BedType
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	if in.IsAvailable != nil {
		r.IsAvailable = *in.IsAvailable
	}
	if in.MaintenanceNotes != nil {
		r.MaintenanceNotes = strings.TrimSpace(*in.MaintenanceNotes)
	}
	switch {
	case r.RoomNumber == "":
		return apperr.Validation("roomNumber is required")
	case !model.OneOf(r.RoomType, model.RoomTypes):
		return apperr.Validation("roomType must be one of %s", strings.Join(model.RoomTypes, ", "))
	case r.Capacity < 1:
		return apperr.Validation("capacity must be at least 1")
	case r.PricePerNight.IsNegative():
		return apperr.Validation("pricePerNight cannot be negative")
	}
	if r.Amenities == nil {
		r.Amenities = []string{}
	}
	return nil
}

// CreateRoom adds a room. Room numbers are unique.
func (s *InventoryService) CreateRoom(ctx context.Context, p *Principal, in RoomInput) (model.Room, error) {
	if err := Authorize(p, CapInventoryManage); err != nil {
		return model.Room{}, err
	}
	r := model.Room{IsActive: true, IsAvailable: true}
	if err := in.apply(&r); err != nil {
		return model.Room{}, err
	}
	if err := s.rooms.Create(ctx, &r); err != nil {
		return model.Room{}, storeErr("create room", "room "+r.RoomNumber, err)
	}
	return r, nil
}

// GetRoom is public.
func (s *InventoryService) GetRoom(ctx context.Context, id uint64) (model.Room, error) {
	r, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return model.Room{}, storeErr("load room", "room", err)
	}
	return r, nil
}

// ListRooms is public.
func (s *InventoryService) ListRooms(ctx context.Context, f repository.RoomFilter) ([]model.Room, error) {
	out, err := s.rooms.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("list rooms", err)
	}
	return out, nil
}

// UpdateRoom overwrites a room.
func (s *InventoryService) UpdateRoom(ctx context.Context, p *Principal, id uint64, in RoomInput) (model.Room, error) {
	if err := Authorize(p, CapInventoryManage); err != nil {
		return model.Room{}, err
	}
	r, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return model.Room{}, storeErr("load room", "room", err)
	}
	if err := in.apply(&r); err != nil {
		return model.Room{}, err
	}
	if err := s.rooms.Update(ctx, r); err != nil {
		return model.Room{}, storeErr("update room", "room "+r.RoomNumber, err)
	}
	return s.rooms.GetByID(ctx, id)
}

// DeleteRoom fails with a conflict while an active stay holds the room.
func (s *InventoryService) DeleteRoom(ctx context.Context, p *Principal, id uint64) error {
	if err := Authorize(p, CapInventoryManage); err != nil {
		return err
	}
	if err := s.rooms.Delete(ctx, id); err != nil {
		return storeErr("delete room", "room", err)
	}
	return nil
}

type MenuItemInput struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	Category       *string          `json:"category"`
	DietaryOptions *[]string        `json:"dietaryOptions"`
	IsActive       *bool            `json:"isActive"`
}

func (in MenuItemInput) apply(m *model.MenuItem) error {
	if in.Name != nil {
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		m.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		m.Price = in.Price.Round(2)
	}
	if in.Category != nil {
		m.Category = *in.Category
	}
	if in.DietaryOptions != nil {
		m.DietaryOptions = append([]string{}, (*in.DietaryOptions)...)
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	switch {
	case m.Name == "":
		return apperr.Validation("name is required")
	case !m.Price.IsPositive():
		return apperr.Validation("price must be greater than 0")
	case !model.OneOf(m.Category, model.MenuCategories):
		return apperr.Validation("category must be one of %s", strings.Join(model.MenuCategories, ", "))
	}
	if m.DietaryOptions == nil {
		m.DietaryOptions = []string{}
	}
	return nil
}

// CreateMenuItem adds a dish.
func (s *InventoryService) CreateMenuItem(ctx context.Context, p *Principal, in MenuItemInput) (model.MenuItem, error) {
	if err := Authorize(p, CapInventoryManage); err != nil {
		return model.MenuItem{}, err
	}
	m := model.MenuItem{IsActive: true}
	if err := in.apply(&m); err != nil {
		return model.MenuItem{}, err
	}
	if err := s.menu.Create(ctx, &m); err != nil {
		return model.MenuItem{}, storeErr("create menu item", "menu item", err)
	}
	return m, nil
}

// GetMenuItem is public.
func (s *InventoryService) GetMenuItem(ctx context.Context, id uint64) (model.MenuItem, error) {
	m, err := s.menu.GetByID(ctx, id)
	if err != nil {
		return model.MenuItem{}, storeErr("load menu item", "menu item", err)
	}
	return m, nil
}

// ListMenu is public.
func (s *InventoryService) ListMenu(ctx context.Context, f repository.MenuFilter) ([]model.MenuItem, error) {
	out, err := s.menu.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("list menu", err)
	}
	return out, nil
}

// UpdateMenuItem overwrites a dish. Bookings and invoices that already
// reference it keep their copied name and price.
func (s *InventoryService) UpdateMenuItem(ctx context.Context, p *Principal, id uint64, in MenuItemInput) (model.MenuItem, error) {
	if err := Authorize(p, CapInventoryManage); err != nil {
		return model.MenuItem{}, err
	}
	m, err := s.menu.GetByID(ctx, id)
	if err != nil {
		return model.MenuItem{}, storeErr("load menu item", "menu item", err)
	}
	if err := in.apply(&m); err != nil {
		return model.MenuItem{}, err
	}
	if err := s.menu.Update(ctx, m); err != nil {
		return model.MenuItem{}, storeErr("update menu item", "menu item", err)
	}
	return s.menu.GetByID(ctx, id)
}

// DeleteMenuItem removes a dish.
func (s *InventoryService) DeleteMenuItem(ctx context.Context, p *Principal, id uint64) error {
	if err := Authorize(p, CapInventoryManage); err != nil {
		return err
	}
	if err := s.menu.Delete(ctx, id); err != nil {
		return storeErr("delete menu item", "menu item", err)
	}
	return nil
}
