package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

type TableRepo struct{ s *state }

func cloneTable(t model.Table) model.Table {
	t.Features = copyStrings(t.Features)
	return t
}

func (r *TableRepo) numberTaken(number string, except uint64) bool {
	for id, t := range r.s.tables {
		if id != except && t.TableNumber == number {
			return true
		}
	}
	return false
}

// tableClaimed reports whether any active booking holds a slot on number.
func (s *state) tableClaimed(number string) bool {
	for k := range s.slots {
		if k.table == number {
			return true
		}
	}
	return false
}

func (r *TableRepo) Create(_ context.Context, t *model.Table) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.numberTaken(t.TableNumber, 0) {
		return repository.ErrDuplicate
	}
	t.ID = r.s.id()
	t.CreatedAt, t.UpdatedAt = now(), now()
	r.s.tables[t.ID] = cloneTable(*t)
	return nil
}

func (r *TableRepo) GetByID(_ context.Context, id uint64) (model.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tables[id]
	if !ok {
		return model.Table{}, repository.ErrNotFound
	}
	return cloneTable(t), nil
}

func (r *TableRepo) GetByNumber(_ context.Context, number string) (model.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	number = strings.TrimSpace(number)
	for _, t := range r.s.tables {
		if t.TableNumber == number {
			return cloneTable(t), nil
		}
	}
	return model.Table{}, repository.ErrNotFound
}

func (r *TableRepo) List(_ context.Context, f repository.TableFilter) ([]model.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Table{}
	for _, t := range r.s.tables {
		if f.Location != "" && t.Location != f.Location {
			continue
		}
		if t.Capacity < f.MinCapacity {
			continue
		}
		if f.ActiveOnly && !t.IsActive {
			continue
		}
		out = append(out, cloneTable(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity < out[j].Capacity
		}
		return out[i].TableNumber < out[j].TableNumber
	})
	return out, nil
}

func (r *TableRepo) Update(_ context.Context, t model.Table) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.tables[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if t.TableNumber != cur.TableNumber {
		if r.numberTaken(t.TableNumber, t.ID) {
			return repository.ErrDuplicate
		}
		if r.s.tableClaimed(cur.TableNumber) {
			return repository.ErrInUse
		}
	}
	t.CreatedAt, t.UpdatedAt = cur.CreatedAt, now()
	r.s.tables[t.ID] = cloneTable(t)
	return nil
}

func (r *TableRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tables[id]
	if !ok {
		return repository.ErrNotFound
	}
	if r.s.tableClaimed(t.TableNumber) {
		return repository.ErrInUse
	}
	delete(r.s.tables, id)
	return nil
}

type RoomRepo struct{ s *state }

func cloneRoom(m model.Room) model.Room {
	m.Amenities = copyStrings(m.Amenities)
	return m
}

func (r *RoomRepo) numberTaken(number string, except uint64) bool {
	for id, m := range r.s.rooms {
		if id != except && m.RoomNumber == number {
			return true
		}
	}
	return false
}

func (s *state) roomClaimed(id uint64) bool {
	for k := range s.nights {
		if k.room == id {
			return true
		}
	}
	return false
}

func (r *RoomRepo) Create(_ context.Context, m *model.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.numberTaken(m.RoomNumber, 0) {
		return repository.ErrDuplicate
	}
	m.ID = r.s.id()
	m.CreatedAt, m.UpdatedAt = now(), now()
	r.s.rooms[m.ID] = cloneRoom(*m)
	return nil
}

func (r *RoomRepo) GetByID(_ context.Context, id uint64) (model.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.rooms[id]
	if !ok {
		return model.Room{}, repository.ErrNotFound
	}
	return cloneRoom(m), nil
}

func (r *RoomRepo) List(_ context.Context, f repository.RoomFilter) ([]model.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Room{}
	for _, m := range r.s.rooms {
		if f.RoomType != "" && m.RoomType != f.RoomType {
			continue
		}
		if m.Capacity < f.MinCapacity {
			continue
		}
		if f.BookableOnly && !(m.IsActive && m.IsAvailable) {
			continue
		}
		out = append(out, cloneRoom(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].PricePerNight.Cmp(out[j].PricePerNight); c != 0 {
			return c < 0
		}
		return out[i].RoomNumber < out[j].RoomNumber
	})
	return out, nil
}

func (r *RoomRepo) Update(_ context.Context, m model.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.rooms[m.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if m.RoomNumber != cur.RoomNumber && r.numberTaken(m.RoomNumber, m.ID) {
		return repository.ErrDuplicate
	}
	m.CreatedAt, m.UpdatedAt = cur.CreatedAt, now()
	r.s.rooms[m.ID] = cloneRoom(m)
	return nil
}

func (r *RoomRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rooms[id]; !ok {
		return repository.ErrNotFound
	}
	if r.s.roomClaimed(id) {
		return repository.ErrInUse
	}
	delete(r.s.rooms, id)
	return nil
}

type MenuRepo struct{ s *state }

func cloneMenu(m model.MenuItem) model.MenuItem {
	m.DietaryOptions = copyStrings(m.DietaryOptions)
	return m
}

func (r *MenuRepo) Create(_ context.Context, m *model.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.id()
	m.CreatedAt, m.UpdatedAt = now(), now()
	r.s.menu[m.ID] = cloneMenu(*m)
	return nil
}

func (r *MenuRepo) GetByID(_ context.Context, id uint64) (model.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.menu[id]
	if !ok {
		return model.MenuItem{}, repository.ErrNotFound
	}
	return cloneMenu(m), nil
}

func (r *MenuRepo) GetMany(_ context.Context, ids []uint64) (map[uint64]model.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uint64]model.MenuItem, len(ids))
	for _, id := range ids {
		if m, ok := r.s.menu[id]; ok {
			out[id] = cloneMenu(m)
		}
	}
	return out, nil
}

func (r *MenuRepo) List(_ context.Context, f repository.MenuFilter) ([]model.MenuItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.MenuItem{}
	for _, m := range r.s.menu {
		if f.Category != "" && m.Category != f.Category {
			continue
		}
		if f.ActiveOnly && !m.IsActive {
			continue
		}
		out = append(out, cloneMenu(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *MenuRepo) Update(_ context.Context, m model.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.menu[m.ID]
	if !ok {
		return repository.ErrNotFound
	}
	m.CreatedAt, m.UpdatedAt = cur.CreatedAt, now()
	r.s.menu[m.ID] = cloneMenu(m)
	return nil
}

func (r *MenuRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.menu[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.menu, id)
	return nil
}
