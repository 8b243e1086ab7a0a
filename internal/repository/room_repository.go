package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
)

// RoomRepo provides CRUD operations for hotel rooms.
type RoomRepo struct{ db Conn }

func NewRoomRepo(db Conn) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = "id,room_number,room_type,floor,capacity,price_per_night,amenities,view_type,bed_type,is_active,is_available,maintenance_notes,created_at,updated_at"

func scanRoom(row interface{ Scan(...any) error }) (model.Room, error) {
	var (
		m         model.Room
		amenities []byte
	)
	err := row.Scan(&m.ID, &m.RoomNumber, &m.RoomType, &m.Floor, &m.Capacity, &m.PricePerNight, &amenities,
		&m.ViewType, &m.BedType, &m.IsActive, &m.IsAvailable, &m.MaintenanceNotes, &m.CreatedAt, &m.UpdatedAt)
	m.Amenities = decodeList(amenities)
	return m, err
}

func (r *RoomRepo) Create(ctx context.Context, m *model.Room) error {
	db, err := r.db.Get(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := db.ExecContext(ctx,
		`INSERT INTO rooms (room_number,room_type,floor,capacity,price_per_night,amenities,view_type,bed_type,is_active,is_available,maintenance_notes,created_at,updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.RoomNumber, m.RoomType, m.Floor, m.Capacity, m.PricePerNight, encodeList(m.Amenities), m.ViewType, m.BedType,
		m.IsActive, m.IsAvailable, m.MaintenanceNotes, now, now)
	if err != nil {
		return translate(err, ErrDuplicate)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID, m.CreatedAt, m.UpdatedAt = uint64(id), now, now
	return nil
}

func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return model.Room{}, err
	}
	m, err := scanRoom(db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id=?", id))
	if err != nil {
		return model.Room{}, translate(err, ErrDuplicate)
	}
	return m, nil
}

// List returns rooms ordered by nightly price then number.
func (r *RoomRepo) List(ctx context.Context, f RoomFilter) ([]model.Room, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	var (
		where []string
		args  []any
	)
	if f.RoomType != "" {
		where = append(where, "room_type=?")
		args = append(args, f.RoomType)
	}
	if f.MinCapacity > 0 {
		where = append(where, "capacity>=?")
		args = append(args, f.MinCapacity)
	}
	if f.BookableOnly {
		where = append(where, "is_active=1 AND is_available=1")
	}
	q := "SELECT " + roomColumns + " FROM rooms"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY price_per_night, room_number"
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Room{}
	for rows.Next() {
		m, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *RoomRepo) Update(ctx context.Context, m model.Room) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "rooms", m.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE rooms SET room_number=?, room_type=?, floor=?, capacity=?, price_per_night=?, amenities=?,
			 view_type=?, bed_type=?, is_active=?, is_available=?, maintenance_notes=? WHERE id=?`,
			m.RoomNumber, m.RoomType, m.Floor, m.Capacity, m.PricePerNight, encodeList(m.Amenities),
			m.ViewType, m.BedType, m.IsActive, m.IsAvailable, m.MaintenanceNotes, m.ID)
		return translate(err, ErrDuplicate)
	})
}

// Delete removes the room. Nights claimed by active stays reference the
// room, so a booked room fails with ErrInUse.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, "rooms", id)
}
