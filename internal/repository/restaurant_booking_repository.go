package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
)

// RestaurantBookingRepo persists restaurant bookings, their pre-ordered
// items and the slot claim that a non-terminal booking holds on its
// (table, date, time). The claim is written in the same transaction as
// the booking, so two concurrent bookings for one slot cannot both
// commit: the loser gets ErrSlotTaken.
type RestaurantBookingRepo struct{ db Conn }

func NewRestaurantBookingRepo(db Conn) *RestaurantBookingRepo {
	return &RestaurantBookingRepo{db: db}
}

const restaurantColumns = `id,customer_id,customer_name,customer_email,customer_phone,party_size,booking_date,booking_time,
table_number,status,booking_type,special_requests,total_amount,notes,created_at,updated_at`

func scanRestaurantBooking(row interface{ Scan(...any) error }) (model.RestaurantBooking, error) {
	var (
		b        model.RestaurantBooking
		customer sql.NullInt64
		status   string
	)
	err := row.Scan(&b.ID, &customer, &b.Customer.Name, &b.Customer.Email, &b.Customer.Phone, &b.PartySize,
		&b.BookingDate, &b.BookingTime, &b.TableNumber, &status, &b.BookingType, &b.SpecialRequests,
		&b.TotalAmount, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	b.CustomerID = nullID(customer)
	b.Status = model.BookingStatus(status)
	b.OrderDetails = []model.OrderLine{}
	return b, err
}

// Create inserts b with its items and, when b is non-terminal, claims the
// slot.
func (r *RestaurantBookingRepo) Create(ctx context.Context, b *model.RestaurantBooking) error {
	now := time.Now().UTC().Truncate(time.Second)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO restaurant_bookings (customer_id,customer_name,customer_email,customer_phone,party_size,booking_date,
			 booking_time,table_number,status,booking_type,special_requests,total_amount,notes,created_at,updated_at)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			b.CustomerID, b.Customer.Name, b.Customer.Email, b.Customer.Phone, b.PartySize, sqlDate(b.BookingDate),
			b.BookingTime, b.TableNumber, string(b.Status), b.BookingType, b.SpecialRequests, b.TotalAmount, b.Notes, now, now)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		b.ID = uint64(id)
		if err := r.insertLinesTx(ctx, tx, b.ID, b.OrderDetails); err != nil {
			return err
		}
		if err := r.claimTx(ctx, tx, *b); err != nil {
			return err
		}
		b.CreatedAt, b.UpdatedAt = now, now
		return nil
	})
}

// insertLinesTx writes the order lines in a single statement.
func (r *RestaurantBookingRepo) insertLinesTx(ctx context.Context, tx *sql.Tx, bookingID uint64, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := "INSERT INTO restaurant_booking_items (booking_id,position,item_id,item_name,quantity,price,category,dietary_options) VALUES "
	args := make([]any, 0, len(lines)*8)
	for i, l := range lines {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,?,?,?,?)"
		args = append(args, bookingID, i, l.ItemID, l.ItemName, l.Quantity, l.Price, l.Category, encodeList(l.DietaryOptions))
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// claimTx takes the slot for an active booking. Terminal bookings hold
// no claim.
func (r *RestaurantBookingRepo) claimTx(ctx context.Context, tx *sql.Tx, b model.RestaurantBooking) error {
	if !b.Status.IsActive() {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		"INSERT INTO table_slot_claims (table_number,booking_date,booking_time,booking_id) VALUES (?,?,?,?)",
		b.TableNumber, sqlDate(b.BookingDate), b.BookingTime, b.ID)
	return translate(err, ErrSlotTaken)
}

func (r *RestaurantBookingRepo) GetByID(ctx context.Context, id uint64) (model.RestaurantBooking, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return model.RestaurantBooking{}, err
	}
	b, err := scanRestaurantBooking(db.QueryRowContext(ctx, "SELECT "+restaurantColumns+" FROM restaurant_bookings WHERE id=?", id))
	if err != nil {
		return model.RestaurantBooking{}, translate(err, ErrDuplicate)
	}
	lines, err := r.loadLines(ctx, db, []uint64{id})
	if err != nil {
		return model.RestaurantBooking{}, err
	}
	if l, ok := lines[id]; ok {
		b.OrderDetails = l
	}
	return b, nil
}

func (r *RestaurantBookingRepo) loadLines(ctx context.Context, q queryer, ids []uint64) (map[uint64][]model.OrderLine, error) {
	out := make(map[uint64][]model.OrderLine, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx,
		`SELECT booking_id,item_id,item_name,quantity,price,category,dietary_options FROM restaurant_booking_items
		 WHERE booking_id IN (`+placeholders(len(ids))+`) ORDER BY booking_id, position`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			bid     uint64
			l       model.OrderLine
			dietary []byte
		)
		if err := rows.Scan(&bid, &l.ItemID, &l.ItemName, &l.Quantity, &l.Price, &l.Category, &dietary); err != nil {
			return nil, err
		}
		l.DietaryOptions = decodeList(dietary)
		out[bid] = append(out[bid], l)
	}
	return out, rows.Err()
}

// List returns one page of bookings, newest visit first, and the total
// number of matches.
func (r *RestaurantBookingRepo) List(ctx context.Context, f BookingFilter) ([]model.RestaurantBooking, int, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, 0, err
	}
	var (
		where []string
		args  []any
	)
	if f.CustomerID != nil {
		where = append(where, "customer_id=?")
		args = append(args, *f.CustomerID)
	}
	if f.Status != "" {
		where = append(where, "status=?")
		args = append(args, string(f.Status))
	}
	if f.From != nil {
		where = append(where, "booking_date>=?")
		args = append(args, sqlDate(*f.From))
	}
	if f.To != nil {
		where = append(where, "booking_date<=?")
		args = append(args, sqlDate(*f.To))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}
	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM restaurant_bookings"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := "SELECT " + restaurantColumns + " FROM restaurant_bookings" + cond + " ORDER BY booking_date DESC, booking_time DESC, id DESC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset())
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.RestaurantBooking{}
	var ids []uint64
	for rows.Next() {
		b, err := scanRestaurantBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	lines, err := r.loadLines(ctx, db, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		if l, ok := lines[out[i].ID]; ok {
			out[i].OrderDetails = l
		}
	}
	return out, total, nil
}

// ActiveForSlot returns the non-terminal bookings at (date, slot) across
// all tables. Order lines are not loaded.
func (r *RestaurantBookingRepo) ActiveForSlot(ctx context.Context, date time.Time, slot string) ([]model.RestaurantBooking, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	args := append([]any{sqlDate(date), slot}, activeStatusArgs()...)
	rows, err := db.QueryContext(ctx,
		"SELECT "+restaurantColumns+" FROM restaurant_bookings WHERE booking_date=? AND booking_time=? AND status IN "+activeStatusSQL,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RestaurantBooking
	for rows.Next() {
		b, err := scanRestaurantBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update overwrites b and moves its slot claim. If the new slot is held
// by another booking the whole update is rolled back with ErrSlotTaken.
func (r *RestaurantBookingRepo) Update(ctx context.Context, b model.RestaurantBooking) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "restaurant_bookings", b.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE restaurant_bookings SET customer_name=?, customer_email=?, customer_phone=?, party_size=?, booking_date=?,
			 booking_time=?, table_number=?, status=?, booking_type=?, special_requests=?, total_amount=?, notes=? WHERE id=?`,
			b.Customer.Name, b.Customer.Email, b.Customer.Phone, b.PartySize, sqlDate(b.BookingDate), b.BookingTime,
			b.TableNumber, string(b.Status), b.BookingType, b.SpecialRequests, b.TotalAmount, b.Notes, b.ID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM restaurant_booking_items WHERE booking_id=?", b.ID); err != nil {
			return err
		}
		if err := r.insertLinesTx(ctx, tx, b.ID, b.OrderDetails); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM table_slot_claims WHERE booking_id=?", b.ID); err != nil {
			return err
		}
		return r.claimTx(ctx, tx, b)
	})
}

// Delete hard-deletes the booking; items and claim cascade.
func (r *RestaurantBookingRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, "restaurant_bookings", id)
}
