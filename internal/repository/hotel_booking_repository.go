package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
)

// HotelBookingRepo persists hotel bookings. A non-terminal booking claims
// one room_night_claims row per night of its stay, so overlapping stays
// on the same room collide on the (room_id, night) primary key.
type HotelBookingRepo struct{ db Conn }

func NewHotelBookingRepo(db Conn) *HotelBookingRepo { return &HotelBookingRepo{db: db} }

const hotelColumns = `id,customer_id,guest_name,guest_email,guest_phone,room_id,check_in_date,check_out_date,number_of_guests,
total_price,status,payment_status,payment_method,booking_source,special_requests,notes,created_at,updated_at`

func scanHotelBooking(row interface{ Scan(...any) error }) (model.HotelBooking, error) {
	var (
		b                         model.HotelBooking
		customer                  sql.NullInt64
		status, payStatus, method string
	)
	err := row.Scan(&b.ID, &customer, &b.Guest.Name, &b.Guest.Email, &b.Guest.Phone, &b.RoomID, &b.CheckInDate,
		&b.CheckOutDate, &b.NumberOfGuests, &b.TotalPrice, &status, &payStatus, &method, &b.BookingSource,
		&b.SpecialRequests, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	b.CustomerID = nullID(customer)
	b.Status = model.BookingStatus(status)
	b.PaymentStatus = model.PaymentStatus(payStatus)
	b.PaymentMethod = model.PaymentMethod(method)
	return b, err
}

// Create inserts b and claims its nights when it is non-terminal.
func (r *HotelBookingRepo) Create(ctx context.Context, b *model.HotelBooking) error {
	now := time.Now().UTC().Truncate(time.Second)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO hotel_bookings (customer_id,guest_name,guest_email,guest_phone,room_id,check_in_date,check_out_date,
			 number_of_guests,total_price,status,payment_status,payment_method,booking_source,special_requests,notes,created_at,updated_at)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			b.CustomerID, b.Guest.Name, b.Guest.Email, b.Guest.Phone, b.RoomID, sqlDate(b.CheckInDate), sqlDate(b.CheckOutDate),
			b.NumberOfGuests, b.TotalPrice, string(b.Status), string(b.PaymentStatus), string(b.PaymentMethod),
			b.BookingSource, b.SpecialRequests, b.Notes, now, now)
		if err != nil {
			return translate(err, ErrDuplicate)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		b.ID = uint64(id)
		if err := r.claimTx(ctx, tx, *b); err != nil {
			return err
		}
		b.CreatedAt, b.UpdatedAt = now, now
		return nil
	})
}

// claimTx inserts one claim row per night in a single statement.
func (r *HotelBookingRepo) claimTx(ctx context.Context, tx *sql.Tx, b model.HotelBooking) error {
	if !b.Status.IsActive() {
		return nil
	}
	nights := b.Stay().EachNight()
	if len(nights) == 0 {
		return nil
	}
	query := "INSERT INTO room_night_claims (room_id,night,booking_id) VALUES "
	args := make([]any, 0, len(nights)*3)
	for i, n := range nights {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?)"
		args = append(args, b.RoomID, sqlDate(n), b.ID)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return translate(err, ErrSlotTaken)
}

func (r *HotelBookingRepo) GetByID(ctx context.Context, id uint64) (model.HotelBooking, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return model.HotelBooking{}, err
	}
	b, err := scanHotelBooking(db.QueryRowContext(ctx, "SELECT "+hotelColumns+" FROM hotel_bookings WHERE id=?", id))
	if err != nil {
		return model.HotelBooking{}, translate(err, ErrDuplicate)
	}
	return b, nil
}

// List returns one page of bookings ordered by check-in, latest first,
// and the total number of matches.
func (r *HotelBookingRepo) List(ctx context.Context, f BookingFilter) ([]model.HotelBooking, int, error) {
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
		where = append(where, "check_in_date>=?")
		args = append(args, sqlDate(*f.From))
	}
	if f.To != nil {
		where = append(where, "check_in_date<=?")
		args = append(args, sqlDate(*f.To))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}
	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hotel_bookings"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := "SELECT " + hotelColumns + " FROM hotel_bookings" + cond + " ORDER BY check_in_date DESC, id DESC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset())
	}
	out, err := r.query(ctx, db, q, args...)
	return out, total, err
}

// ActiveOverlapping returns the non-terminal bookings whose stay overlaps
// [in, out). A zero roomID matches every room.
func (r *HotelBookingRepo) ActiveOverlapping(ctx context.Context, roomID uint64, in, out time.Time) ([]model.HotelBooking, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	q := "SELECT " + hotelColumns + " FROM hotel_bookings WHERE status IN " + activeStatusSQL +
		" AND check_in_date < ? AND check_out_date > ?"
	args := append(activeStatusArgs(), sqlDate(out), sqlDate(in))
	if roomID != 0 {
		q += " AND room_id=?"
		args = append(args, roomID)
	}
	return r.query(ctx, db, q+" ORDER BY check_in_date", args...)
}

func (r *HotelBookingRepo) query(ctx context.Context, q queryer, query string, args ...any) ([]model.HotelBooking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.HotelBooking{}
	for rows.Next() {
		b, err := scanHotelBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update overwrites b and re-claims its nights in one transaction.
func (r *HotelBookingRepo) Update(ctx context.Context, b model.HotelBooking) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "hotel_bookings", b.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE hotel_bookings SET guest_name=?, guest_email=?, guest_phone=?, room_id=?, check_in_date=?, check_out_date=?,
			 number_of_guests=?, total_price=?, status=?, payment_status=?, payment_method=?, booking_source=?,
			 special_requests=?, notes=? WHERE id=?`,
			b.Guest.Name, b.Guest.Email, b.Guest.Phone, b.RoomID, sqlDate(b.CheckInDate), sqlDate(b.CheckOutDate),
			b.NumberOfGuests, b.TotalPrice, string(b.Status), string(b.PaymentStatus), string(b.PaymentMethod),
			b.BookingSource, b.SpecialRequests, b.Notes, b.ID)
		if err != nil {
			return translate(err, ErrDuplicate)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM room_night_claims WHERE booking_id=?", b.ID); err != nil {
			return err
		}
		return r.claimTx(ctx, tx, b)
	})
}

func (r *HotelBookingRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, "hotel_bookings", id)
}
