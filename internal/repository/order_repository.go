package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
)

// OrderRepo persists invoices and their frozen line items.
type OrderRepo struct{ db Conn }

func NewOrderRepo(db Conn) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id,booking_id,customer_id,customer_name,customer_email,customer_phone,table_number,party_size,subtotal,
discount_percentage,discount_amount,gst_percentage,gst_amount,total_amount,payment_status,payment_method,payment_reference,
bill_number,bill_date,bill_notes,created_by,updated_by,created_at,updated_at`

func scanOrder(row interface{ Scan(...any) error }) (model.Order, error) {
	var (
		o                   model.Order
		customer, updatedBy sql.NullInt64
		payStatus, method   string
	)
	err := row.Scan(&o.ID, &o.BookingID, &customer, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.TableNumber, &o.PartySize, &o.Subtotal, &o.DiscountPercentage, &o.DiscountAmount, &o.GSTPercentage,
		&o.GSTAmount, &o.TotalAmount, &payStatus, &method, &o.PaymentReference, &o.BillNumber, &o.BillDate,
		&o.BillNotes, &o.CreatedBy, &updatedBy, &o.CreatedAt, &o.UpdatedAt)
	o.CustomerID = nullID(customer)
	o.UpdatedBy = nullID(updatedBy)
	o.PaymentStatus = model.PaymentStatus(payStatus)
	o.PaymentMethod = model.PaymentMethod(method)
	o.Items = []model.OrderItem{}
	return o, err
}

// CreateWithBillNumber allocates the next bill number of day and inserts
// o in the same transaction. The per-day counter row is locked by the
// upsert until commit, so concurrent callers get distinct, increasing
// numbers. A second invoice for the same booking fails with ErrDuplicate.
func (r *OrderRepo) CreateWithBillNumber(ctx context.Context, o *model.Order, day time.Time) error {
	now := time.Now().UTC().Truncate(time.Second)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO bill_sequences (bill_day,last_seq) VALUES (?, LAST_INSERT_ID(1))
			 ON DUPLICATE KEY UPDATE last_seq=LAST_INSERT_ID(last_seq+1)`, sqlDate(day))
		if err != nil {
			return err
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return err
		}
		o.BillNumber = model.FormatBillNumber(day, int(seq))
		o.BillDate = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

		res, err = tx.ExecContext(ctx,
			`INSERT INTO orders (booking_id,customer_id,customer_name,customer_email,customer_phone,table_number,party_size,
			 subtotal,discount_percentage,discount_amount,gst_percentage,gst_amount,total_amount,payment_status,payment_method,
			 payment_reference,bill_number,bill_date,bill_notes,created_by,updated_by,created_at,updated_at)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			o.BookingID, o.CustomerID, o.Customer.Name, o.Customer.Email, o.Customer.Phone, o.TableNumber, o.PartySize,
			o.Subtotal, o.DiscountPercentage, o.DiscountAmount, o.GSTPercentage, o.GSTAmount, o.TotalAmount,
			string(o.PaymentStatus), string(o.PaymentMethod), o.PaymentReference, o.BillNumber, sqlDate(o.BillDate),
			o.BillNotes, o.CreatedBy, o.UpdatedBy, now, now)
		if err != nil {
			return translate(err, ErrDuplicate)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		o.ID = uint64(id)
		if err := insertOrderItemsTx(ctx, tx, o.ID, o.Items); err != nil {
			return err
		}
		o.CreatedAt, o.UpdatedAt = now, now
		return nil
	})
}

func insertOrderItemsTx(ctx context.Context, tx *sql.Tx, orderID uint64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	query := "INSERT INTO order_items (order_id,position,item_id,item_name,quantity,unit_price,total_price,category,dietary_options) VALUES "
	args := make([]any, 0, len(items)*9)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,?,?,?,?,?)"
		args = append(args, orderID, i, it.ItemID, it.ItemName, it.Quantity, it.UnitPrice, it.TotalPrice,
			it.Category, encodeList(it.DietaryOptions))
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	return r.getOne(ctx, "id=?", id)
}

// GetByBookingID returns the invoice issued for a restaurant booking.
func (r *OrderRepo) GetByBookingID(ctx context.Context, bookingID uint64) (model.Order, error) {
	return r.getOne(ctx, "booking_id=?", bookingID)
}

func (r *OrderRepo) getOne(ctx context.Context, where string, arg any) (model.Order, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return model.Order{}, err
	}
	o, err := scanOrder(db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE "+where, arg))
	if err != nil {
		return model.Order{}, translate(err, ErrDuplicate)
	}
	items, err := r.loadItems(ctx, db, []uint64{o.ID})
	if err != nil {
		return model.Order{}, err
	}
	if it, ok := items[o.ID]; ok {
		o.Items = it
	}
	return o, nil
}

func (r *OrderRepo) loadItems(ctx context.Context, q queryer, ids []uint64) (map[uint64][]model.OrderItem, error) {
	out := make(map[uint64][]model.OrderItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx,
		`SELECT order_id,item_id,item_name,quantity,unit_price,total_price,category,dietary_options FROM order_items
		 WHERE order_id IN (`+placeholders(len(ids))+`) ORDER BY order_id, position`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			oid     uint64
			it      model.OrderItem
			dietary []byte
		)
		if err := rows.Scan(&oid, &it.ItemID, &it.ItemName, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.Category, &dietary); err != nil {
			return nil, err
		}
		it.DietaryOptions = decodeList(dietary)
		out[oid] = append(out[oid], it)
	}
	return out, rows.Err()
}

// List returns one page of invoices, newest first, and the total number
// of matches.
func (r *OrderRepo) List(ctx context.Context, f OrderFilter) ([]model.Order, int, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, 0, err
	}
	var (
		where []string
		args  []any
	)
	if f.PaymentStatus != "" {
		where = append(where, "payment_status=?")
		args = append(args, string(f.PaymentStatus))
	}
	if s := strings.TrimSpace(f.CustomerName); s != "" {
		where = append(where, "LOWER(customer_name) LIKE ?")
		args = append(args, "%"+likeEscape(strings.ToLower(s))+"%")
	}
	if s := strings.TrimSpace(f.BillNumber); s != "" {
		where = append(where, "LOWER(bill_number) LIKE ?")
		args = append(args, "%"+likeEscape(strings.ToLower(s))+"%")
	}
	if f.From != nil {
		where = append(where, "bill_date>=?")
		args = append(args, sqlDate(*f.From))
	}
	if f.To != nil {
		where = append(where, "bill_date<=?")
		args = append(args, sqlDate(*f.To))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}
	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := "SELECT " + orderColumns + " FROM orders" + cond + " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset())
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.Order{}
	var ids []uint64
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	items, err := r.loadItems(ctx, db, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		if it, ok := items[out[i].ID]; ok {
			out[i].Items = it
		}
	}
	return out, total, nil
}

func likeEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Update writes the mutable invoice fields. Line items, customer block
// and bill number are frozen.
func (r *OrderRepo) Update(ctx context.Context, o model.Order) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "orders", o.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE orders SET subtotal=?, discount_percentage=?, discount_amount=?, gst_percentage=?, gst_amount=?,
			 total_amount=?, payment_status=?, payment_method=?, payment_reference=?, bill_notes=?, updated_by=? WHERE id=?`,
			o.Subtotal, o.DiscountPercentage, o.DiscountAmount, o.GSTPercentage, o.GSTAmount, o.TotalAmount,
			string(o.PaymentStatus), string(o.PaymentMethod), o.PaymentReference, o.BillNotes, o.UpdatedBy, o.ID)
		return err
	})
}

func (r *OrderRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, "orders", id)
}
