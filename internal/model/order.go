package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is a frozen, priced invoice line.
type OrderItem struct {
	ItemID         uint64          `json:"itemId"`
	ItemName       string          `json:"itemName"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	Category       string          `json:"category"`
	DietaryOptions []string        `json:"dietaryOptions"`
}

// Order is the invoice derived from exactly one restaurant booking.
// Line items and customer details are frozen at creation; only the
// payment fields, notes and percentages change afterwards.
//
// Fields:
//
//	ID         – primary key identifier.
//	BookingID  – source restaurant booking, unique across orders.
//	Customer   – frozen contact block.
//	Items      – priced lines.
//	Totals     – subtotal, discount, tax and total.
//	BillNumber – BILL-YYYYMMDD-NNNN, unique and increasing per day.
//	CreatedBy  – staff member who issued the bill.
//	UpdatedBy  – last staff member to change it.
type Order struct {
	ID               uint64        `json:"id"`
	BookingID        uint64        `json:"bookingId"`
	CustomerID       *uint64       `json:"customerId,omitempty"`
	Customer         Contact       `json:"customer"`
	Items            []OrderItem   `json:"orderItems"`
	TableNumber      string        `json:"tableNumber"`
	PartySize        int           `json:"partySize"`
	Totals
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	PaymentMethod    PaymentMethod `json:"paymentMethod"`
	PaymentReference string        `json:"paymentReference,omitempty"`
	BillNumber       string        `json:"billNumber"`
	BillDate         time.Time     `json:"billDate"`
	BillNotes        string        `json:"billNotes,omitempty"`
	CreatedBy        uint64        `json:"createdBy"`
	UpdatedBy        *uint64       `json:"updatedBy,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// Totals holds the billing figures of an invoice. Amounts are rounded
// to two decimal places and always satisfy
// Total = Subtotal - DiscountAmount + GSTAmount.
type Totals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	GSTPercentage      decimal.Decimal `json:"gstPercentage"`
	GSTAmount          decimal.Decimal `json:"gstAmount"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
}

var hundred = decimal.NewFromInt(100)

// ComputeTotals prices items and applies discount then tax. Each line's
// TotalPrice is set in place.
func ComputeTotals(items []OrderItem, gstPct, discountPct decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for i := range items {
		items[i].TotalPrice = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity))).Round(2)
		subtotal = subtotal.Add(items[i].TotalPrice)
	}
	return applyRates(subtotal, gstPct, discountPct)
}

// Recompute refreshes the figures after a percentage change, reusing the
// frozen line totals.
func (t Totals) Recompute(gstPct, discountPct decimal.Decimal) Totals {
	return applyRates(t.Subtotal, gstPct, discountPct)
}

func applyRates(subtotal, gstPct, discountPct decimal.Decimal) Totals {
	discount := subtotal.Mul(discountPct).Div(hundred).Round(2)
	taxable := subtotal.Sub(discount)
	gst := taxable.Mul(gstPct).Div(hundred).Round(2)
	return Totals{
		Subtotal:           subtotal,
		DiscountPercentage: discountPct,
		DiscountAmount:     discount,
		GSTPercentage:      gstPct,
		GSTAmount:          gst,
		TotalAmount:        taxable.Add(gst),
	}
}

// BillPrefix returns the bill number prefix for a calendar day.
func BillPrefix(d time.Time) string {
	return "BILL-" + d.Format("20060102") + "-"
}

// FormatBillNumber renders the bill number for the seq-th bill of day d.
func FormatBillNumber(d time.Time, seq int) string {
	return fmt.Sprintf("%s%04d", BillPrefix(d), seq)
}

// Bill is the printable reshaping of an Order. Building it has no side
// effects.
type Bill struct {
	BillNumber   string      `json:"billNumber"`
	BillDate     time.Time   `json:"billDate"`
	Customer     Contact     `json:"customer"`
	TableNumber  string      `json:"tableNumber"`
	PartySize    int         `json:"partySize"`
	Items        []BillLine  `json:"items"`
	Calculations Totals      `json:"calculations"`
	Payment      BillPayment `json:"payment"`
	Notes        string      `json:"notes,omitempty"`
	GeneratedBy  uint64      `json:"generatedBy"`
	GeneratedAt  time.Time   `json:"generatedAt"`
}

type BillLine struct {
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Category   string          `json:"category"`
}

type BillPayment struct {
	Status    PaymentStatus `json:"status"`
	Method    PaymentMethod `json:"method"`
	Reference string        `json:"reference,omitempty"`
}

// PrintableBill reshapes o for display.
func (o Order) PrintableBill(now time.Time) Bill {
	lines := make([]BillLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, BillLine{
			Name:       it.ItemName,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
			Category:   it.Category,
		})
	}
	return Bill{
		BillNumber:   o.BillNumber,
		BillDate:     o.BillDate,
		Customer:     o.Customer,
		TableNumber:  o.TableNumber,
		PartySize:    o.PartySize,
		Items:        lines,
		Calculations: o.Totals,
		Payment: BillPayment{
			Status:    o.PaymentStatus,
			Method:    o.PaymentMethod,
			Reference: o.PaymentReference,
		},
		Notes:       o.BillNotes,
		GeneratedBy: o.CreatedBy,
		GeneratedAt: now,
	}
}
