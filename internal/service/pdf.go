package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
)

// BillPDF renders the printable bill of an invoice. The QR code carries
// the bill number and total so a printed copy can be matched back.
func (s *BillingService) BillPDF(ctx context.Context, p *Principal, id uint64) (string, []byte, error) {
	bill, err := s.PrintableBill(ctx, p, id)
	if err != nil {
		return "", nil, err
	}
	out, err := renderBill(bill)
	if err != nil {
		return "", nil, apperr.Internal("render bill pdf", err)
	}
	return bill.BillNumber + ".pdf", out, nil
}

func renderBill(b model.Bill) ([]byte, error) {
	return writeBill(gofpdf.New("P", "mm", "A4", ""), b)
}

// writeBill lays the bill out on pdf. The core fonts are cp1252, so free
// text typed by customers and staff goes through the translator.
func writeBill(pdf *gofpdf.Fpdf, b model.Bill) ([]byte, error) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	pdf.SetAutoPageBreak(true, 20)

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 12, "INVOICE")
	pdf.Ln(14)

	top := pdf.GetY()
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Bill number: "+b.BillNumber)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Bill date: "+b.BillDate.Format("2006-01-02"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Customer: "+tr(b.Customer.Name))
	pdf.Ln(6)
	if b.Customer.Email != "" {
		pdf.Cell(0, 6, "Email: "+tr(b.Customer.Email))
		pdf.Ln(6)
	}
	if b.Customer.Phone != "" {
		pdf.Cell(0, 6, "Phone: "+tr(b.Customer.Phone))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, tr(fmt.Sprintf("Table: %s  Party of %d", b.TableNumber, b.PartySize)))
	pdf.Ln(6)

	qr, err := qrcode.Encode(fmt.Sprintf("%s|%s", b.BillNumber, b.Calculations.TotalAmount.StringFixed(2)), qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}
	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 155, top-2, 38, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	pdf.SetY(top + 44)
	sectionTitle(pdf, "ITEMS")
	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{85, 20, 35, 40}
	for i, h := range []string{"Item", "Qty", "Unit price", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 7, h, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range b.Items {
		pdf.CellFormat(widths[0], 7, tr(l.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprint(l.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, l.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, l.TotalPrice.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	c := b.Calculations
	totals := [][2]string{
		{"Subtotal", c.Subtotal.StringFixed(2)},
		{"Discount (" + c.DiscountPercentage.String() + "%)", "-" + c.DiscountAmount.StringFixed(2)},
		{"GST (" + c.GSTPercentage.String() + "%)", c.GSTAmount.StringFixed(2)},
	}
	for _, row := range totals {
		pdf.CellFormat(140, 7, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, row[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(140, 9, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(40, 9, c.TotalAmount.StringFixed(2), "T", 1, "R", false, 0, "")
	pdf.Ln(6)

	sectionTitle(pdf, "PAYMENT")
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s  Method: %s", b.Payment.Status, b.Payment.Method))
	pdf.Ln(6)
	if b.Payment.Reference != "" {
		pdf.Cell(0, 6, "Reference: "+tr(b.Payment.Reference))
		pdf.Ln(6)
	}
	if b.Notes != "" {
		pdf.MultiCell(0, 6, "Notes: "+tr(b.Notes), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 8, title, "", 1, "L", true, 0, "")
	pdf.Ln(2)
}
