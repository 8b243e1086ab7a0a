package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hospitality-reservation/internal/model"
)

func TestBillPDFTranslatesUTF8(t *testing.T) {
	bill := model.Bill{
		BillNumber:  "BILL-20250301-0001",
		BillDate:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Customer:    model.Contact{Name: "José Müller"},
		TableNumber: "T1",
		PartySize:   2,
		Items: []model.BillLine{{Name: "Crème brûlée", Quantity: 1,
			UnitPrice: decimal.NewFromInt(90), TotalPrice: decimal.NewFromInt(90)}},
		Notes: "Geburtstag – Tisch am Fenster",
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	out, err := writeBill(pdf, bill)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	// cp1252: é=E9, ü=FC, è=E8, û=FB, en dash=96.
	assert.True(t, bytes.Contains(out, []byte("Jos\xe9 M\xfcller")))
	assert.True(t, bytes.Contains(out, []byte("Cr\xe8me br\xfbl\xe9e")))
	assert.True(t, bytes.Contains(out, []byte("Geburtstag \x96 Tisch")))
	assert.False(t, bytes.Contains(out, []byte("José")), "raw UTF-8 must not reach the page")

	out, err = renderBill(bill)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
