package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

const exportSheet = "Orders"

var exportHeaders = []string{
	"Bill Number", "Bill Date", "Booking ID", "Customer", "Table", "Party Size",
	"Subtotal", "Discount %", "Discount", "GST %", "GST", "Total",
	"Payment Status", "Payment Method",
}

// ExportXLSX writes every invoice matching f (paging ignored) to a
// spreadsheet.
func (s *BillingService) ExportXLSX(ctx context.Context, p *Principal, f repository.OrderFilter) (string, []byte, error) {
	f.Page = repository.Page{}
	orders, _, err := s.List(ctx, p, f)
	if err != nil {
		return "", nil, err
	}
	buf, err := writeOrders(orders)
	if err != nil {
		return "", nil, apperr.Internal("export orders", err)
	}
	name := fmt.Sprintf("orders-%s.xlsx", s.now().In(s.loc).Format("20060102-150405"))
	return name, buf, nil
}

func writeOrders(orders []model.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	for i, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}
	for i, o := range orders {
		row := []any{
			o.BillNumber,
			o.BillDate.Format("2006-01-02"),
			o.BookingID,
			o.Customer.Name,
			o.TableNumber,
			o.PartySize,
			o.Subtotal.InexactFloat64(),
			o.DiscountPercentage.InexactFloat64(),
			o.DiscountAmount.InexactFloat64(),
			o.GSTPercentage.InexactFloat64(),
			o.GSTAmount.InexactFloat64(),
			o.TotalAmount.InexactFloat64(),
			string(o.PaymentStatus),
			string(o.PaymentMethod),
		}
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}
	_ = f.SetColWidth(exportSheet, "A", "A", 22)
	_ = f.SetColWidth(exportSheet, "D", "D", 24)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
