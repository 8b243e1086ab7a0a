package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hospitality-reservation/internal/middleware"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type BillingHandler struct {
	svc *service.BillingService
}

// NewBillingHandler constructs a BillingHandler over svc.
func NewBillingHandler(svc *service.BillingService) *BillingHandler {
	return &BillingHandler{svc: svc}
}

func orderFilter(c echo.Context) (repository.OrderFilter, error) {
	var f repository.OrderFilter
	var err error
	if f.Page, err = pageParams(c); err != nil {
		return f, err
	}
	if f.From, err = dateQuery(c, "startDate"); err != nil {
		return f, err
	}
	if f.To, err = dateQuery(c, "endDate"); err != nil {
		return f, err
	}
	f.PaymentStatus = model.PaymentStatus(strings.TrimSpace(c.QueryParam("paymentStatus")))
	f.CustomerName = c.QueryParam("customerName")
	f.BillNumber = c.QueryParam("billNumber")
	return f, nil
}

// CreateFromBooking handles POST /api/billing/create-from-booking. It
// freezes the booking's pre-order into an invoice and answers 201, or
// 409 when the booking already has one.
func (h *BillingHandler) CreateFromBooking(c echo.Context) error {
	var in service.CreateBillInput
	if err := bind(c, &in); err != nil {
		return err
	}
	o, err := h.svc.CreateFromBooking(c.Request().Context(), middleware.Principal(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "bill created successfully", o)
}

// List handles GET /api/billing. It filters by payment status, customer
// name, bill number and a startDate/endDate bill range.
func (h *BillingHandler) List(c echo.Context) error {
	f, err := orderFilter(c)
	if err != nil {
		return err
	}
	out, total, err := h.svc.List(c.Request().Context(), middleware.Principal(c), f)
	if err != nil {
		return err
	}
	return respondPage(c, "orders retrieved", out, f.Page, total)
}

// Get handles GET /api/billing/:id.
func (h *BillingHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	o, err := h.svc.Get(c.Request().Context(), middleware.Principal(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "order retrieved", o)
}

// Update handles PUT /api/billing/:id. Changing a percentage recomputes
// the totals; the line items stay frozen.
func (h *BillingHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var patch service.BillPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	o, err := h.svc.Update(c.Request().Context(), middleware.Principal(c), id, patch)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "order updated", o)
}

// Delete handles DELETE /api/billing/:id.
func (h *BillingHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.Principal(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "order deleted", nil)
}

// Bill handles GET /api/billing/:id/bill and returns the printable form
// as JSON.
func (h *BillingHandler) Bill(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	b, err := h.svc.PrintableBill(c.Request().Context(), middleware.Principal(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "bill generated", b)
}

// BillPDF handles GET /api/billing/:id/bill.pdf and streams the bill as
// an attachment named after its bill number.
func (h *BillingHandler) BillPDF(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	name, body, err := h.svc.BillPDF(c.Request().Context(), middleware.Principal(c), id)
	if err != nil {
		return err
	}
	return attachment(c, "application/pdf", name, body)
}

// Stats handles GET /api/billing/stats.
func (h *BillingHandler) Stats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context(), middleware.Principal(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "order statistics retrieved", st)
}

// Export ignores page and limit and writes every matching order.
func (h *BillingHandler) Export(c echo.Context) error {
	f, err := orderFilter(c)
	if err != nil {
		return err
	}
	name, body, err := h.svc.ExportXLSX(c.Request().Context(), middleware.Principal(c), f)
	if err != nil {
		return err
	}
	return attachment(c, xlsxContentType, name, body)
}
