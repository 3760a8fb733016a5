// Package invoice renders an order as a downloadable PDF document.
package invoice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/quickcart/internal/order"
)

// ErrUnavailable means the process has no working PDF engine.
var ErrUnavailable = errors.New("invoice renderer unavailable")

type Engine interface {
	Render(o *order.Order) ([]byte, error)
}

// PDFEngine draws invoices with a fixed A4 layout. Output depends only on the
// order, so the same order always yields the same bytes.
type PDFEngine struct {
	StoreName string
}

func NewPDFEngine(storeName string) *PDFEngine {
	return &PDFEngine{StoreName: storeName}
}

const (
	margin   = 15.0
	rowH     = 8.0
	colName  = 90.0
	colQty   = 20.0
	colPrice = 35.0
	colTotal = 35.0
)

func (e *PDFEngine) Render(o *order.Order) ([]byte, error) {
	if o == nil {
		return nil, errors.New("nil order")
	}
	stamp := o.CreatedAt.UTC()
	if stamp.IsZero() {
		stamp = time.Unix(0, 0).UTC()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(false)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(fmt.Sprintf("Invoice %d", o.ID), false)
	pdf.SetCreator(e.StoreName, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(colName+colQty, 12, tr(e.StoreName), "", 0, "L", false, 0, "")
	pdf.CellFormat(colPrice+colTotal, 12, "INVOICE", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	billNo := "-"
	if o.Bill != nil {
		billNo = fmt.Sprintf("%d", o.Bill.ID)
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Order #%d", o.ID), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, "Bill #"+billNo, "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+stamp.Format("2006-01-02 15:04 UTC"), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Bill to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(o.Recipient.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(o.Recipient.Phone), "", 1, "L", false, 0, "")
	pdf.MultiCell(colName+colQty, 6, tr(o.Recipient.Address), "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(colName, rowH, "Product", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, rowH, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colPrice, rowH, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colTotal, rowH, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range o.Items {
		pdf.CellFormat(colName, rowH, fit(pdf, tr(it.ProductName), colName-2), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, rowH, fmt.Sprintf("%d", it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colPrice, rowH, money(it.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, rowH, money(it.LineTotal()), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colName+colQty+colPrice, rowH, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, rowH, money(o.Total), "1", 1, "R", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, tr("Thank you for shopping with "+e.StoreName+"."), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %d: %w", o.ID, err)
	}
	return buf.Bytes(), nil
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// fit shortens s with an ellipsis until it fits in w.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > w {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

// Probe renders a sample order and reports whether the engine works.
func Probe(e Engine) error {
	if e == nil {
		return ErrUnavailable
	}
	sample := &order.Order{
		ID:        1,
		Recipient: order.Recipient{Name: "Probe", Phone: "0", Address: "-"},
		Total:     decimal.NewFromInt(1),
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Items: []order.Item{
			{ProductName: "Probe", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		},
		Bill: &order.Bill{ID: 1, OrderID: 1},
	}
	out, err := e.Render(sample)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		return fmt.Errorf("%w: output is not a PDF", ErrUnavailable)
	}
	return nil
}

type OrderSource interface {
	Get(ctx context.Context, orderID, userID int64) (*order.Order, error)
}

type Service struct {
	orders OrderSource
	engine Engine
}

// NewService takes a nil engine to mean the feature is switched off.
func NewService(orders OrderSource, engine Engine) *Service {
	return &Service{orders: orders, engine: engine}
}

func (s *Service) Available() bool { return s.engine != nil }

// Render returns the invoice of an order owned by userID. It has no side
// effects. Availability is checked before the order is looked up.
func (s *Service) Render(ctx context.Context, orderID, userID int64) ([]byte, error) {
	if s.engine == nil {
		return nil, ErrUnavailable
	}
	o, err := s.orders.Get(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	return s.engine.Render(o)
}

func Filename(orderID int64) string {
	return fmt.Sprintf("invoice_%d.pdf", orderID)
}
