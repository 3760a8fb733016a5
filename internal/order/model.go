package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound   = errors.New("order not found")
	ErrEmptyCart  = errors.New("cart is empty")
	ErrValidation = errors.New("invalid recipient")
)

// Recipient is where the order ships to. All three fields are required.
type Recipient struct {
	Name    string `form:"name" json:"name"`
	Phone   string `form:"phone" json:"phone"`
	Address string `form:"address" json:"address"`
}

// Validate trims the fields in place and reports the first one missing.
func (r *Recipient) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	switch {
	case r.Name == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case r.Phone == "":
		return fmt.Errorf("%w: phone is required", ErrValidation)
	case r.Address == "":
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	return nil
}

// Line is a cart row joined with its product at commit time.
type Line struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

type Order struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Recipient Recipient       `json:"recipient"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []Item          `json:"items,omitempty"`
	Bill      *Bill           `json:"bill,omitempty"`
}

// Item is the frozen copy of a cart line. Later price or name changes on the
// product do not reach it.
type Item struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Bill struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot builds the unsaved order for the given cart lines. The total is
// the sum of price times quantity over the lines, fixed from here on.
func Snapshot(userID int64, rcpt Recipient, lines []Line) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	o := &Order{UserID: userID, Recipient: rcpt, Total: decimal.Zero}
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("line for product %d has quantity %d", l.ProductID, l.Quantity)
		}
		it := Item{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
		o.Items = append(o.Items, it)
		o.Total = o.Total.Add(it.LineTotal())
	}
	return o, nil
}
