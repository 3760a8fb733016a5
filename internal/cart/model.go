package cart

import "github.com/shopspring/decimal"

// Item is one cart row joined with the product it points at.
type Item struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Image       string          `json:"image,omitempty"`
	Quantity    int             `json:"quantity"`
}

func (i Item) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice())
	}
	return total
}
