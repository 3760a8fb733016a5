package product

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TrendingCategories is the fixed allow-list behind the "trending" filter.
var TrendingCategories = []string{
	"Ovens", "Coolers", "Cameras",
	"Earbuds", "Watches", "Mobiles",
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	// Category is the zero value when the product is uncategorised.
	Category Category `json:"category"`
}

// Query filters the catalog. Both filters compose with AND.
type Query struct {
	Q            string
	TrendingOnly bool
}

func (q Query) search() string { return strings.TrimSpace(q.Q) }

// Matches reports whether p passes the query. The SQL in PGRepo.List is the
// same predicate.
func (q Query) Matches(p Product) bool {
	if q.TrendingOnly && !isTrending(p.Category.Name) {
		return false
	}
	s := strings.ToLower(q.search())
	if s == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), s) ||
		strings.Contains(strings.ToLower(p.Category.Name), s)
}

func isTrending(category string) bool {
	for _, c := range TrendingCategories {
		if c == category {
			return true
		}
	}
	return false
}
