package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func prod(name, category string) Product {
	return Product{Name: name, Price: decimal.NewFromInt(1), Category: Category{Name: category}}
}

func TestQueryMatches(t *testing.T) {
	camera := prod("Canon EOS", "Cameras")
	kettle := prod("Steel Kettle", "Kitchen")
	watch := prod("Smart band", "Watches")
	loose := prod("Mystery box", "")

	cases := []struct {
		name string
		q    Query
		p    Product
		want bool
	}{
		{"empty query keeps everything", Query{}, kettle, true},
		{"blank query keeps everything", Query{Q: "   "}, loose, true},
		{"name substring, case-insensitive", Query{Q: "eos"}, camera, true},
		{"category substring", Query{Q: "kitch"}, kettle, true},
		{"no match", Query{Q: "phone"}, kettle, false},
		{"trending keeps allow-listed category", Query{TrendingOnly: true}, watch, true},
		{"trending drops other categories", Query{TrendingOnly: true}, kettle, false},
		{"trending drops uncategorised", Query{TrendingOnly: true}, loose, false},
		{"trending AND query both hold", Query{Q: "canon", TrendingOnly: true}, camera, true},
		{"trending AND query, query fails", Query{Q: "band", TrendingOnly: true}, camera, false},
		{"trending AND query, trending fails", Query{Q: "kettle", TrendingOnly: true}, kettle, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.q.Matches(tc.p))
		})
	}
}

func TestTrendingIsExactName(t *testing.T) {
	require.False(t, Query{TrendingOnly: true}.Matches(prod("x", "cameras")))
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
	require.Equal(t, "plain", escapeLike("plain"))
}
