package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRecipientValidate(t *testing.T) {
	cases := []struct {
		name string
		in   Recipient
		ok   bool
	}{
		{"complete", Recipient{"Ana", "555", "1 Main St"}, true},
		{"missing name", Recipient{"", "555", "1 Main St"}, false},
		{"blank phone", Recipient{"Ana", "   ", "1 Main St"}, false},
		{"missing address", Recipient{"Ana", "555", ""}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.in
			err := r.Validate()
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	r := Recipient{" Ana ", "555 ", "\t1 Main St"}
	require.NoError(t, r.Validate())
	require.Equal(t, Recipient{"Ana", "555", "1 Main St"}, r)
}

func TestSnapshot(t *testing.T) {
	lines := []Line{
		{ProductID: 1, ProductName: "Widget", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		{ProductID: 2, ProductName: "Gadget", UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1},
	}
	o, err := Snapshot(7, Recipient{Name: "Ana"}, lines)
	require.NoError(t, err)
	require.Equal(t, int64(7), o.UserID)
	require.Len(t, o.Items, 2)
	require.True(t, o.Total.Equal(decimal.NewFromInt(25)), o.Total.String())
	require.True(t, o.Items[0].LineTotal().Equal(decimal.NewFromInt(20)))

	_, err = Snapshot(7, Recipient{}, nil)
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = Snapshot(7, Recipient{}, []Line{{ProductID: 1, Quantity: 0}})
	require.Error(t, err)
}

func TestSnapshotKeepsFractionalCents(t *testing.T) {
	o, err := Snapshot(1, Recipient{}, []Line{
		{ProductID: 1, UnitPrice: decimal.RequireFromString("0.10"), Quantity: 3},
		{ProductID: 2, UnitPrice: decimal.RequireFromString("19.99"), Quantity: 1},
	})
	require.NoError(t, err)
	require.Equal(t, "20.29", o.Total.StringFixed(2))
}
