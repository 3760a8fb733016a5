package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/quickcart/internal/cart"
	"github.com/MikeMC777/quickcart/internal/order"
	"github.com/MikeMC777/quickcart/internal/storetest"
)

var rcpt = order.Recipient{Name: "Ana", Phone: "555", Address: "1 Main St"}

type fixture struct {
	st     *storetest.Store
	carts  *cart.Service
	orders *order.Service
	uid    int64
	widget int64
	gadget int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := storetest.New()
	return &fixture{
		st:     st,
		carts:  cart.NewService(st.Carts()),
		orders: order.NewService(st.Orders(), zerolog.Nop()),
		uid:    st.AddUser("ana", "pw"),
		widget: st.AddProduct("Widget", "", "10.00"),
		gadget: st.AddProduct("Gadget", "", "5.00"),
	}
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.carts.AddItem(ctx, f.uid, f.widget))
	require.NoError(t, f.carts.AddItem(ctx, f.uid, f.widget))
	require.NoError(t, f.carts.AddItem(ctx, f.uid, f.gadget))
}

func TestPlaceOrder_CommitsAndClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t)
	_, before, err := f.carts.Contents(ctx, f.uid)
	require.NoError(t, err)

	o, err := f.orders.PlaceOrder(ctx, f.uid, rcpt)
	require.NoError(t, err)
	require.True(t, o.Total.Equal(before), "total=%s cart=%s", o.Total, before)
	require.True(t, o.Total.Equal(decimal.NewFromInt(25)))
	require.NotNil(t, o.Bill)
	require.Equal(t, o.ID, o.Bill.OrderID)
	require.Equal(t, 0, f.st.CartRows(f.uid))

	got, err := f.orders.Get(ctx, o.ID, f.uid)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.Equal(t, "Widget", got.Items[0].ProductName)
	require.Equal(t, 2, got.Items[0].Quantity)
	require.Equal(t, rcpt, got.Recipient)
}

func TestPlaceOrder_ItemsAreSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t)

	o, err := f.orders.PlaceOrder(ctx, f.uid, rcpt)
	require.NoError(t, err)
	f.st.SetPrice(f.widget, "99.00")

	got, err := f.orders.Get(ctx, o.ID, f.uid)
	require.NoError(t, err)
	require.True(t, got.Total.Equal(decimal.NewFromInt(25)))
	require.True(t, got.Items[0].UnitPrice.Equal(decimal.NewFromInt(10)))
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.PlaceOrder(context.Background(), f.uid, rcpt)
	require.ErrorIs(t, err, order.ErrEmptyCart)
	require.Equal(t, 0, f.st.OrderCount(f.uid))
}

func TestPlaceOrder_InvalidRecipientLeavesCart(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	_, err := f.orders.PlaceOrder(context.Background(), f.uid, order.Recipient{Name: "Ana", Phone: "555"})
	require.ErrorIs(t, err, order.ErrValidation)
	require.Equal(t, 2, f.st.CartRows(f.uid))
	require.Equal(t, 0, f.st.OrderCount(f.uid))
}

func TestPlaceOrder_FailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	boom := errors.New("insert bill: connection reset")
	f.st.CommitErr = boom

	_, err := f.orders.PlaceOrder(context.Background(), f.uid, rcpt)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, f.st.CartRows(f.uid))
	require.Equal(t, 0, f.st.OrderCount(f.uid))
}

func TestPlaceOrder_ConcurrentCommitsYieldOneOrder(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	const n = 8
	results := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			_, results[i] = f.orders.PlaceOrder(context.Background(), f.uid, rcpt)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	placed := 0
	for _, err := range results {
		switch {
		case err == nil:
			placed++
		default:
			require.ErrorIs(t, err, order.ErrEmptyCart)
		}
	}
	require.Equal(t, 1, placed)
	require.Equal(t, 1, f.st.OrderCount(f.uid))
}

func TestGetAndHistoryAreScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.st.AddUser("bo", "pw")

	f.fillCart(t)
	first, err := f.orders.PlaceOrder(ctx, f.uid, rcpt)
	require.NoError(t, err)
	require.NoError(t, f.carts.AddItem(ctx, f.uid, f.gadget))
	second, err := f.orders.PlaceOrder(ctx, f.uid, rcpt)
	require.NoError(t, err)

	_, err = f.orders.Get(ctx, first.ID, other)
	require.ErrorIs(t, err, order.ErrNotFound)

	hist, err := f.orders.History(ctx, f.uid)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	require.Equal(t, second.ID, hist[0].ID)
	require.Equal(t, first.ID, hist[1].ID)

	hist, err = f.orders.History(ctx, other)
	require.NoError(t, err)
	require.Empty(t, hist)
}
