//go:build integration

package order_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/quickcart/internal/cart"
	"github.com/MikeMC777/quickcart/internal/db"
	"github.com/MikeMC777/quickcart/internal/order"
	"github.com/MikeMC777/quickcart/internal/user"
)

// Run with: QUICKCART_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/order/
func TestPGRepo_ConcurrentCommitsYieldOneOrder(t *testing.T) {
	dsn := os.Getenv("QUICKCART_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("QUICKCART_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	require.NoError(t, db.Migrate(dsn))
	pool, err := db.Connect(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	u := &user.User{Username: "race-" + uuid.NewString(), PasswordHash: "x"}
	require.NoError(t, user.NewPGRepo(pool).Create(ctx, u))
	var pid int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO products (name, price) VALUES ('Widget', 10.00) RETURNING id`).Scan(&pid))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id=$1`, u.ID)
		_, _ = pool.Exec(context.Background(), `DELETE FROM products WHERE id=$1`, pid)
	})

	carts := cart.NewPGRepo(pool)
	var adds errgroup.Group
	for i := 0; i < 3; i++ {
		adds.Go(func() error { return carts.Increment(ctx, u.ID, pid) })
	}
	require.NoError(t, adds.Wait())
	items, err := carts.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 3, items[0].Quantity)

	repo := order.NewPGRepo(pool)
	const n = 8
	results := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			_, results[i] = repo.Commit(ctx, u.ID, rcpt)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	placed := 0
	for _, err := range results {
		if err == nil {
			placed++
			continue
		}
		require.ErrorIs(t, err, order.ErrEmptyCart)
	}
	require.Equal(t, 1, placed)

	list, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "30.00", list[0].Total.StringFixed(2))

	items, err = carts.List(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, items)
}
