package db

import (
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestPgErrorCodes(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	require.True(t, IsUniqueViolation(unique))
	require.False(t, IsForeignKeyViolation(unique))
	require.True(t, IsForeignKeyViolation(fk))
	require.False(t, IsUniqueViolation(errors.New("23505")))
	require.False(t, IsUniqueViolation(nil))
}

func TestMigrationsAreEmbedded(t *testing.T) {
	src, err := migrationSource()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	require.Equal(t, uint(1), first)

	_, err = src.Next(first)
	require.ErrorIs(t, err, os.ErrNotExist)

	up, _, err := src.ReadUp(first)
	require.NoError(t, err)
	body, err := io.ReadAll(up)
	require.NoError(t, up.Close())
	require.NoError(t, err)
	for _, table := range []string{"users", "products", "cart_items", "orders", "order_items", "bills", "wishlists"} {
		require.Contains(t, string(body), "CREATE TABLE "+table+" ")
	}
	require.Contains(t, string(body), "UNIQUE (user_id, product_id)")

	down, _, err := src.ReadDown(first)
	require.NoError(t, err)
	body, err = io.ReadAll(down)
	require.NoError(t, down.Close())
	require.NoError(t, err)
	require.Contains(t, string(body), "DROP TABLE IF EXISTS users;")
}
