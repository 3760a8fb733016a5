package cart

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/quickcart/internal/db"
)

var (
	ErrNotFound = errors.New("cart item not found")
)

// Repository is scoped by user on every call; an item id that belongs to
// someone else behaves exactly like a missing one.
type Repository interface {
	List(ctx context.Context, userID int64) ([]Item, error)
	Increment(ctx context.Context, userID, productID int64) error
	SetQuantity(ctx context.Context, userID, itemID int64, qty int) error
	Delete(ctx context.Context, userID, itemID int64) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

func (r *PGRepo) List(ctx context.Context, userID int64) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT ci.id, ci.user_id, ci.product_id, p.name, p.price::text, p.image, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id=$1
		ORDER BY ci.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.ProductName, &price, &it.Image, &it.Quantity); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Increment inserts the (user, product) row at quantity 1 or bumps it by one,
// keyed on the unique pair, under the user lock that checkout also takes.
func (r *PGRepo) Increment(ctx context.Context, userID, productID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := db.LockUser(ctx, tx, userID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO cart_items (user_id, product_id, quantity)
			VALUES ($1, $2, 1)
			ON CONFLICT (user_id, product_id)
			DO UPDATE SET quantity = cart_items.quantity + 1
		`, userID, productID)
		return err
	})
}

func (r *PGRepo) SetQuantity(ctx context.Context, userID, itemID int64, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := db.LockUser(ctx, tx, userID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE cart_items SET quantity=$3
			WHERE id=$1 AND user_id=$2
		`, itemID, userID, qty)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PGRepo) Delete(ctx context.Context, userID, itemID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := db.LockUser(ctx, tx, userID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id=$1 AND user_id=$2`, itemID, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
