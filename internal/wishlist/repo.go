// Package wishlist stores the products a user has bookmarked.
package wishlist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/quickcart/internal/db"
)

// ErrNotFound is returned by Add when the product does not exist.
var ErrNotFound = errors.New("product not found")

type Item struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
}

type Repository interface {
	// Add is idempotent per (user, product).
	Add(ctx context.Context, userID, productID int64) error
	// Remove deletes the entry when the user owns it and does nothing otherwise.
	Remove(ctx context.Context, userID, itemID int64) error
	List(ctx context.Context, userID int64) ([]Item, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

func (r *PGRepo) Add(ctx context.Context, userID, productID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO wishlists (user_id, product_id) VALUES ($1,$2)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, userID, productID)
	if db.IsForeignKeyViolation(err) {
		return ErrNotFound
	}
	return err
}

func (r *PGRepo) Remove(ctx context.Context, userID, itemID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM wishlists WHERE id=$1 AND user_id=$2`, itemID, userID)
	return err
}

func (r *PGRepo) List(ctx context.Context, userID int64) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT w.id, w.user_id, w.product_id, p.name, p.price::text, p.image
		FROM wishlists w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id=$1
		ORDER BY w.id
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
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.ProductName, &price, &it.Image); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
