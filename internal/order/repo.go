package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/quickcart/internal/db"
)

type Repository interface {
	// Commit turns the user's cart into an order with its items and bill and
	// empties the cart, all or nothing.
	Commit(ctx context.Context, userID int64, rcpt Recipient) (*Order, error)
	GetForUser(ctx context.Context, orderID, userID int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

func (r *PGRepo) Commit(ctx context.Context, userID int64, rcpt Recipient) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var o *Order
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		// Serializes with other checkouts and cart edits of the same user.
		if err := db.LockUser(ctx, tx, userID); err != nil {
			return err
		}

		lines, err := cartLines(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("read cart: %w", err)
		}
		o, err = Snapshot(userID, rcpt, lines)
		if err != nil {
			return err
		}

		if err := tx.QueryRow(ctx, `
			INSERT INTO orders (user_id, name, phone, address, total)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING id, created_at
		`, userID, rcpt.Name, rcpt.Phone, rcpt.Address, o.Total.StringFixed(2)).Scan(&o.ID, &o.CreatedAt); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range o.Items {
			it := &o.Items[i]
			it.OrderID = o.ID
			if err := tx.QueryRow(ctx, `
				INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
				VALUES ($1,$2,$3,$4,$5)
				RETURNING id
			`, o.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice.StringFixed(2)).Scan(&it.ID); err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
		}

		b := &Bill{OrderID: o.ID}
		if err := tx.QueryRow(ctx, `
			INSERT INTO bills (order_id) VALUES ($1)
			RETURNING id, created_at
		`, o.ID).Scan(&b.ID, &b.CreatedAt); err != nil {
			return fmt.Errorf("insert bill: %w", err)
		}
		o.Bill = b

		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func cartLines(ctx context.Context, tx pgx.Tx, userID int64) ([]Line, error) {
	rows, err := tx.Query(ctx, `
		SELECT ci.product_id, p.name, p.price::text, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id=$1
		ORDER BY ci.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var (
			l     Line
			price string
		)
		if err := rows.Scan(&l.ProductID, &l.ProductName, &price, &l.Quantity); err != nil {
			return nil, err
		}
		if l.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetForUser loads the order with its items and bill. An order owned by
// someone else is reported as ErrNotFound.
func (r *PGRepo) GetForUser(ctx context.Context, orderID, userID int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		o     Order
		total string
		b     Bill
	)
	err := r.db.QueryRow(ctx, `
		SELECT o.id, o.user_id, o.name, o.phone, o.address, o.total::text, o.created_at,
		       b.id, b.created_at
		FROM orders o
		JOIN bills b ON b.order_id = o.id
		WHERE o.id=$1 AND o.user_id=$2
	`, orderID, userID).Scan(&o.ID, &o.UserID, &o.Recipient.Name, &o.Recipient.Phone, &o.Recipient.Address,
		&total, &o.CreatedAt, &b.ID, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	b.OrderID = o.ID
	o.Bill = &b

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, COALESCE(product_id, 0), product_name, quantity, unit_price::text
		FROM order_items WHERE order_id=$1
		ORDER BY id
	`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &price); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

// ListByUser returns the user's orders newest first, without items.
func (r *PGRepo) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.user_id, o.name, o.phone, o.address, o.total::text, o.created_at, b.id, b.created_at
		FROM orders o
		JOIN bills b ON b.order_id = o.id
		WHERE o.user_id=$1
		ORDER BY o.created_at DESC, o.id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var (
			o     Order
			total string
			b     Bill
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.Recipient.Name, &o.Recipient.Phone, &o.Recipient.Address,
			&total, &o.CreatedAt, &b.ID, &b.CreatedAt); err != nil {
			return nil, err
		}
		if o.Total, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		b.OrderID = o.ID
		o.Bill = &b
		out = append(out, o)
	}
	return out, rows.Err()
}
