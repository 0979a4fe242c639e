package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// querier is satisfied by both *sql.DB and *sql.Tx so cart reads can
// run inside or outside a transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// AddItem adds qty of a product to a cart, creating the cart first when
// cartID is empty. Repeated adds of the same product merge quantities
// into a single line. The cart's updated_at is refreshed either way.
func (s *PostgresStore) AddItem(ctx context.Context, cartID, customerID string, productID int64, qty int) (CartRow, []CartItemRow, error) {
	if qty <= 0 {
		return CartRow{}, nil, fmt.Errorf("%w: quantity must be > 0", ErrInvalidArgument)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return CartRow{}, nil, classify(err)
	}
	defer tx.Rollback()

	if cartID == "" {
		cartID = uuid.NewString()
	}

	// Ensure the cart row exists; client-supplied ids are allowed.
	var customer any
	if customerID != "" {
		customer = customerID
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO carts (id, customer_id) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		cartID, customer); err != nil {
		return CartRow{}, nil, classify(fmt.Errorf("ensure cart: %w", err))
	}

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return CartRow{}, nil, classify(fmt.Errorf("check product: %w", err))
	}
	if !exists {
		return CartRow{}, nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		cartID, productID, qty); err != nil {
		return CartRow{}, nil, classify(fmt.Errorf("upsert cart item: %w", err))
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return CartRow{}, nil, classify(fmt.Errorf("touch cart: %w", err))
	}

	cart, items, err := readCart(ctx, tx, cartID)
	if err != nil {
		return CartRow{}, nil, err
	}
	if err := tx.Commit(); err != nil {
		return CartRow{}, nil, classify(err)
	}
	return cart, items, nil
}

// RemoveItem deletes one cart line. Removing a line that does not exist
// is a no-op; only an unknown cart is an error.
func (s *PostgresStore) RemoveItem(ctx context.Context, cartID string, productID int64) (CartRow, []CartItemRow, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return CartRow{}, nil, classify(err)
	}
	defer tx.Rollback()

	// The timestamp refresh doubles as the cart existence check.
	res, err := tx.ExecContext(ctx,
		`UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID)
	if err != nil {
		return CartRow{}, nil, classify(fmt.Errorf("touch cart: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return CartRow{}, nil, fmt.Errorf("%w: cart %s", ErrNotFound, cartID)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID); err != nil {
		return CartRow{}, nil, classify(fmt.Errorf("delete cart item: %w", err))
	}

	cart, items, err := readCart(ctx, tx, cartID)
	if err != nil {
		return CartRow{}, nil, err
	}
	if err := tx.Commit(); err != nil {
		return CartRow{}, nil, classify(err)
	}
	return cart, items, nil
}

func (s *PostgresStore) GetCart(ctx context.Context, cartID string) (CartRow, []CartItemRow, error) {
	return readCart(ctx, s.DB, cartID)
}

func readCart(ctx context.Context, q querier, cartID string) (CartRow, []CartItemRow, error) {
	var cart CartRow
	err := q.QueryRowContext(ctx,
		`SELECT id, customer_id, updated_at FROM carts WHERE id = $1`, cartID).
		Scan(&cart.ID, &cart.CustomerID, &cart.UpdatedAt)
	if err == sql.ErrNoRows {
		return cart, nil, fmt.Errorf("%w: cart %s", ErrNotFound, cartID)
	}
	if err != nil {
		return cart, nil, classify(fmt.Errorf("query cart: %w", err))
	}

	rows, err := q.QueryContext(ctx,
		`SELECT product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY product_id`, cartID)
	if err != nil {
		return cart, nil, classify(fmt.Errorf("query cart items: %w", err))
	}
	defer rows.Close()

	items := []CartItemRow{}
	for rows.Next() {
		var it CartItemRow
		if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return cart, nil, classify(fmt.Errorf("scan cart item: %w", err))
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return cart, nil, classify(err)
	}
	return cart, items, nil
}
