package store

import (
	"context"
	"database/sql"
	"fmt"

	"grocery-backend/model"
)

// PlaceOrder converts a cart's lines into a PENDING order inside a
// single transaction: snapshot and lock the lines, validate stock for
// every line before any write, insert the order header and its items at
// the locked selling price, decrement stock, clear the cart lines.
// Any failure rolls the whole unit back.
func (s *PostgresStore) PlaceOrder(ctx context.Context, cartID, customerName, address string, fulfillment model.FulfillmentType) (OrderRow, []OrderItemRow, error) {
	var order OrderRow

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return order, nil, classify(err)
	}
	defer tx.Rollback()

	// Lock the product rows for the whole check+decrement span.
	// ORDER BY keeps concurrent checkouts acquiring locks in the same
	// sequence so they cannot deadlock on each other.
	rows, err := tx.QueryContext(ctx, `
		SELECT ci.product_id, ci.quantity, p.name, p.selling_price, p.num_of_stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.product_id
		FOR UPDATE OF p`, cartID)
	if err != nil {
		return order, nil, classify(fmt.Errorf("load cart lines: %w", err))
	}

	type line struct {
		productID int64
		quantity  int
		name      string
		price     int64
		stock     int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.quantity, &l.name, &l.price, &l.stock); err != nil {
			rows.Close()
			return order, nil, classify(fmt.Errorf("scan cart line: %w", err))
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return order, nil, classify(err)
	}
	rows.Close()

	if len(lines) == 0 {
		return order, nil, ErrEmptyCart
	}

	// All-or-nothing validation pass before any write.
	for _, l := range lines {
		if l.stock < l.quantity {
			return order, nil, &InsufficientStockError{
				ProductName: l.name,
				Available:   l.stock,
				Requested:   l.quantity,
			}
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_name, address, fulfillment_type, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`,
		customerName, address, string(fulfillment), string(model.StatusPending),
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return order, nil, classify(fmt.Errorf("insert order: %w", err))
	}

	items := make([]OrderItemRow, 0, len(lines))
	for _, l := range lines {
		// price_at_purchase is the selling price read under the row
		// lock above; later catalog price changes cannot leak in.
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
			VALUES ($1, $2, $3, $4)`,
			order.ID, l.productID, l.quantity, l.price); err != nil {
			return order, nil, classify(fmt.Errorf("insert order item: %w", err))
		}

		// Conditional decrement re-validates even though the row is
		// locked; zero rows affected means the stock moved underneath.
		res, err := tx.ExecContext(ctx, `
			UPDATE products SET num_of_stock = num_of_stock - $1
			WHERE id = $2 AND num_of_stock >= $1`,
			l.quantity, l.productID)
		if err != nil {
			return order, nil, classify(fmt.Errorf("decrement stock: %w", err))
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return order, nil, &InsufficientStockError{
				ProductName: l.name,
				Available:   l.stock,
				Requested:   l.quantity,
			}
		}

		items = append(items, OrderItemRow{
			ProductID:       l.productID,
			Quantity:        l.quantity,
			PriceAtPurchase: l.price,
		})
	}

	// The cart row itself is retained. A line added to the cart after
	// the snapshot above is cleared here too; checkout wins that race.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return order, nil, classify(fmt.Errorf("clear cart: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return order, nil, classify(err)
	}

	order.CustomerName = customerName
	order.Address = address
	order.FulfillmentType = fulfillment
	order.Status = model.StatusPending
	return order, items, nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, orderID int64) (OrderRow, []OrderItemRow, error) {
	var order OrderRow
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, customer_name, address, fulfillment_type, status, created_at
		FROM orders WHERE id = $1`, orderID).
		Scan(&order.ID, &order.CustomerName, &order.Address,
			&order.FulfillmentType, &order.Status, &order.CreatedAt)
	if err == sql.ErrNoRows {
		return order, nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return order, nil, classify(fmt.Errorf("query order: %w", err))
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT product_id, quantity, price_at_purchase
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return order, nil, classify(fmt.Errorf("query order items: %w", err))
	}
	defer rows.Close()

	var items []OrderItemRow
	for rows.Next() {
		var it OrderItemRow
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.PriceAtPurchase); err != nil {
			return order, nil, classify(fmt.Errorf("scan order item: %w", err))
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return order, nil, classify(err)
	}
	return order, items, nil
}

// UpdateOrderStatus overwrites the status unconditionally; transition
// rules live in the service layer's policy.
func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (OrderRow, error) {
	var order OrderRow
	err := s.DB.QueryRowContext(ctx, `
		UPDATE orders SET status = $1 WHERE id = $2
		RETURNING id, customer_name, address, fulfillment_type, status, created_at`,
		string(status), orderID).
		Scan(&order.ID, &order.CustomerName, &order.Address,
			&order.FulfillmentType, &order.Status, &order.CreatedAt)
	if err == sql.ErrNoRows {
		return order, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return order, classify(fmt.Errorf("update order status: %w", err))
	}
	return order, nil
}
