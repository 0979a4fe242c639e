package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Restock adds qty to a product's stock (manager operation). qty may be
// negative for corrections; the schema CHECK keeps stock non-negative.
func (s *PostgresStore) Restock(ctx context.Context, productID int64, qty int) (ProductRow, error) {
	var p ProductRow
	err := s.DB.QueryRowContext(ctx, `
		UPDATE products SET num_of_stock = num_of_stock + $1 WHERE id = $2
		RETURNING id, name, selling_price, cost_price, num_of_stock, small_category_id, merchant_id`,
		qty, productID).
		Scan(&p.ID, &p.Name, &p.SellingPrice, &p.CostPrice, &p.NumOfStock,
			&p.SmallCategoryID, &p.MerchantID)
	if err == sql.ErrNoRows {
		return p, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23514" { // check_violation
			return p, fmt.Errorf("%w: stock cannot go negative", ErrInvalidArgument)
		}
		return p, classify(fmt.Errorf("restock product %d: %w", productID, err))
	}
	return p, nil
}

// GetStock returns current stock for a product.
func (s *PostgresStore) GetStock(ctx context.Context, productID int64) (int, error) {
	var stock int
	err := s.DB.QueryRowContext(ctx,
		`SELECT num_of_stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	if err != nil {
		return 0, classify(err)
	}
	return stock, nil
}
