package store

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *PostgresStore) CreateProduct(ctx context.Context, name string, sellingPrice, costPrice int64, stock int, smallCategoryID, merchantID int64) (ProductRow, error) {
	p := ProductRow{
		Name:            name,
		SellingPrice:    sellingPrice,
		CostPrice:       costPrice,
		NumOfStock:      stock,
		SmallCategoryID: smallCategoryID,
		MerchantID:      merchantID,
	}
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO products (name, selling_price, cost_price, num_of_stock, small_category_id, merchant_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		name, sellingPrice, costPrice, stock, smallCategoryID, merchantID).Scan(&p.ID)
	if err != nil {
		return p, classify(fmt.Errorf("insert product: %w", err))
	}
	return p, nil
}

func (s *PostgresStore) GetProduct(ctx context.Context, id int64) (ProductRow, error) {
	var p ProductRow
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, selling_price, cost_price, num_of_stock, small_category_id, merchant_id
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.SellingPrice, &p.CostPrice, &p.NumOfStock,
			&p.SmallCategoryID, &p.MerchantID)
	if err == sql.ErrNoRows {
		return p, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return p, classify(fmt.Errorf("query product: %w", err))
	}
	return p, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]ProductRow, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, selling_price, cost_price, num_of_stock, small_category_id, merchant_id
		FROM products ORDER BY id`)
	if err != nil {
		return nil, classify(fmt.Errorf("query products: %w", err))
	}
	defer rows.Close()

	out := []ProductRow{}
	for rows.Next() {
		var p ProductRow
		if err := rows.Scan(&p.ID, &p.Name, &p.SellingPrice, &p.CostPrice,
			&p.NumOfStock, &p.SmallCategoryID, &p.MerchantID); err != nil {
			return nil, classify(fmt.Errorf("scan product: %w", err))
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (s *PostgresStore) AddBigCategory(ctx context.Context, name string) (BigCategoryRow, error) {
	c := BigCategoryRow{Name: name}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO big_categories (name) VALUES ($1) RETURNING id`, name).Scan(&c.ID)
	if err != nil {
		return c, classify(fmt.Errorf("insert big category: %w", err))
	}
	return c, nil
}

func (s *PostgresStore) AddSmallCategory(ctx context.Context, name string, bigCategoryID int64) (SmallCategoryRow, error) {
	c := SmallCategoryRow{Name: name, BigCategoryID: bigCategoryID}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO small_categories (name, big_category_id) VALUES ($1, $2) RETURNING id`,
		name, bigCategoryID).Scan(&c.ID)
	if err != nil {
		return c, classify(fmt.Errorf("insert small category: %w", err))
	}
	return c, nil
}

func (s *PostgresStore) AddMerchant(ctx context.Context, email, phone, address string) (MerchantRow, error) {
	m := MerchantRow{Email: email, Phone: phone, Address: address}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO merchants (email, phone, address) VALUES ($1, $2, $3) RETURNING id`,
		email, phone, address).Scan(&m.ID)
	if err != nil {
		return m, classify(fmt.Errorf("insert merchant: %w", err))
	}
	return m, nil
}

// UpdateMerchant overwrites only the fields that are non-nil.
func (s *PostgresStore) UpdateMerchant(ctx context.Context, id int64, email, phone, address *string) (MerchantRow, error) {
	var m MerchantRow
	err := s.DB.QueryRowContext(ctx, `
		UPDATE merchants
		SET email = COALESCE($1, email), phone = COALESCE($2, phone), address = COALESCE($3, address)
		WHERE id = $4
		RETURNING id, email, phone, address`,
		email, phone, address, id).
		Scan(&m.ID, &m.Email, &m.Phone, &m.Address)
	if err == sql.ErrNoRows {
		return m, fmt.Errorf("%w: merchant %d", ErrNotFound, id)
	}
	if err != nil {
		return m, classify(fmt.Errorf("update merchant: %w", err))
	}
	return m, nil
}

func (s *PostgresStore) GetStaff(ctx context.Context, id int64) (StaffRow, error) {
	var st StaffRow
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, role FROM staff WHERE id = $1`, id).
		Scan(&st.ID, &st.Name, &st.Role)
	if err == sql.ErrNoRows {
		return st, fmt.Errorf("%w: staff %d", ErrNotFound, id)
	}
	if err != nil {
		return st, classify(fmt.Errorf("query staff: %w", err))
	}
	return st, nil
}
