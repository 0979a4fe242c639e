package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRestock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	s := &PostgresStore{DB: db}

	cols := []string{"id", "name", "selling_price", "cost_price", "num_of_stock", "small_category_id", "merchant_id"}

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE products SET num_of_stock = num_of_stock + $1 WHERE id = $2`)).
		WithArgs(25, int64(3)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(3), "Apples", int64(300), int64(120), 35, int64(1), int64(1)))

	p, err := s.Restock(context.Background(), 3, 25)
	if err != nil {
		t.Fatalf("Restock failed: %v", err)
	}
	if p.NumOfStock != 35 {
		t.Fatalf("expected stock 35, got %d", p.NumOfStock)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE products SET num_of_stock = num_of_stock + $1 WHERE id = $2`)).
		WithArgs(5, int64(404)).
		WillReturnRows(sqlmock.NewRows(cols))

	if _, err := s.Restock(context.Background(), 404, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetStock(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT num_of_stock FROM products WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"num_of_stock"}).AddRow(12))

	stock, err := s.GetStock(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetStock failed: %v", err)
	}
	if stock != 12 {
		t.Fatalf("expected 12, got %d", stock)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT num_of_stock FROM products WHERE id = $1`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"num_of_stock"}))

	if _, err := s.GetStock(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
