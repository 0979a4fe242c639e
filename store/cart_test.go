package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func expectCartRead(mock sqlmock.Sqlmock, cartID string, items *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, customer_id, updated_at FROM carts WHERE id = $1`)).
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "updated_at"}).
			AddRow(cartID, nil, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY product_id`)).
		WithArgs(cartID).
		WillReturnRows(items)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	s := &PostgresStore{DB: db}

	// qty <= 0 errors before any DB call
	if _, _, err := s.AddItem(context.Background(), "c1", "", 1, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddItem_MergesIntoExistingLine(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO carts (id, customer_id) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`)).
		WithArgs("c1", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(regexp.QuoteMeta(`DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`)).
		WithArgs("c1", int64(10), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE carts SET updated_at = NOW() WHERE id = $1`)).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectCartRead(mock, "c1",
		sqlmock.NewRows([]string{"product_id", "quantity"}).AddRow(int64(10), 5))
	mock.ExpectCommit()

	cart, items, err := s.AddItem(context.Background(), "c1", "", 10, 3)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if cart.ID != "c1" {
		t.Fatalf("unexpected cart id %q", cart.ID)
	}
	// merged line, never a duplicate
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Fatalf("unexpected items: %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddItem_CreatesCartWhenIDEmpty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO carts (id, customer_id) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`)).
		WithArgs(sqlmock.AnyArg(), "cust-9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cart_items (cart_id, product_id, quantity)`)).
		WithArgs(sqlmock.AnyArg(), int64(4), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE carts SET updated_at = NOW() WHERE id = $1`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, customer_id, updated_at FROM carts WHERE id = $1`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "updated_at"}).
			AddRow("generated", "cust-9", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY product_id`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity"}).AddRow(int64(4), 2))
	mock.ExpectCommit()

	cart, items, err := s.AddItem(context.Background(), "", "cust-9", 4, 2)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if cart.ID == "" {
		t.Fatal("expected a generated cart id")
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO carts (id, customer_id) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`)).
		WithArgs("c1", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`)).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, _, err := s.AddItem(context.Background(), "c1", "", 999, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRemoveItem_Idempotent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	// two identical removals end in the same state, the second deleting
	// zero rows without error
	for _, deleted := range []int64{1, 0} {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE carts SET updated_at = NOW() WHERE id = $1`)).
			WithArgs("c1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`)).
			WithArgs("c1", int64(5)).
			WillReturnResult(sqlmock.NewResult(0, deleted))
		expectCartRead(mock, "c1", sqlmock.NewRows([]string{"product_id", "quantity"}))
		mock.ExpectCommit()
	}

	first, firstItems, err := s.RemoveItem(context.Background(), "c1", 5)
	if err != nil {
		t.Fatalf("first RemoveItem failed: %v", err)
	}
	second, secondItems, err := s.RemoveItem(context.Background(), "c1", 5)
	if err != nil {
		t.Fatalf("second RemoveItem failed: %v", err)
	}
	if first.ID != second.ID || len(firstItems) != 0 || len(secondItems) != 0 {
		t.Fatalf("removals diverged: %+v vs %+v", firstItems, secondItems)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRemoveItem_UnknownCart(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE carts SET updated_at = NOW() WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, _, err := s.RemoveItem(context.Background(), "missing", 5)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetCart_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, customer_id, updated_at FROM carts WHERE id = $1`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "updated_at"}))

	_, _, err := s.GetCart(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
