package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCreateProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO products (name, selling_price, cost_price, num_of_stock, small_category_id, merchant_id)`)).
		WithArgs("Apples", int64(300), int64(120), 10, int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	p, err := s.CreateProduct(context.Background(), "Apples", 300, 120, 10, 1, 2)
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if p.ID != 9 || p.Name != "Apples" || p.NumOfStock != 10 {
		t.Fatalf("unexpected product: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, selling_price, cost_price, num_of_stock, small_category_id, merchant_id`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "selling_price", "cost_price", "num_of_stock", "small_category_id", "merchant_id"}))

	if _, err := s.GetProduct(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateMerchant_PartialFields(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	phone := "555-0101"
	// nil fields pass through as NULL so COALESCE keeps current values
	mock.ExpectQuery(regexp.QuoteMeta(`SET email = COALESCE($1, email), phone = COALESCE($2, phone), address = COALESCE($3, address)`)).
		WithArgs(nil, phone, nil, int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "phone", "address"}).
			AddRow(int64(4), "m@example.com", phone, "12 Market Rd"))

	m, err := s.UpdateMerchant(context.Background(), 4, nil, &phone, nil)
	if err != nil {
		t.Fatalf("UpdateMerchant failed: %v", err)
	}
	if m.Phone != phone || m.Email != "m@example.com" {
		t.Fatalf("unexpected merchant: %+v", m)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetStaff(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, role FROM staff WHERE id = $1`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role"}).AddRow(int64(2), "Sam", "Manager"))

	st, err := s.GetStaff(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetStaff failed: %v", err)
	}
	if st.Role != "Manager" {
		t.Fatalf("expected Manager, got %s", st.Role)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, role FROM staff WHERE id = $1`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role"}))

	if _, err := s.GetStaff(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
