package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"grocery-backend/model"
)

// Row structs mirror the tables they come from.
type ProductRow struct {
	ID              int64
	Name            string
	SellingPrice    int64
	CostPrice       int64
	NumOfStock      int
	SmallCategoryID int64
	MerchantID      int64
}

type CartRow struct {
	ID         string
	CustomerID sql.NullString
	UpdatedAt  time.Time
}

type CartItemRow struct {
	ProductID int64
	Quantity  int
}

type OrderRow struct {
	ID              int64
	CustomerName    string
	Address         string
	FulfillmentType model.FulfillmentType
	Status          model.OrderStatus
	CreatedAt       time.Time
}

type OrderItemRow struct {
	ProductID       int64
	Quantity        int
	PriceAtPurchase int64
}

type BigCategoryRow struct {
	ID   int64
	Name string
}

type SmallCategoryRow struct {
	ID            int64
	Name          string
	BigCategoryID int64
}

type MerchantRow struct {
	ID      int64
	Email   string
	Phone   string
	Address string
}

type StaffRow struct {
	ID   int64
	Name string
	Role string
}

// PostgresStore is a Store backed by Postgres. All multi-statement
// mutations run inside a transaction owned by the store.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{DB: db}, nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

// classify maps low-level failures onto the store error set.
// Serialization failures and lock timeouts are retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "55P03": // serialization_failure, lock_not_available
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return err
}
