package store

import (
	"errors"
	"fmt"
)

// Closed error set for the storage layer. Callers distinguish business
// outcomes (empty cart, insufficient stock) from retryable contention
// (ErrUnavailable) and everything else via errors.Is.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrUnavailable       = errors.New("temporarily unavailable, retry")
)

// InsufficientStockError reports which product could not cover the
// requested quantity. errors.Is(err, ErrInsufficientStock) matches it.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
