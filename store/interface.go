package store

import (
	"context"

	"grocery-backend/model"
)

type Store interface {
	// Catalog
	CreateProduct(ctx context.Context, name string, sellingPrice, costPrice int64, stock int, smallCategoryID, merchantID int64) (ProductRow, error)
	GetProduct(ctx context.Context, id int64) (ProductRow, error)
	ListProducts(ctx context.Context) ([]ProductRow, error)
	AddBigCategory(ctx context.Context, name string) (BigCategoryRow, error)
	AddSmallCategory(ctx context.Context, name string, bigCategoryID int64) (SmallCategoryRow, error)
	AddMerchant(ctx context.Context, email, phone, address string) (MerchantRow, error)
	UpdateMerchant(ctx context.Context, id int64, email, phone, address *string) (MerchantRow, error)
	GetStaff(ctx context.Context, id int64) (StaffRow, error)

	// Stock ledger
	Restock(ctx context.Context, productID int64, qty int) (ProductRow, error)
	GetStock(ctx context.Context, productID int64) (int, error)

	// Cart
	AddItem(ctx context.Context, cartID, customerID string, productID int64, qty int) (CartRow, []CartItemRow, error)
	RemoveItem(ctx context.Context, cartID string, productID int64) (CartRow, []CartItemRow, error)
	GetCart(ctx context.Context, cartID string) (CartRow, []CartItemRow, error)

	// Orders
	PlaceOrder(ctx context.Context, cartID, customerName, address string, fulfillment model.FulfillmentType) (OrderRow, []OrderItemRow, error)
	GetOrder(ctx context.Context, orderID int64) (OrderRow, []OrderItemRow, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (OrderRow, error)

	Close() error
}
