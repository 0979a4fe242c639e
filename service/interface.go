package service

import (
	"context"

	"grocery-backend/model"
)

type ServiceInterface interface {
	CreateProduct(ctx context.Context, name string, sellingPrice, costPrice int64, stock int, smallCategoryID, merchantID int64) (ProductDTO, error)
	GetProduct(ctx context.Context, id int64) (ProductDTO, error)
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	Restock(ctx context.Context, staffID, productID int64, qty int) (ProductDTO, error)
	AddBigCategory(ctx context.Context, name string) (BigCategoryDTO, error)
	AddSmallCategory(ctx context.Context, name string, bigCategoryID int64) (SmallCategoryDTO, error)
	AddMerchant(ctx context.Context, email, phone, address string) (MerchantDTO, error)
	UpdateMerchant(ctx context.Context, id int64, email, phone, address *string) (MerchantDTO, error)

	AddItemToCart(ctx context.Context, cartID, customerID string, productID int64, qty int) (CartDTO, error)
	RemoveItemFromCart(ctx context.Context, cartID string, productID int64) (CartDTO, error)
	GetCart(ctx context.Context, cartID string) (CartDTO, error)

	PlaceOrder(ctx context.Context, cartID, customerName, address string, fulfillment model.FulfillmentType) (OrderDTO, error)
	ChangeOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (OrderDTO, error)
	GetOrder(ctx context.Context, orderID int64) (OrderDTO, error)
}
