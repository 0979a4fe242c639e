package model

// OrderStatus is the lifecycle state of a placed order. Checkout only
// ever produces PENDING; later transitions go through ChangeOrderStatus.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// FulfillmentType says how the customer receives the order.
type FulfillmentType string

const (
	FulfillmentPickUp   FulfillmentType = "PICK_UP"
	FulfillmentDelivery FulfillmentType = "DELIVERY"
)

func (f FulfillmentType) Valid() bool {
	return f == FulfillmentPickUp || f == FulfillmentDelivery
}
