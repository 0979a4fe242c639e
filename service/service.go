package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"grocery-backend/model"
	"grocery-backend/store"
)

// managerRole is the staff role allowed to restock products.
const managerRole = "Manager"

type Service struct {
	store     store.Store
	log       *zap.Logger
	policy    TransitionPolicy
	opTimeout time.Duration
}

func NewService(s store.Store, log *zap.Logger, opTimeout time.Duration) *Service {
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	return &Service{
		store:     s,
		log:       log,
		policy:    AllowAllTransitions,
		opTimeout: opTimeout,
	}
}

// SetTransitionPolicy replaces the order status transition policy.
func (s *Service) SetTransitionPolicy(p TransitionPolicy) {
	if p != nil {
		s.policy = p
	}
}

// withTimeout bounds every store call so lock contention surfaces as a
// retryable failure instead of a hang.
func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *Service) CreateProduct(ctx context.Context, name string, sellingPrice, costPrice int64, stock int, smallCategoryID, merchantID int64) (ProductDTO, error) {
	if name == "" {
		return ProductDTO{}, fmt.Errorf("%w: name required", store.ErrInvalidArgument)
	}
	if sellingPrice < 0 || costPrice < 0 {
		return ProductDTO{}, fmt.Errorf("%w: price must be >= 0", store.ErrInvalidArgument)
	}
	if stock < 0 {
		return ProductDTO{}, fmt.Errorf("%w: stock must be >= 0", store.ErrInvalidArgument)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	p, err := s.store.CreateProduct(ctx, name, sellingPrice, costPrice, stock, smallCategoryID, merchantID)
	if err != nil {
		return ProductDTO{}, err
	}
	return toProductDTO(p), nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (ProductDTO, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return ProductDTO{}, err
	}
	return toProductDTO(p), nil
}

func (s *Service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, toProductDTO(r))
	}
	return out, nil
}

// Restock requires the acting staff member to hold the Manager role.
func (s *Service) Restock(ctx context.Context, staffID, productID int64, qty int) (ProductDTO, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	staff, err := s.store.GetStaff(ctx, staffID)
	if err != nil {
		return ProductDTO{}, fmt.Errorf("%w: unknown staff", store.ErrPermissionDenied)
	}
	if staff.Role != managerRole {
		return ProductDTO{}, fmt.Errorf("%w: only managers can restock", store.ErrPermissionDenied)
	}

	p, err := s.store.Restock(ctx, productID, qty)
	if err != nil {
		return ProductDTO{}, err
	}
	s.log.Info("product restocked",
		zap.Int64("product_id", productID),
		zap.Int("quantity", qty),
		zap.Int64("staff_id", staffID))
	return toProductDTO(p), nil
}

func (s *Service) AddBigCategory(ctx context.Context, name string) (BigCategoryDTO, error) {
	if name == "" {
		return BigCategoryDTO{}, fmt.Errorf("%w: name required", store.ErrInvalidArgument)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	c, err := s.store.AddBigCategory(ctx, name)
	if err != nil {
		return BigCategoryDTO{}, err
	}
	return BigCategoryDTO{ID: c.ID, Name: c.Name}, nil
}

func (s *Service) AddSmallCategory(ctx context.Context, name string, bigCategoryID int64) (SmallCategoryDTO, error) {
	if name == "" {
		return SmallCategoryDTO{}, fmt.Errorf("%w: name required", store.ErrInvalidArgument)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	c, err := s.store.AddSmallCategory(ctx, name, bigCategoryID)
	if err != nil {
		return SmallCategoryDTO{}, err
	}
	return SmallCategoryDTO{ID: c.ID, Name: c.Name, BigCategoryID: c.BigCategoryID}, nil
}

func (s *Service) AddMerchant(ctx context.Context, email, phone, address string) (MerchantDTO, error) {
	if email == "" || phone == "" || address == "" {
		return MerchantDTO{}, fmt.Errorf("%w: email, phone and address required", store.ErrInvalidArgument)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	m, err := s.store.AddMerchant(ctx, email, phone, address)
	if err != nil {
		return MerchantDTO{}, err
	}
	return toMerchantDTO(m), nil
}

func (s *Service) UpdateMerchant(ctx context.Context, id int64, email, phone, address *string) (MerchantDTO, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	m, err := s.store.UpdateMerchant(ctx, id, email, phone, address)
	if err != nil {
		return MerchantDTO{}, err
	}
	return toMerchantDTO(m), nil
}

func (s *Service) AddItemToCart(ctx context.Context, cartID, customerID string, productID int64, qty int) (CartDTO, error) {
	if qty <= 0 {
		return CartDTO{}, fmt.Errorf("%w: quantity must be > 0", store.ErrInvalidArgument)
	}
	if productID <= 0 {
		return CartDTO{}, fmt.Errorf("%w: product_id required", store.ErrInvalidArgument)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	cart, items, err := s.store.AddItem(ctx, cartID, customerID, productID, qty)
	if err != nil {
		return CartDTO{}, err
	}
	return toCartDTO(cart, items), nil
}

func (s *Service) RemoveItemFromCart(ctx context.Context, cartID string, productID int64) (CartDTO, error) {
	if cartID == "" {
		return CartDTO{}, fmt.Errorf("%w: cart_id required", store.ErrInvalidArgument)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	cart, items, err := s.store.RemoveItem(ctx, cartID, productID)
	if err != nil {
		return CartDTO{}, err
	}
	return toCartDTO(cart, items), nil
}

func (s *Service) GetCart(ctx context.Context, cartID string) (CartDTO, error) {
	if cartID == "" {
		return CartDTO{}, fmt.Errorf("%w: cart_id required", store.ErrInvalidArgument)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	cart, items, err := s.store.GetCart(ctx, cartID)
	if err != nil {
		return CartDTO{}, err
	}
	return toCartDTO(cart, items), nil
}

func (s *Service) PlaceOrder(ctx context.Context, cartID, customerName, address string, fulfillment model.FulfillmentType) (OrderDTO, error) {
	if cartID == "" {
		return OrderDTO{}, fmt.Errorf("%w: cart_id required", store.ErrInvalidArgument)
	}
	if customerName == "" || address == "" {
		return OrderDTO{}, fmt.Errorf("%w: customer_name and address required", store.ErrInvalidArgument)
	}
	if !fulfillment.Valid() {
		return OrderDTO{}, fmt.Errorf("%w: fulfillment_type must be PICK_UP or DELIVERY", store.ErrInvalidArgument)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	order, items, err := s.store.PlaceOrder(ctx, cartID, customerName, address, fulfillment)
	if err != nil {
		return OrderDTO{}, err
	}
	s.log.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.String("cart_id", cartID),
		zap.Int("lines", len(items)))
	return toOrderDTO(order, items), nil
}

func (s *Service) ChangeOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) (OrderDTO, error) {
	if !status.Valid() {
		return OrderDTO{}, fmt.Errorf("%w: unknown status %q", store.ErrInvalidArgument, status)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, _, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return OrderDTO{}, err
	}
	if err := s.policy(current.Status, status); err != nil {
		return OrderDTO{}, fmt.Errorf("%w: %v", store.ErrInvalidArgument, err)
	}

	order, err := s.store.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return OrderDTO{}, err
	}
	return toOrderDTO(order, nil), nil
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (OrderDTO, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	order, items, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return OrderDTO{}, err
	}
	return toOrderDTO(order, items), nil
}

// DTOs
type ProductDTO struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	SellingPrice    int64  `json:"selling_price"`
	CostPrice       int64  `json:"cost_price"`
	NumOfStock      int    `json:"num_of_stock"`
	SmallCategoryID int64  `json:"small_category_id"`
	MerchantID      int64  `json:"merchant_id"`
}

type BigCategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type SmallCategoryDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	BigCategoryID int64  `json:"big_category_id"`
}

type MerchantDTO struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type CartItemDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CartDTO struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customer_id,omitempty"`
	UpdatedAt  time.Time     `json:"updated_at"`
	Items      []CartItemDTO `json:"items"`
}

type OrderItemDTO struct {
	ProductID       int64 `json:"product_id"`
	Quantity        int   `json:"quantity"`
	PriceAtPurchase int64 `json:"price_at_purchase"`
}

type OrderDTO struct {
	ID              int64                 `json:"id"`
	CustomerName    string                `json:"customer_name"`
	Address         string                `json:"address"`
	FulfillmentType model.FulfillmentType `json:"fulfillment_type"`
	Status          model.OrderStatus     `json:"status"`
	CreatedAt       time.Time             `json:"created_at"`
	Items           []OrderItemDTO        `json:"items,omitempty"`
}

func toProductDTO(p store.ProductRow) ProductDTO {
	return ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		SellingPrice:    p.SellingPrice,
		CostPrice:       p.CostPrice,
		NumOfStock:      p.NumOfStock,
		SmallCategoryID: p.SmallCategoryID,
		MerchantID:      p.MerchantID,
	}
}

func toMerchantDTO(m store.MerchantRow) MerchantDTO {
	return MerchantDTO{ID: m.ID, Email: m.Email, Phone: m.Phone, Address: m.Address}
}

func toCartDTO(cart store.CartRow, items []store.CartItemRow) CartDTO {
	dto := CartDTO{
		ID:        cart.ID,
		UpdatedAt: cart.UpdatedAt,
		Items:     make([]CartItemDTO, 0, len(items)),
	}
	if cart.CustomerID.Valid {
		dto.CustomerID = cart.CustomerID.String
	}
	for _, it := range items {
		dto.Items = append(dto.Items, CartItemDTO{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return dto
}

func toOrderDTO(order store.OrderRow, items []store.OrderItemRow) OrderDTO {
	dto := OrderDTO{
		ID:              order.ID,
		CustomerName:    order.CustomerName,
		Address:         order.Address,
		FulfillmentType: order.FulfillmentType,
		Status:          order.Status,
		CreatedAt:       order.CreatedAt,
	}
	for _, it := range items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.PriceAtPurchase,
		})
	}
	return dto
}
