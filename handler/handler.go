package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"grocery-backend/model"
	"grocery-backend/service"
	"grocery-backend/store"
)

// Handler is the HTTP layer that talks to service.ServiceInterface.
type Handler struct {
	svc service.ServiceInterface
	log *zap.Logger
}

func NewHandler(s service.ServiceInterface, log *zap.Logger) *Handler {
	return &Handler{svc: s, log: log}
}

// RegisterRoutes registers all routes on the provided router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")

	// Products
	r.HandleFunc("/products", h.CreateProduct).Methods("POST")
	r.HandleFunc("/products/list", h.ListProducts).Methods("GET")
	r.HandleFunc("/products/restock", h.Restock).Methods("POST")
	r.HandleFunc("/products/{id:[0-9]+}", h.GetProduct).Methods("GET")

	// Categories and merchants
	r.HandleFunc("/categories/big", h.AddBigCategory).Methods("POST")
	r.HandleFunc("/categories/small", h.AddSmallCategory).Methods("POST")
	r.HandleFunc("/merchants", h.AddMerchant).Methods("POST")
	r.HandleFunc("/merchants/update", h.UpdateMerchant).Methods("POST")

	// Cart
	r.HandleFunc("/cart/add", h.AddToCart).Methods("POST")
	r.HandleFunc("/cart/remove", h.RemoveFromCart).Methods("POST")
	r.HandleFunc("/cart/{id}", h.GetCart).Methods("GET")

	// Checkout and orders
	r.HandleFunc("/checkout/order", h.PlaceOrder).Methods("POST")
	r.HandleFunc("/orders/status", h.ChangeOrderStatus).Methods("POST")
	r.HandleFunc("/orders/{id:[0-9]+}", h.GetOrder).Methods("GET")
}

// --- request shapes ---

type createProductReq struct {
	Name            string `json:"name"`
	SellingPrice    int64  `json:"selling_price"`
	CostPrice       int64  `json:"cost_price"`
	NumOfStock      int    `json:"num_of_stock"`
	SmallCategoryID int64  `json:"small_category_id"`
	MerchantID      int64  `json:"merchant_id"`
}

type restockReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type addRemoveCartReq struct {
	CartID     string `json:"cart_id,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
	ProductID  int64  `json:"product_id"`
	Quantity   int    `json:"quantity,omitempty"` // optional for remove
}

type placeOrderReq struct {
	CartID          string `json:"cart_id"`
	CustomerName    string `json:"customer_name"`
	Address         string `json:"address"`
	FulfillmentType string `json:"fulfillment_type"`
}

type changeStatusReq struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

type categoryReq struct {
	Name          string `json:"name"`
	BigCategoryID int64  `json:"big_category_id,omitempty"`
}

type merchantReq struct {
	ID      int64   `json:"id,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeSvcErr maps the store error set onto HTTP status codes. An
// insufficient-stock failure carries its detail fields in the body.
func (h *Handler) writeSvcErr(w http.ResponseWriter, err error) {
	var stockErr *store.InsufficientStockError
	if errors.As(err, &stockErr) {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":     stockErr.Error(),
			"product":   stockErr.ProductName,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
		return
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrInvalidArgument):
		code = http.StatusBadRequest
	case errors.Is(err, store.ErrPermissionDenied):
		code = http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, store.ErrEmptyCart):
		code = http.StatusConflict
	case errors.Is(err, store.ErrUnavailable):
		code = http.StatusServiceUnavailable
	}
	if code == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	writeErr(w, code, err.Error())
}

// staffID extracts the acting staff member's id from a Bearer token.
func staffID(r *http.Request) (int64, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// --- handlers ---

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), req.Name, req.SellingPrice, req.CostPrice,
		req.NumOfStock, req.SmallCategoryID, req.MerchantID)
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.ListProducts(r.Context())
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Restock requires a Bearer staff id; only managers pass the service check.
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	sid, ok := staffID(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req restockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.svc.Restock(r.Context(), sid, req.ProductID, req.Quantity)
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) AddBigCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	c, err := h.svc.AddBigCategory(r.Context(), req.Name)
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) AddSmallCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	c, err := h.svc.AddSmallCategory(r.Context(), req.Name, req.BigCategoryID)
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) AddMerchant(w http.ResponseWriter, r *http.Request) {
	var req merchantReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	var email, phone, address string
	if req.Email != nil {
		email = *req.Email
	}
	if req.Phone != nil {
		phone = *req.Phone
	}
	if req.Address != nil {
		address = *req.Address
	}
	m, err := h.svc.AddMerchant(r.Context(), email, phone, address)
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) UpdateMerchant(w http.ResponseWriter, r *http.Request) {
	var req merchantReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ID == 0 {
		writeErr(w, http.StatusBadRequest, "id required")
		return
	}
	m, err := h.svc.UpdateMerchant(r.Context(), req.ID, req.Email, req.Phone, req.Address)
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// AddToCart handles POST /cart/add
// body: { "cart_id": "...", "customer_id": "...", "product_id": 1, "quantity": 2 }
// cart_id may be omitted; a fresh cart is created and returned.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addRemoveCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	cart, err := h.svc.AddItemToCart(r.Context(), req.CartID, req.CustomerID, req.ProductID, req.Quantity)
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// RemoveFromCart handles POST /cart/remove
// body: { "cart_id": "...", "product_id": 1 }
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req addRemoveCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	cart, err := h.svc.RemoveItemFromCart(r.Context(), req.CartID, req.ProductID)
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.GetCart(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// PlaceOrder handles POST /checkout/order
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	ord, err := h.svc.PlaceOrder(r.Context(), req.CartID, req.CustomerName, req.Address,
		model.FulfillmentType(req.FulfillmentType))
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ord)
}

func (h *Handler) ChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req changeStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	ord, err := h.svc.ChangeOrderStatus(r.Context(), req.OrderID, model.OrderStatus(req.Status))
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ord)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid order id")
		return
	}
	ord, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		h.writeSvcErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ord)
}
