package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tixly/internal/auth"
	"tixly/internal/logger"
	"tixly/internal/models"
	"tixly/internal/order"
)

type Handler struct {
	OrderService   *order.OrderService
	ConnectService *order.ConnectService
	Logger         *logger.Logger
}

func NewHandler(orderService *order.OrderService, connectService *order.ConnectService, log *logger.Logger) *Handler {
	return &Handler{
		OrderService:   orderService,
		ConnectService: connectService,
		Logger:         log,
	}
}

// PlaceOrder creates an order plus its tickets. Free events come back
// already confirmed.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var orderReq models.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&orderReq); err != nil {
		h.Logger.Error("API", fmt.Sprintf("PlaceOrder: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	// The web selector runs 0..5; zero never reaches the service.
	orderReq.Quantity = order.ClampQuantity(orderReq.Quantity)

	userID := auth.UserID(r.Context())
	userEmail := auth.UserEmail(r.Context())

	placed, err := h.OrderService.PlaceOrder(userID, userEmail, orderReq)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, order.ErrSoldOut) {
			status = http.StatusConflict
		}
		h.Logger.Error("API", fmt.Sprintf("PlaceOrder: %v", err))
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(placed); err != nil {
		h.Logger.Error("API", fmt.Sprintf("PlaceOrder: failed to encode response: %v", err))
	}
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	orderData, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOrder: order not found: %v", err))
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	if orderData.UserID != auth.UserID(r.Context()) && auth.UserRole(r.Context()) != models.RoleAdmin {
		http.Error(w, "not your order", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(orderData); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOrder: failed to encode response: %v", err))
	}
}

// GetMyOrders returns the caller's orders with their tickets.
func (h *Handler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	ordersWithTickets, err := h.OrderService.GetOrdersWithTicketsByUserID(userID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetMyOrders: %v", err))
		http.Error(w, "Failed to retrieve orders: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ordersWithTickets); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetMyOrders: failed to encode response: %v", err))
	}
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	orderData, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if orderData.UserID != auth.UserID(r.Context()) && auth.UserRole(r.Context()) != models.RoleAdmin {
		http.Error(w, "not your order", http.StatusForbidden)
		return
	}

	if err := h.OrderService.CancelOrder(orderID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelOrder: %v", err))
		http.Error(w, "Could not cancel order: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConfirmOrder is the client-side fallback after Stripe Elements
// reports success; the webhook normally gets there first and the
// transition is idempotent.
func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	orderData, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if orderData.UserID != auth.UserID(r.Context()) {
		http.Error(w, "not your order", http.StatusForbidden)
		return
	}

	if err := h.OrderService.ConfirmOrder(orderID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ConfirmOrder: %v", err))
		http.Error(w, "Could not confirm order: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"confirmed"}`))
}
