package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"tixly/internal/order"
)

// CreatePaymentIntent serves POST /api/create-payment-intent. The body
// carries either an order_id (preferred; amount derives from the order)
// or a bare amount in minor units, matching the original contract.
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"order_id"`
		Amount  int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var clientSecret string
	switch {
	case req.OrderID != "":
		intent, err := h.OrderService.CreatePaymentIntent(req.OrderID)
		if err != nil {
			h.Logger.Error("API", fmt.Sprintf("CreatePaymentIntent: %v", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		clientSecret = intent.ClientSecret
	case req.Amount > 0:
		intent, err := h.OrderService.CreateBareIntent(req.Amount)
		if err != nil {
			h.Logger.Error("API", fmt.Sprintf("CreatePaymentIntent: %v", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		clientSecret = intent.ClientSecret
	default:
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"clientSecret": clientSecret})
}

// StripeWebhook receives payment intent lifecycle events from Stripe.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	if err := h.OrderService.HandleStripeWebhook(r); err != nil {
		if werr, ok := err.(*order.WebhookError); ok {
			http.Error(w, werr.PublicError, werr.StatusCode)
			return
		}
		http.Error(w, "Webhook processing error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// CreateAccount serves POST /api/create-account for organizer payouts.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	accountID, url, err := h.ConnectService.CreateAccount(req.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateAccount: %v", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"accountId":     accountID,
		"onboardingUrl": url,
	})
}

// Onboard serves POST /api/onboard: a fresh single-use onboarding link.
func (h *Handler) Onboard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"accountId"`
		UserID    string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountID == "" || req.UserID == "" {
		http.Error(w, "accountId and userId are required", http.StatusBadRequest)
		return
	}

	url, err := h.ConnectService.OnboardingLink(req.AccountID, req.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Onboard: %v", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"url":     url,
		"success": true,
	})
}
