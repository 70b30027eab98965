package order

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"

	"tixly/internal/models"
)

// InitStripe initializes the Stripe API with the secret key.
func InitStripe() {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
}

// Per-order guard against concurrent intent creation from double-submits.
var paymentIntentLocks = make(map[string]bool)
var paymentIntentMutex = &sync.Mutex{}

// CreatePaymentIntent creates (or reuses) a Stripe payment intent for a
// pending order. Amount is totalPrice in cents.
func (s *OrderService) CreatePaymentIntent(orderID string) (*stripe.PaymentIntent, error) {
	s.logger.LogPayment("INTENT", orderID, "creating payment intent")

	paymentIntentMutex.Lock()
	if _, locked := paymentIntentLocks[orderID]; locked {
		paymentIntentMutex.Unlock()
		s.logger.Warn("PAYMENT", fmt.Sprintf("Payment intent creation for order %s already in progress", orderID))
		time.Sleep(500 * time.Millisecond)
		return s.CreatePaymentIntent(orderID)
	}
	paymentIntentLocks[orderID] = true
	paymentIntentMutex.Unlock()

	defer func() {
		paymentIntentMutex.Lock()
		delete(paymentIntentLocks, orderID)
		paymentIntentMutex.Unlock()
	}()

	order, err := s.DB.GetOrderByID(orderID)
	if err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("Failed to find order %s: %v", orderID, err))
		return nil, err
	}

	if order.Status != models.OrderPending {
		s.logger.Warn("PAYMENT", fmt.Sprintf("Cannot create payment intent for order %s with status %s", orderID, order.Status))
		return nil, fmt.Errorf("cannot create payment intent for an order that is not pending")
	}
	if order.TotalPrice <= 0 {
		return nil, fmt.Errorf("order %s has no payable amount", orderID)
	}

	// Reuse an existing intent when it is still usable.
	if order.PaymentIntentID != "" {
		intent, err := paymentintent.Get(order.PaymentIntentID, nil)
		if err != nil {
			s.logger.Error("PAYMENT", fmt.Sprintf("Failed to retrieve existing payment intent %s: %v", order.PaymentIntentID, err))
		} else if intent.Status != stripe.PaymentIntentStatusCanceled && intent.Status != stripe.PaymentIntentStatusSucceeded {
			s.logger.LogPayment("INTENT", orderID, fmt.Sprintf("reusing intent %s (%s)", intent.ID, intent.Status))
			return intent, nil
		}
	}

	return s.newPaymentIntent(order.OrderID, order.TotalPrice, order)
}

// CreateBareIntent serves the legacy contract that only carries an
// amount in minor units and no order reference.
func (s *OrderService) CreateBareIntent(amountCents int64) (*stripe.PaymentIntent, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	return paymentintent.New(params)
}

func (s *OrderService) newPaymentIntent(orderID string, totalPrice float64, order *models.Order) (*stripe.PaymentIntent, error) {
	amountInCents := int64(totalPrice * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_id", orderID)

	intent, err := paymentintent.New(params)
	if err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("Failed to create payment intent: %v", err))
		return nil, err
	}

	order.PaymentIntentID = intent.ID
	if err := s.DB.UpdateOrder(*order); err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("Failed to store payment intent id on order: %v", err))
		return nil, err
	}

	s.logger.LogPayment("INTENT", orderID, fmt.Sprintf("created %s (USD %.2f)", intent.ID, totalPrice))
	return intent, nil
}

// WebhookError separates what is safe to show a caller from what goes
// to the logs.
type WebhookError struct {
	Category      string // "configuration", "validation", "processing"
	StatusCode    int
	PublicError   string
	InternalError string
	OriginalErr   error
}

func (e *WebhookError) Error() string {
	return e.InternalError
}

// HandleStripeWebhook verifies and processes payment intent events.
func (s *OrderService) HandleStripeWebhook(r *http.Request) error {
	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if webhookSecret == "" {
		s.logger.Error("WEBHOOK", "Stripe webhook secret is not configured")
		return &WebhookError{
			Category:      "configuration",
			StatusCode:    http.StatusInternalServerError,
			PublicError:   "Webhook processing error",
			InternalError: "Stripe webhook secret is not configured",
		}
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid webhook payload",
			InternalError: fmt.Sprintf("Failed to read webhook payload: %v", err),
			OriginalErr:   err,
		}
	}

	opts := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), webhookSecret, opts)
	if err != nil {
		s.logger.Error("WEBHOOK", fmt.Sprintf("Signature verification failed: %v", err))
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid webhook signature",
			InternalError: fmt.Sprintf("Invalid webhook signature: %v", err),
			OriginalErr:   err,
		}
	}

	s.logger.Info("WEBHOOK", fmt.Sprintf("Processing Stripe webhook event: %s", event.Type))

	switch event.Type {
	case "payment_intent.succeeded":
		orderID, werr := orderIDFromEvent(event)
		if werr != nil {
			return werr
		}
		if err := s.ConfirmOrder(orderID); err != nil {
			s.logger.Error("WEBHOOK", fmt.Sprintf("Failed to confirm order %s: %v", orderID, err))
			return &WebhookError{
				Category:      "processing",
				StatusCode:    http.StatusInternalServerError,
				PublicError:   "Failed to process payment",
				InternalError: fmt.Sprintf("Failed to confirm order %s: %v", orderID, err),
				OriginalErr:   err,
			}
		}
		s.logger.Info("WEBHOOK", fmt.Sprintf("Payment succeeded, order %s confirmed", orderID))

	case "payment_intent.payment_failed":
		orderID, werr := orderIDFromEvent(event)
		if werr != nil {
			return werr
		}
		if err := s.CancelOrder(orderID); err != nil {
			s.logger.Error("WEBHOOK", fmt.Sprintf("Failed to cancel order %s after payment failure: %v", orderID, err))
			return &WebhookError{
				Category:      "processing",
				StatusCode:    http.StatusInternalServerError,
				PublicError:   "Failed to cancel order after payment failure",
				InternalError: fmt.Sprintf("Failed to cancel order %s: %v", orderID, err),
				OriginalErr:   err,
			}
		}
		s.logger.Info("WEBHOOK", fmt.Sprintf("Payment failed, order %s cancelled", orderID))

	default:
		s.logger.Info("WEBHOOK", fmt.Sprintf("Unhandled event type: %s", event.Type))
	}

	return nil
}

func orderIDFromEvent(event stripe.Event) (string, *WebhookError) {
	var paymentIntent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
		return "", &WebhookError{
			Category:      "processing",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid event data",
			InternalError: fmt.Sprintf("Failed to unmarshal payment intent: %v", err),
			OriginalErr:   err,
		}
	}
	orderID, exists := paymentIntent.Metadata["order_id"]
	if !exists {
		return "", &WebhookError{
			Category:      "processing",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid payment intent data",
			InternalError: "Payment intent has no order_id in metadata",
		}
	}
	return orderID, nil
}
