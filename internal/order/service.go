package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tixly/internal/logger"
	"tixly/internal/models"
	"tixly/internal/observability"
	"tixly/internal/utils"
)

const (
	MinQuantity = 1
	MaxQuantity = 5
)

var (
	ErrInvalidQuantity = fmt.Errorf("quantity must be between %d and %d", MinQuantity, MaxQuantity)
	ErrEventNotOnSale  = errors.New("event is not open for orders")
	ErrSoldOut         = errors.New("not enough tickets remaining")
)

type DBLayer interface {
	GetOrderByID(id string) (*models.Order, error)
	CreateOrderWithTickets(order models.Order, tickets []models.Ticket) error
	UpdateOrder(order models.Order) error
	DeleteOrder(id string) error
	GetOrdersByUser(userID string) ([]models.Order, error)
	GetOrdersByEvent(eventID string, statuses ...string) ([]models.Order, error)
	IncrementTicketsSold(eventID string, quantity int) error
	GetOrdersWithTicketsByUserID(userID string) ([]models.OrderWithTickets, error)
}

type InventoryReserver interface {
	Reserve(eventID, orderID string, quantity, available int) (bool, error)
	Commit(orderID string) error
	Release(orderID string) error
	ReleaseExpired(eventID string, quantity int) error
}

type KafkaPublisher interface {
	PublishOrderCreated(order models.Order) error
	PublishOrderConfirmed(order models.Order) error
	PublishOrderCancelled(order models.Order) error
}

type EventStore interface {
	GetEventByID(id string) (*models.Event, error)
	GetEventLocation(id string) (string, error)
}

type TicketIssuer interface {
	IssueForOrder(orderID string) ([]models.Ticket, error)
}

type TicketMailer interface {
	SendTicket(to string, order models.Order, ticket models.Ticket) error
}

type OrderService struct {
	DB        DBLayer
	Inventory InventoryReserver
	Kafka     KafkaPublisher
	Events    EventStore
	Issuer    TicketIssuer
	Mailer    TicketMailer
	logger    *logger.Logger
}

func NewOrderService(db DBLayer, inventory InventoryReserver, kafka KafkaPublisher, events EventStore, issuer TicketIssuer, mailer TicketMailer, log *logger.Logger) *OrderService {
	return &OrderService{
		DB:        db,
		Inventory: inventory,
		Kafka:     kafka,
		Events:    events,
		Issuer:    issuer,
		Mailer:    mailer,
		logger:    log,
	}
}

// ClampQuantity bounds a ticket-selector value to [0,5]; the UI
// increments and decrements freely and the bound holds regardless.
func ClampQuantity(q int) int {
	if q < 0 {
		return 0
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// PlaceOrder reserves inventory, then writes the order and its tickets
// in one transaction. Free events confirm immediately; paid events stay
// pending until the payment intent succeeds.
func (s *OrderService) PlaceOrder(userID, userEmail string, req models.OrderRequest) (*models.Order, error) {
	if req.Quantity < MinQuantity || req.Quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	event, err := s.Events.GetEventByID(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("event %s not found: %w", req.EventID, err)
	}
	if event.Status != models.EventPublished {
		return nil, ErrEventNotOnSale
	}

	orderID := uuid.NewString()
	available := event.TicketsCount - event.TicketsSold

	ok, err := s.Inventory.Reserve(event.ID, orderID, req.Quantity, available)
	if err != nil {
		return nil, fmt.Errorf("inventory reservation error: %w", err)
	}
	if !ok {
		return nil, ErrSoldOut
	}

	totalPrice := event.Price * float64(req.Quantity)
	if event.IsFree {
		totalPrice = 0
	}

	location, err := s.Events.GetEventLocation(event.ID)
	if err != nil {
		s.logger.Warn("ORDER", fmt.Sprintf("No venue location for event %s: %v", event.ID, err))
	}

	order := models.Order{
		OrderID:       orderID,
		EventID:       event.ID,
		UserID:        userID,
		UserEmail:     userEmail,
		Quantity:      req.Quantity,
		TotalPrice:    totalPrice,
		Status:        models.OrderPending,
		EventName:     event.Title,
		EventDate:     event.StartDate,
		EventLocation: location,
		CreatedAt:     time.Now(),
	}

	tickets := make([]models.Ticket, req.Quantity)
	for i := range tickets {
		tickets[i] = models.Ticket{
			TicketID:     uuid.NewString(),
			OrderID:      orderID,
			TicketNumber: utils.GenerateTicketNumber(),
		}
	}

	if err := s.DB.CreateOrderWithTickets(order, tickets); err != nil {
		s.logger.LogOrder("CREATE", orderID, fmt.Sprintf("DB write failed, releasing reservation: %v", err))
		if relErr := s.Inventory.Release(orderID); relErr != nil {
			s.logger.Error("ORDER", fmt.Sprintf("Failed to release reservation for %s: %v", orderID, relErr))
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	observability.OrdersPlaced.WithLabelValues(order.Status).Inc()

	if err := s.Kafka.PublishOrderCreated(order); err != nil {
		s.logger.LogKafka("PUBLISH", "order.created", fmt.Sprintf("publish failed: %v", err))
	}

	if event.IsFree {
		if err := s.ConfirmOrder(orderID); err != nil {
			return nil, fmt.Errorf("failed to confirm free order: %w", err)
		}
		return s.DB.GetOrderByID(orderID)
	}

	return &order, nil
}

// ConfirmOrder moves a pending order to confirmed: inventory is
// committed, tickets_sold advances, tickets are issued and emailed.
// Confirming an already-confirmed order is a no-op so webhook retries
// and the client-side fallback cannot double-issue.
func (s *OrderService) ConfirmOrder(orderID string) error {
	order, err := s.DB.GetOrderByID(orderID)
	if err != nil {
		return fmt.Errorf("order %s not found: %w", orderID, err)
	}
	if order.Status == models.OrderConfirmed {
		return nil
	}
	if order.Status != models.OrderPending {
		return fmt.Errorf("cannot confirm order in status %s", order.Status)
	}

	order.Status = models.OrderConfirmed
	if err := s.DB.UpdateOrder(*order); err != nil {
		return fmt.Errorf("failed to confirm order %s: %w", orderID, err)
	}

	if err := s.DB.IncrementTicketsSold(order.EventID, order.Quantity); err != nil {
		s.logger.Error("ORDER", fmt.Sprintf("Failed to advance tickets_sold for event %s: %v", order.EventID, err))
	}
	if err := s.Inventory.Commit(orderID); err != nil {
		s.logger.Error("ORDER", fmt.Sprintf("Failed to commit reservation for %s: %v", orderID, err))
	}

	tickets, err := s.Issuer.IssueForOrder(orderID)
	if err != nil {
		return fmt.Errorf("failed to issue tickets for order %s: %w", orderID, err)
	}
	observability.TicketsIssued.Add(float64(len(tickets)))

	for _, ticket := range tickets {
		if err := s.Mailer.SendTicket(order.UserEmail, *order, ticket); err != nil {
			observability.EmailSendFailures.Inc()
			s.logger.LogEmail(order.UserEmail, "ticket", fmt.Sprintf("send failed for %s: %v", ticket.TicketID, err))
		}
	}

	if err := s.Kafka.PublishOrderConfirmed(*order); err != nil {
		s.logger.LogKafka("PUBLISH", "order.confirmed", fmt.Sprintf("publish failed: %v", err))
	}

	s.logger.LogOrder("CONFIRM", orderID, fmt.Sprintf("%d tickets issued", len(tickets)))
	return nil
}

// CancelOrder cancels a pending order and returns its reservation.
func (s *OrderService) CancelOrder(orderID string) error {
	order, err := s.DB.GetOrderByID(orderID)
	if err != nil {
		return fmt.Errorf("order %s not found: %w", orderID, err)
	}
	if order.Status != models.OrderPending {
		return errors.New("cannot cancel a non-pending order")
	}

	order.Status = models.OrderCancelled
	if err := s.DB.UpdateOrder(*order); err != nil {
		return fmt.Errorf("failed to cancel order %s: %w", orderID, err)
	}

	if err := s.Inventory.Release(orderID); err != nil {
		s.logger.Error("ORDER", fmt.Sprintf("Failed to release reservation for %s: %v", orderID, err))
	}

	if err := s.Kafka.PublishOrderCancelled(*order); err != nil {
		s.logger.LogKafka("PUBLISH", "order.cancelled", fmt.Sprintf("publish failed: %v", err))
	}
	return nil
}

// HandleReservationExpiry is invoked when a pending reservation's TTL
// fires: the still-pending order is cancelled and its units returned.
// The redis key is already gone, so quantities come from the order row.
func (s *OrderService) HandleReservationExpiry(orderID string) error {
	order, err := s.DB.GetOrderByID(orderID)
	if err != nil {
		return fmt.Errorf("order %s not found: %w", orderID, err)
	}
	if order.Status != models.OrderPending {
		return nil
	}

	order.Status = models.OrderCancelled
	if err := s.DB.UpdateOrder(*order); err != nil {
		return fmt.Errorf("failed to cancel expired order %s: %w", orderID, err)
	}
	if err := s.Inventory.ReleaseExpired(order.EventID, order.Quantity); err != nil {
		s.logger.Error("ORDER", fmt.Sprintf("Failed to return expired inventory for %s: %v", orderID, err))
	}
	if err := s.Kafka.PublishOrderCancelled(*order); err != nil {
		s.logger.LogKafka("PUBLISH", "order.cancelled", fmt.Sprintf("publish failed: %v", err))
	}

	s.logger.LogOrder("EXPIRE", orderID, "reservation TTL elapsed, order cancelled")
	return nil
}

func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	return s.DB.GetOrderByID(id)
}

func (s *OrderService) GetOrdersWithTicketsByUserID(userID string) ([]models.OrderWithTickets, error) {
	return s.DB.GetOrdersWithTicketsByUserID(userID)
}
