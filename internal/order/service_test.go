package order_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tixly/internal/logger"
	"tixly/internal/models"
	"tixly/internal/order"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) GetOrderByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) CreateOrderWithTickets(order models.Order, tickets []models.Ticket) error {
	args := m.Called(order, tickets)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateOrder(order models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteOrder(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDBLayer) GetOrdersByUser(userID string) ([]models.Order, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockDBLayer) GetOrdersByEvent(eventID string, statuses ...string) ([]models.Order, error) {
	args := m.Called(eventID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockDBLayer) IncrementTicketsSold(eventID string, quantity int) error {
	args := m.Called(eventID, quantity)
	return args.Error(0)
}

func (m *MockDBLayer) GetOrdersWithTicketsByUserID(userID string) ([]models.OrderWithTickets, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderWithTickets), args.Error(1)
}

type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) Reserve(eventID, orderID string, quantity, available int) (bool, error) {
	args := m.Called(eventID, orderID, quantity, available)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventory) Commit(orderID string) error {
	args := m.Called(orderID)
	return args.Error(0)
}

func (m *MockInventory) Release(orderID string) error {
	args := m.Called(orderID)
	return args.Error(0)
}

func (m *MockInventory) ReleaseExpired(eventID string, quantity int) error {
	args := m.Called(eventID, quantity)
	return args.Error(0)
}

type MockKafka struct {
	mock.Mock
}

func (m *MockKafka) PublishOrderCreated(order models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockKafka) PublishOrderConfirmed(order models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockKafka) PublishOrderCancelled(order models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) GetEventByID(id string) (*models.Event, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventStore) GetEventLocation(id string) (string, error) {
	args := m.Called(id)
	return args.String(0), args.Error(1)
}

type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) IssueForOrder(orderID string) ([]models.Ticket, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendTicket(to string, order models.Order, ticket models.Ticket) error {
	args := m.Called(to, order, ticket)
	return args.Error(0)
}

type serviceMocks struct {
	db        *MockDBLayer
	inventory *MockInventory
	kafka     *MockKafka
	events    *MockEventStore
	issuer    *MockIssuer
	mailer    *MockMailer
}

func newService(t *testing.T) (*order.OrderService, *serviceMocks) {
	t.Helper()
	m := &serviceMocks{
		db:        new(MockDBLayer),
		inventory: new(MockInventory),
		kafka:     new(MockKafka),
		events:    new(MockEventStore),
		issuer:    new(MockIssuer),
		mailer:    new(MockMailer),
	}
	svc := order.NewOrderService(m.db, m.inventory, m.kafka, m.events, m.issuer, m.mailer, logger.NewLogger())
	return svc, m
}

func paidEvent() *models.Event {
	return &models.Event{
		ID:           uuid.NewString(),
		Title:        "Jazz Night",
		StartDate:    time.Now().Add(48 * time.Hour),
		Price:        25.0,
		TicketsCount: 100,
		TicketsSold:  10,
		Status:       models.EventPublished,
	}
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 0, order.ClampQuantity(-3))
	assert.Equal(t, 0, order.ClampQuantity(0))
	assert.Equal(t, 3, order.ClampQuantity(3))
	assert.Equal(t, 5, order.ClampQuantity(5))
	assert.Equal(t, 5, order.ClampQuantity(12))
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	svc, _ := newService(t)

	for _, q := range []int{0, -1, 6} {
		_, err := svc.PlaceOrder("user1", "user1@example.com", models.OrderRequest{EventID: "ev1", Quantity: q})
		assert.ErrorIs(t, err, order.ErrInvalidQuantity)
	}
}

func TestPlaceOrder_EventNotOnSale(t *testing.T) {
	svc, m := newService(t)

	banned := paidEvent()
	banned.Status = models.EventBanned
	m.events.On("GetEventByID", banned.ID).Return(banned, nil)

	_, err := svc.PlaceOrder("user1", "user1@example.com", models.OrderRequest{EventID: banned.ID, Quantity: 2})
	assert.ErrorIs(t, err, order.ErrEventNotOnSale)
}

func TestPlaceOrder_SoldOut(t *testing.T) {
	svc, m := newService(t)

	event := paidEvent()
	m.events.On("GetEventByID", event.ID).Return(event, nil)
	m.inventory.On("Reserve", event.ID, mock.AnythingOfType("string"), 3, 90).Return(false, nil)

	_, err := svc.PlaceOrder("user1", "user1@example.com", models.OrderRequest{EventID: event.ID, Quantity: 3})
	assert.ErrorIs(t, err, order.ErrSoldOut)
	m.db.AssertNotCalled(t, "CreateOrderWithTickets", mock.Anything, mock.Anything)
}

func TestPlaceOrder_PaidEventStaysPending(t *testing.T) {
	svc, m := newService(t)

	event := paidEvent()
	m.events.On("GetEventByID", event.ID).Return(event, nil)
	m.events.On("GetEventLocation", event.ID).Return("Blue Hall, Lisbon", nil)
	m.inventory.On("Reserve", event.ID, mock.AnythingOfType("string"), 2, 90).Return(true, nil)
	m.db.On("CreateOrderWithTickets", mock.AnythingOfType("models.Order"), mock.AnythingOfType("[]models.Ticket")).Return(nil)
	m.kafka.On("PublishOrderCreated", mock.AnythingOfType("models.Order")).Return(nil)

	placed, err := svc.PlaceOrder("user1", "user1@example.com", models.OrderRequest{EventID: event.ID, Quantity: 2})
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPending, placed.Status)
	assert.Equal(t, 50.0, placed.TotalPrice)
	assert.Equal(t, "Jazz Night", placed.EventName)
	assert.Equal(t, "Blue Hall, Lisbon", placed.EventLocation)

	// Order was persisted together with one ticket per unit.
	createCall := m.db.Calls[0]
	tickets := createCall.Arguments.Get(1).([]models.Ticket)
	assert.Len(t, tickets, 2)
	for _, ticket := range tickets {
		assert.Equal(t, placed.OrderID, ticket.OrderID)
		assert.NotEmpty(t, ticket.TicketNumber)
	}

	m.issuer.AssertNotCalled(t, "IssueForOrder", mock.Anything)
	m.kafka.AssertNotCalled(t, "PublishOrderConfirmed", mock.Anything)
}

func TestPlaceOrder_FreeEventConfirmsImmediately(t *testing.T) {
	svc, m := newService(t)

	event := paidEvent()
	event.IsFree = true
	event.Price = 0

	m.events.On("GetEventByID", event.ID).Return(event, nil)
	m.events.On("GetEventLocation", event.ID).Return("Open Park, Porto", nil)
	m.inventory.On("Reserve", event.ID, mock.AnythingOfType("string"), 1, 90).Return(true, nil)

	var storedOrder models.Order
	m.db.On("CreateOrderWithTickets", mock.AnythingOfType("models.Order"), mock.AnythingOfType("[]models.Ticket")).
		Run(func(args mock.Arguments) {
			storedOrder = args.Get(0).(models.Order)
		}).Return(nil)
	m.kafka.On("PublishOrderCreated", mock.AnythingOfType("models.Order")).Return(nil)

	m.db.On("GetOrderByID", mock.AnythingOfType("string")).Return(&storedOrder, nil)
	m.db.On("UpdateOrder", mock.AnythingOfType("models.Order")).Return(nil)
	m.db.On("IncrementTicketsSold", event.ID, 1).Return(nil)
	m.inventory.On("Commit", mock.AnythingOfType("string")).Return(nil)

	issued := []models.Ticket{{TicketID: uuid.NewString(), TicketNumber: "TIX-1-000001"}}
	m.issuer.On("IssueForOrder", mock.AnythingOfType("string")).Return(issued, nil)
	m.mailer.On("SendTicket", "user1@example.com", mock.AnythingOfType("models.Order"), issued[0]).Return(nil)
	m.kafka.On("PublishOrderConfirmed", mock.AnythingOfType("models.Order")).Return(nil)

	placed, err := svc.PlaceOrder("user1", "user1@example.com", models.OrderRequest{EventID: event.ID, Quantity: 1})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, placed.TotalPrice)

	// The free path never waits for a payment step: tickets were issued
	// and emailed as part of placement.
	m.issuer.AssertCalled(t, "IssueForOrder", mock.AnythingOfType("string"))
	m.mailer.AssertCalled(t, "SendTicket", "user1@example.com", mock.AnythingOfType("models.Order"), issued[0])
	m.kafka.AssertCalled(t, "PublishOrderConfirmed", mock.AnythingOfType("models.Order"))
}

func TestPlaceOrder_ReleasesReservationWhenDBFails(t *testing.T) {
	svc, m := newService(t)

	event := paidEvent()
	m.events.On("GetEventByID", event.ID).Return(event, nil)
	m.events.On("GetEventLocation", event.ID).Return("Blue Hall, Lisbon", nil)
	m.inventory.On("Reserve", event.ID, mock.AnythingOfType("string"), 2, 90).Return(true, nil)
	m.db.On("CreateOrderWithTickets", mock.Anything, mock.Anything).Return(errors.New("insert failed"))
	m.inventory.On("Release", mock.AnythingOfType("string")).Return(nil)

	_, err := svc.PlaceOrder("user1", "user1@example.com", models.OrderRequest{EventID: event.ID, Quantity: 2})
	assert.Error(t, err)
	m.inventory.AssertCalled(t, "Release", mock.AnythingOfType("string"))
}

func TestConfirmOrder_AlreadyConfirmedIsNoOp(t *testing.T) {
	svc, m := newService(t)

	confirmed := &models.Order{OrderID: "o1", Status: models.OrderConfirmed}
	m.db.On("GetOrderByID", "o1").Return(confirmed, nil)

	assert.NoError(t, svc.ConfirmOrder("o1"))
	m.db.AssertNotCalled(t, "UpdateOrder", mock.Anything)
	m.issuer.AssertNotCalled(t, "IssueForOrder", mock.Anything)
}

func TestConfirmOrder_IssuesAndEmailsTickets(t *testing.T) {
	svc, m := newService(t)

	pending := &models.Order{
		OrderID:   "o2",
		EventID:   "ev1",
		UserID:    "user1",
		UserEmail: "user1@example.com",
		Quantity:  2,
		Status:    models.OrderPending,
	}
	m.db.On("GetOrderByID", "o2").Return(pending, nil)
	m.db.On("UpdateOrder", mock.AnythingOfType("models.Order")).Return(nil)
	m.db.On("IncrementTicketsSold", "ev1", 2).Return(nil)
	m.inventory.On("Commit", "o2").Return(nil)

	issued := []models.Ticket{
		{TicketID: "t1", OrderID: "o2", TicketNumber: "TIX-1-000001"},
		{TicketID: "t2", OrderID: "o2", TicketNumber: "TIX-1-000002"},
	}
	m.issuer.On("IssueForOrder", "o2").Return(issued, nil)
	m.mailer.On("SendTicket", "user1@example.com", mock.AnythingOfType("models.Order"), mock.AnythingOfType("models.Ticket")).Return(nil)
	m.kafka.On("PublishOrderConfirmed", mock.AnythingOfType("models.Order")).Return(nil)

	assert.NoError(t, svc.ConfirmOrder("o2"))

	updated := m.db.Calls[1].Arguments.Get(0).(models.Order)
	assert.Equal(t, models.OrderConfirmed, updated.Status)
	m.mailer.AssertNumberOfCalls(t, "SendTicket", 2)
}

func TestCancelOrder_RejectsNonPending(t *testing.T) {
	svc, m := newService(t)

	confirmed := &models.Order{OrderID: "o3", Status: models.OrderConfirmed}
	m.db.On("GetOrderByID", "o3").Return(confirmed, nil)

	assert.Error(t, svc.CancelOrder("o3"))
	m.inventory.AssertNotCalled(t, "Release", mock.Anything)
}

func TestHandleReservationExpiry_CancelsPendingOnly(t *testing.T) {
	svc, m := newService(t)

	pending := &models.Order{OrderID: "o4", EventID: "ev1", Quantity: 3, Status: models.OrderPending}
	m.db.On("GetOrderByID", "o4").Return(pending, nil)
	m.db.On("UpdateOrder", mock.AnythingOfType("models.Order")).Return(nil)
	m.inventory.On("ReleaseExpired", "ev1", 3).Return(nil)
	m.kafka.On("PublishOrderCancelled", mock.AnythingOfType("models.Order")).Return(nil)

	assert.NoError(t, svc.HandleReservationExpiry("o4"))
	m.inventory.AssertCalled(t, "ReleaseExpired", "ev1", 3)
}

func TestHandleReservationExpiry_IgnoresConfirmed(t *testing.T) {
	svc, m := newService(t)

	confirmed := &models.Order{OrderID: "o5", Status: models.OrderConfirmed}
	m.db.On("GetOrderByID", "o5").Return(confirmed, nil)

	assert.NoError(t, svc.HandleReservationExpiry("o5"))
	m.inventory.AssertNotCalled(t, "ReleaseExpired", mock.Anything, mock.Anything)
	m.db.AssertNotCalled(t, "UpdateOrder", mock.Anything)
}
