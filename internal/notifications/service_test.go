package notifications_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tixly/internal/logger"
	"tixly/internal/models"
	"tixly/internal/notifications"
)

type MockNotificationDB struct {
	mock.Mock
}

func (m *MockNotificationDB) CreateNotification(notification models.Notification) error {
	args := m.Called(notification)
	return args.Error(0)
}

func (m *MockNotificationDB) GetNotificationsByUser(userID string) ([]models.Notification, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationDB) MarkRead(notificationID, userID string) error {
	args := m.Called(notificationID, userID)
	return args.Error(0)
}

type MockOrderSource struct {
	mock.Mock
}

func (m *MockOrderSource) GetOrdersByEvent(eventID string, statuses ...string) ([]models.Order, error) {
	args := m.Called(eventID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

type MockUpdateMailer struct {
	mock.Mock
}

func (m *MockUpdateMailer) SendEventUpdate(to, eventName string, changes []models.EventChange) error {
	args := m.Called(to, eventName, changes)
	return args.Error(0)
}

func newService(t *testing.T) (*notifications.NotificationService, *MockNotificationDB, *MockOrderSource, *MockUpdateMailer) {
	t.Helper()
	db := new(MockNotificationDB)
	orders := new(MockOrderSource)
	mail := new(MockUpdateMailer)
	svc := notifications.NewNotificationService(db, orders, mail, logger.NewLogger())
	return svc, db, orders, mail
}

var changes = []models.EventChange{
	{Field: "start_date", Before: "2026-09-01T20:00:00Z", After: "2026-09-02T20:00:00Z"},
}

func TestNotifyEventUpdate_NoOrders(t *testing.T) {
	svc, db, orders, mail := newService(t)

	orders.On("GetOrdersByEvent", "ev1", []string{models.OrderPending, models.OrderConfirmed}).
		Return([]models.Order{}, nil)

	result, err := svc.NotifyEventUpdate("ev1", "Jazz Night", changes, false)
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Notified)
	assert.Equal(t, 0, result.InAppCreated)

	mail.AssertNotCalled(t, "SendEventUpdate", mock.Anything, mock.Anything, mock.Anything)
	db.AssertNotCalled(t, "CreateNotification", mock.Anything)
}

func TestNotifyEventUpdate_DeduplicatesBuyers(t *testing.T) {
	svc, db, orders, mail := newService(t)

	// Two orders from the same buyer, one from another.
	orders.On("GetOrdersByEvent", "ev1", []string{models.OrderPending, models.OrderConfirmed}).
		Return([]models.Order{
			{OrderID: "o1", UserID: "u1", UserEmail: "alice@example.com", EventName: "Jazz Night"},
			{OrderID: "o2", UserID: "u1", UserEmail: "Alice@Example.com", EventName: "Jazz Night"},
			{OrderID: "o3", UserID: "u2", UserEmail: "bob@example.com", EventName: "Jazz Night"},
		}, nil)
	mail.On("SendEventUpdate", mock.AnythingOfType("string"), "Jazz Night", changes).Return(nil)
	db.On("CreateNotification", mock.AnythingOfType("models.Notification")).Return(nil)

	result, err := svc.NotifyEventUpdate("ev1", "Jazz Night", changes, false)
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Notified)
	assert.Equal(t, 2, result.InAppCreated)
	assert.Equal(t, 0, result.EmailFailures)

	mail.AssertNumberOfCalls(t, "SendEventUpdate", 2)
	db.AssertNumberOfCalls(t, "CreateNotification", 2)
}

func TestNotifyEventUpdate_CountsEmailFailures(t *testing.T) {
	svc, db, orders, mail := newService(t)

	orders.On("GetOrdersByEvent", "ev1", []string{models.OrderPending, models.OrderConfirmed}).
		Return([]models.Order{
			{OrderID: "o1", UserID: "u1", UserEmail: "alice@example.com", EventName: "Jazz Night"},
			{OrderID: "o2", UserID: "u2", UserEmail: "bob@example.com", EventName: "Jazz Night"},
		}, nil)
	mail.On("SendEventUpdate", "alice@example.com", "Jazz Night", changes).Return(errors.New("smtp refused"))
	mail.On("SendEventUpdate", "bob@example.com", "Jazz Night", changes).Return(nil)
	db.On("CreateNotification", mock.AnythingOfType("models.Notification")).Return(nil)

	result, err := svc.NotifyEventUpdate("ev1", "Jazz Night", changes, false)
	assert.NoError(t, err, "one bad address must not abort the fan-out")
	assert.Equal(t, 1, result.Notified)
	assert.Equal(t, 1, result.EmailFailures)
	assert.Equal(t, 2, result.InAppCreated)
}

func TestNotifyEventUpdate_OnlyConfirmedNarrowsAudience(t *testing.T) {
	svc, db, orders, mail := newService(t)

	orders.On("GetOrdersByEvent", "ev1", []string{models.OrderConfirmed}).
		Return([]models.Order{
			{OrderID: "o1", UserID: "u1", UserEmail: "alice@example.com", EventName: "Jazz Night", Status: models.OrderConfirmed},
		}, nil)
	mail.On("SendEventUpdate", "alice@example.com", "Jazz Night", changes).Return(nil)
	db.On("CreateNotification", mock.AnythingOfType("models.Notification")).Return(nil)

	result, err := svc.NotifyEventUpdate("ev1", "Jazz Night", changes, true)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Notified)
	orders.AssertExpectations(t)
}

func TestNotifyEventUpdate_FallsBackToOrderEventName(t *testing.T) {
	svc, db, orders, mail := newService(t)

	orders.On("GetOrdersByEvent", "ev1", []string{models.OrderPending, models.OrderConfirmed}).
		Return([]models.Order{
			{OrderID: "o1", UserID: "u1", UserEmail: "alice@example.com", EventName: "Stored Name"},
		}, nil)
	mail.On("SendEventUpdate", "alice@example.com", "Stored Name", changes).Return(nil)
	db.On("CreateNotification", mock.AnythingOfType("models.Notification")).Return(nil)

	result, err := svc.NotifyEventUpdate("ev1", "", changes, false)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Notified)
}
