package tickets_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tixly/internal/models"
	"tixly/internal/tickets"
	"tixly/internal/tickets/qr"
)

type MockTicketDB struct {
	mock.Mock
}

func (m *MockTicketDB) CreateTicket(ticket models.Ticket) error {
	args := m.Called(ticket)
	return args.Error(0)
}

func (m *MockTicketDB) GetTicketByID(ticketID string) (*models.Ticket, error) {
	args := m.Called(ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketDB) UpdateTicket(ticket models.Ticket) error {
	args := m.Called(ticket)
	return args.Error(0)
}

func (m *MockTicketDB) DeleteTicket(ticketID string) error {
	args := m.Called(ticketID)
	return args.Error(0)
}

func (m *MockTicketDB) GetTicketsByOrder(orderID string) ([]models.Ticket, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockTicketDB) GetTicketsByUser(userID string) ([]models.Ticket, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishTicketIssued(ticket models.Ticket) error {
	args := m.Called(ticket)
	return args.Error(0)
}

func TestIssueGeneratesNumberWhenMissing(t *testing.T) {
	db := new(MockTicketDB)
	publisher := new(MockPublisher)
	svc := tickets.NewTicketService(db, publisher)

	// Stored ticket has an id but no number yet.
	stored := &models.Ticket{TicketID: "t1", OrderID: "o1"}
	db.On("GetTicketByID", "t1").Return(stored, nil)
	db.On("UpdateTicket", mock.AnythingOfType("models.Ticket")).Return(nil)
	publisher.On("PublishTicketIssued", mock.AnythingOfType("models.Ticket")).Return(nil)

	issued, err := svc.Issue("t1")
	assert.NoError(t, err)
	assert.NotEmpty(t, issued.TicketNumber)
	assert.NotEmpty(t, issued.QRCode)
	assert.False(t, issued.IssuedAt.IsZero())

	// The QR payload carries the generated number.
	updated := db.Calls[1].Arguments.Get(0).(models.Ticket)
	assert.Equal(t, issued.TicketNumber, updated.TicketNumber)
}

func TestIssueKeepsExistingNumber(t *testing.T) {
	db := new(MockTicketDB)
	publisher := new(MockPublisher)
	svc := tickets.NewTicketService(db, publisher)

	stored := &models.Ticket{TicketID: "t2", OrderID: "o1", TicketNumber: "TIX-1-000007"}
	db.On("GetTicketByID", "t2").Return(stored, nil)
	db.On("UpdateTicket", mock.AnythingOfType("models.Ticket")).Return(nil)
	publisher.On("PublishTicketIssued", mock.AnythingOfType("models.Ticket")).Return(nil)

	issued, err := svc.Issue("t2")
	assert.NoError(t, err)
	assert.Equal(t, "TIX-1-000007", issued.TicketNumber)
}

func TestCheckinMarksTicketUsed(t *testing.T) {
	db := new(MockTicketDB)
	svc := tickets.NewTicketService(db, nil)

	payload, _ := json.Marshal(qr.NewPayload("t3", "TIX-1-000001"))

	stored := &models.Ticket{TicketID: "t3", OrderID: "o1", TicketNumber: "TIX-1-000001"}
	db.On("GetTicketByID", "t3").Return(stored, nil)
	db.On("UpdateTicket", mock.AnythingOfType("models.Ticket")).Return(nil)

	ticket, err := svc.Checkin(string(payload))
	assert.NoError(t, err)
	assert.True(t, ticket.CheckedIn)
	assert.False(t, ticket.CheckedInAt.IsZero())
}

func TestCheckinRejectsSecondScan(t *testing.T) {
	db := new(MockTicketDB)
	svc := tickets.NewTicketService(db, nil)

	payload, _ := json.Marshal(qr.NewPayload("t4", "TIX-1-000002"))

	used := &models.Ticket{
		TicketID:    "t4",
		CheckedIn:   true,
		CheckedInAt: time.Now().Add(-time.Hour),
	}
	db.On("GetTicketByID", "t4").Return(used, nil)

	_, err := svc.Checkin(string(payload))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already checked in")
	db.AssertNotCalled(t, "UpdateTicket", mock.Anything)
}
