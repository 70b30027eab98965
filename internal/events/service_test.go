package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tixly/internal/events"
	"tixly/internal/logger"
	"tixly/internal/models"
)

type MockEventDB struct {
	mock.Mock
}

func (m *MockEventDB) GetEventByID(id string) (*models.Event, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventDB) CreateEvent(event models.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockEventDB) UpdateEvent(event models.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockEventDB) SetEventStatus(id string, status models.EventStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockEventDB) DeleteEvent(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockEventDB) ListPublished(filter models.EventFilter) ([]models.Event, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventDB) ListByOrganizer(organizerID string) ([]models.Event, error) {
	args := m.Called(organizerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

type MockEventKafka struct {
	mock.Mock
}

func (m *MockEventKafka) PublishEventUpdated(eventID string, changes []models.EventChange) error {
	args := m.Called(eventID, changes)
	return args.Error(0)
}

func storedEvent() *models.Event {
	return &models.Event{
		ID:           "ev1",
		Title:        "Jazz Night",
		Description:  "Live jazz.",
		StartDate:    time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 9, 1, 23, 0, 0, 0, time.UTC),
		VenueID:      "v1",
		CategoryID:   "c1",
		OrganizerID:  "org1",
		Price:        25,
		TicketsCount: 100,
		TicketsSold:  40,
		Status:       models.EventPublished,
	}
}

func inputFromEvent(e *models.Event) events.EventInput {
	return events.EventInput{
		Title:        e.Title,
		Description:  e.Description,
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		VenueID:      e.VenueID,
		CategoryID:   e.CategoryID,
		Price:        e.Price,
		IsFree:       e.IsFree,
		TicketsCount: e.TicketsCount,
		Images:       e.Images,
	}
}

func TestUpdateEventComputesDiff(t *testing.T) {
	db := new(MockEventDB)
	kafka := new(MockEventKafka)
	svc := events.NewEventService(db, kafka, logger.NewLogger())

	current := storedEvent()
	db.On("GetEventByID", "ev1").Return(current, nil)
	db.On("UpdateEvent", mock.AnythingOfType("models.Event")).Return(nil)
	kafka.On("PublishEventUpdated", "ev1", mock.AnythingOfType("[]models.EventChange")).Return(nil)

	in := inputFromEvent(current)
	in.StartDate = in.StartDate.Add(24 * time.Hour)
	in.Price = 30

	updated, changes, err := svc.UpdateEvent("ev1", "org1", false, in)
	assert.NoError(t, err)
	assert.Equal(t, 30.0, updated.Price)
	assert.Len(t, changes, 2)

	fields := make(map[string]models.EventChange)
	for _, c := range changes {
		fields[c.Field] = c
	}
	assert.Contains(t, fields, "start_date")
	assert.Contains(t, fields, "price")
	assert.Equal(t, "25.00", fields["price"].Before)
	assert.Equal(t, "30.00", fields["price"].After)

	kafka.AssertCalled(t, "PublishEventUpdated", "ev1", mock.AnythingOfType("[]models.EventChange"))
}

func TestUpdateEventNoChangesSkipsPublish(t *testing.T) {
	db := new(MockEventDB)
	kafka := new(MockEventKafka)
	svc := events.NewEventService(db, kafka, logger.NewLogger())

	current := storedEvent()
	db.On("GetEventByID", "ev1").Return(current, nil)
	db.On("UpdateEvent", mock.AnythingOfType("models.Event")).Return(nil)

	_, changes, err := svc.UpdateEvent("ev1", "org1", false, inputFromEvent(current))
	assert.NoError(t, err)
	assert.Empty(t, changes)
	kafka.AssertNotCalled(t, "PublishEventUpdated", mock.Anything, mock.Anything)
}

func TestUpdateEventRejectsNonOwner(t *testing.T) {
	db := new(MockEventDB)
	svc := events.NewEventService(db, new(MockEventKafka), logger.NewLogger())

	db.On("GetEventByID", "ev1").Return(storedEvent(), nil)

	_, _, err := svc.UpdateEvent("ev1", "someone-else", false, inputFromEvent(storedEvent()))
	assert.ErrorIs(t, err, events.ErrNotOwner)
}

func TestUpdateEventRejectsShrinkBelowSold(t *testing.T) {
	db := new(MockEventDB)
	svc := events.NewEventService(db, new(MockEventKafka), logger.NewLogger())

	current := storedEvent() // 40 sold
	db.On("GetEventByID", "ev1").Return(current, nil)

	in := inputFromEvent(current)
	in.TicketsCount = 30

	_, _, err := svc.UpdateEvent("ev1", "org1", false, in)
	assert.ErrorIs(t, err, events.ErrShrinkBelowSold)
}

func TestCreateEventValidates(t *testing.T) {
	db := new(MockEventDB)
	svc := events.NewEventService(db, new(MockEventKafka), logger.NewLogger())

	base := inputFromEvent(storedEvent())

	noTitle := base
	noTitle.Title = ""
	_, err := svc.CreateEvent("org1", noTitle)
	assert.Error(t, err)

	badDates := base
	badDates.EndDate = badDates.StartDate.Add(-time.Hour)
	_, err = svc.CreateEvent("org1", badDates)
	assert.ErrorIs(t, err, events.ErrInvalidDates)

	noTickets := base
	noTickets.TicketsCount = 0
	_, err = svc.CreateEvent("org1", noTickets)
	assert.ErrorIs(t, err, events.ErrNoTickets)

	db.On("CreateEvent", mock.AnythingOfType("models.Event")).Return(nil)
	created, err := svc.CreateEvent("org1", base)
	assert.NoError(t, err)
	assert.Equal(t, models.EventPublished, created.Status)
	assert.Equal(t, "org1", created.OrganizerID)
}

func TestFreeEventForcesZeroPrice(t *testing.T) {
	db := new(MockEventDB)
	svc := events.NewEventService(db, new(MockEventKafka), logger.NewLogger())

	in := inputFromEvent(storedEvent())
	in.IsFree = true
	in.Price = 99

	db.On("CreateEvent", mock.AnythingOfType("models.Event")).Return(nil)
	created, err := svc.CreateEvent("org1", in)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, created.Price)
}
