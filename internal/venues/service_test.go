package venues_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tixly/internal/logger"
	"tixly/internal/models"
	"tixly/internal/venues"
)

type MockVenueDB struct {
	mock.Mock
}

func (m *MockVenueDB) GetVenueByID(id string) (*models.Venue, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Venue), args.Error(1)
}

func (m *MockVenueDB) CreateVenue(venue models.Venue) error {
	args := m.Called(venue)
	return args.Error(0)
}

func (m *MockVenueDB) UpdateVenue(venue models.Venue) error {
	args := m.Called(venue)
	return args.Error(0)
}

func (m *MockVenueDB) DeleteVenue(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockVenueDB) ListVenues() ([]models.Venue, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Venue), args.Error(1)
}

func (m *MockVenueDB) ListVenuesByOwner(ownerID string) ([]models.Venue, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Venue), args.Error(1)
}

type MockEventCounter struct {
	mock.Mock
}

func (m *MockEventCounter) CountEventsByVenue(venueID string) (int, error) {
	args := m.Called(venueID)
	return args.Int(0), args.Error(1)
}

func TestDeleteVenueBlockedWhenEventsExist(t *testing.T) {
	db := new(MockVenueDB)
	counter := new(MockEventCounter)
	svc := venues.NewVenueService(db, counter, logger.NewLogger())

	db.On("GetVenueByID", "v1").Return(&models.Venue{ID: "v1", OwnerID: "org1"}, nil)
	counter.On("CountEventsByVenue", "v1").Return(3, nil)

	err := svc.DeleteVenue("v1", "org1", false)
	assert.ErrorIs(t, err, venues.ErrVenueInUse)
	db.AssertNotCalled(t, "DeleteVenue", mock.Anything)
}

func TestDeleteVenueSucceedsWhenUnused(t *testing.T) {
	db := new(MockVenueDB)
	counter := new(MockEventCounter)
	svc := venues.NewVenueService(db, counter, logger.NewLogger())

	db.On("GetVenueByID", "v2").Return(&models.Venue{ID: "v2", OwnerID: "org1"}, nil)
	counter.On("CountEventsByVenue", "v2").Return(0, nil)
	db.On("DeleteVenue", "v2").Return(nil)

	assert.NoError(t, svc.DeleteVenue("v2", "org1", false))
	db.AssertCalled(t, "DeleteVenue", "v2")
}

func TestDeleteVenueRejectsNonOwner(t *testing.T) {
	db := new(MockVenueDB)
	counter := new(MockEventCounter)
	svc := venues.NewVenueService(db, counter, logger.NewLogger())

	db.On("GetVenueByID", "v3").Return(&models.Venue{ID: "v3", OwnerID: "org1"}, nil)

	err := svc.DeleteVenue("v3", "someone-else", false)
	assert.ErrorIs(t, err, venues.ErrNotOwner)
	counter.AssertNotCalled(t, "CountEventsByVenue", mock.Anything)
}

func TestDeleteVenueAdminBypassesOwnership(t *testing.T) {
	db := new(MockVenueDB)
	counter := new(MockEventCounter)
	svc := venues.NewVenueService(db, counter, logger.NewLogger())

	db.On("GetVenueByID", "v4").Return(&models.Venue{ID: "v4", OwnerID: "org1"}, nil)
	counter.On("CountEventsByVenue", "v4").Return(0, nil)
	db.On("DeleteVenue", "v4").Return(nil)

	assert.NoError(t, svc.DeleteVenue("v4", "admin-user", true))
}

func TestCreateVenueValidates(t *testing.T) {
	db := new(MockVenueDB)
	svc := venues.NewVenueService(db, new(MockEventCounter), logger.NewLogger())

	_, err := svc.CreateVenue("org1", venues.VenueInput{Title: "  "})
	assert.Error(t, err)

	_, err = svc.CreateVenue("org1", venues.VenueInput{Title: "Blue Hall", Capacity: -1})
	assert.Error(t, err)

	db.On("CreateVenue", mock.AnythingOfType("models.Venue")).Return(nil)
	venue, err := svc.CreateVenue("org1", venues.VenueInput{Title: "Blue Hall", City: "Lisbon", Capacity: 400})
	assert.NoError(t, err)
	assert.Equal(t, "org1", venue.OwnerID)
	assert.NotEmpty(t, venue.ID)
}
