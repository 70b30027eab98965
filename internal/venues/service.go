package venues

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tixly/internal/logger"
	"tixly/internal/models"
)

var (
	ErrNotOwner = errors.New("venue does not belong to this organizer")
	// ErrVenueInUse blocks deletion while any event still references the venue.
	ErrVenueInUse = errors.New("venue has events associated with it and cannot be deleted")
)

type VenueDBLayer interface {
	GetVenueByID(id string) (*models.Venue, error)
	CreateVenue(venue models.Venue) error
	UpdateVenue(venue models.Venue) error
	DeleteVenue(id string) error
	ListVenues() ([]models.Venue, error)
	ListVenuesByOwner(ownerID string) ([]models.Venue, error)
}

// EventCounter reports how many events reference a venue.
type EventCounter interface {
	CountEventsByVenue(venueID string) (int, error)
}

type VenueService struct {
	DB     VenueDBLayer
	Events EventCounter
	Logger *logger.Logger
}

func NewVenueService(db VenueDBLayer, events EventCounter, log *logger.Logger) *VenueService {
	return &VenueService{DB: db, Events: events, Logger: log}
}

type VenueInput struct {
	Title    string   `json:"title"`
	Address  string   `json:"address"`
	City     string   `json:"city"`
	Country  string   `json:"country"`
	Capacity int      `json:"capacity"`
	Images   []string `json:"images"`
}

func (in VenueInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.New("venue title is required")
	}
	if in.Capacity < 0 {
		return errors.New("venue capacity cannot be negative")
	}
	return nil
}

func (s *VenueService) CreateVenue(ownerID string, in VenueInput) (*models.Venue, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	venue := models.Venue{
		ID:        uuid.New().String(),
		Title:     in.Title,
		Address:   in.Address,
		City:      in.City,
		Country:   in.Country,
		Capacity:  in.Capacity,
		Images:    in.Images,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}

	if err := s.DB.CreateVenue(venue); err != nil {
		s.Logger.Error("VENUE", fmt.Sprintf("Failed to create venue %s: %v", venue.ID, err))
		return nil, err
	}

	s.Logger.Info("VENUE", fmt.Sprintf("Venue %s created by %s", venue.ID, ownerID))
	return &venue, nil
}

func (s *VenueService) UpdateVenue(venueID, ownerID string, isAdmin bool, in VenueInput) (*models.Venue, error) {
	current, err := s.DB.GetVenueByID(venueID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && current.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	updated := *current
	updated.Title = in.Title
	updated.Address = in.Address
	updated.City = in.City
	updated.Country = in.Country
	updated.Capacity = in.Capacity
	updated.Images = in.Images

	if err := s.DB.UpdateVenue(updated); err != nil {
		s.Logger.Error("VENUE", fmt.Sprintf("Failed to update venue %s: %v", venueID, err))
		return nil, err
	}
	return &updated, nil
}

// DeleteVenue refuses to remove a venue that any event still points at.
func (s *VenueService) DeleteVenue(venueID, ownerID string, isAdmin bool) error {
	current, err := s.DB.GetVenueByID(venueID)
	if err != nil {
		return err
	}
	if !isAdmin && current.OwnerID != ownerID {
		return ErrNotOwner
	}

	count, err := s.Events.CountEventsByVenue(venueID)
	if err != nil {
		return err
	}
	if count > 0 {
		s.Logger.Warn("VENUE", fmt.Sprintf("Refusing to delete venue %s: %d events reference it", venueID, count))
		return ErrVenueInUse
	}

	if err := s.DB.DeleteVenue(venueID); err != nil {
		s.Logger.Error("VENUE", fmt.Sprintf("Failed to delete venue %s: %v", venueID, err))
		return err
	}
	s.Logger.Info("VENUE", fmt.Sprintf("Venue %s deleted", venueID))
	return nil
}

func (s *VenueService) GetVenue(id string) (*models.Venue, error) {
	return s.DB.GetVenueByID(id)
}

func (s *VenueService) ListVenues() ([]models.Venue, error) {
	return s.DB.ListVenues()
}

func (s *VenueService) ListVenuesByOwner(ownerID string) ([]models.Venue, error) {
	return s.DB.ListVenuesByOwner(ownerID)
}
