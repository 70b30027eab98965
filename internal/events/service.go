package events

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
	ErrNotOwner       = errors.New("event does not belong to this organizer")
	ErrInvalidDates   = errors.New("event end date must not be before its start date")
	ErrNoTickets      = errors.New("event must have at least one ticket")
	ErrShrinkBelowSold = errors.New("tickets count cannot drop below tickets already sold")
)

// EventDBLayer is the persistence surface the service needs.
type EventDBLayer interface {
	GetEventByID(id string) (*models.Event, error)
	CreateEvent(event models.Event) error
	UpdateEvent(event models.Event) error
	SetEventStatus(id string, status models.EventStatus) error
	DeleteEvent(id string) error
	ListPublished(filter models.EventFilter) ([]models.Event, error)
	ListByOrganizer(organizerID string) ([]models.Event, error)
}

type EventPublisher interface {
	PublishEventUpdated(eventID string, changes []models.EventChange) error
}

type EventService struct {
	DB     EventDBLayer
	Kafka  EventPublisher
	Logger *logger.Logger
}

func NewEventService(db EventDBLayer, kafka EventPublisher, log *logger.Logger) *EventService {
	return &EventService{DB: db, Kafka: kafka, Logger: log}
}

type EventInput struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	VenueID      string    `json:"venue_id"`
	CategoryID   string    `json:"category_id"`
	Price        float64   `json:"price"`
	IsFree       bool      `json:"is_free"`
	TicketsCount int       `json:"tickets_count"`
	Images       []string  `json:"images"`
}

func (in EventInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.New("event title is required")
	}
	if in.EndDate.Before(in.StartDate) {
		return ErrInvalidDates
	}
	if in.TicketsCount < 1 {
		return ErrNoTickets
	}
	return nil
}

func (s *EventService) CreateEvent(organizerID string, in EventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.IsFree {
		in.Price = 0
	}

	event := models.Event{
		ID:           uuid.New().String(),
		Title:        in.Title,
		Description:  in.Description,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		VenueID:      in.VenueID,
		CategoryID:   in.CategoryID,
		OrganizerID:  organizerID,
		Price:        in.Price,
		IsFree:       in.IsFree,
		TicketsCount: in.TicketsCount,
		Images:       in.Images,
		Status:       models.EventPublished,
		CreatedAt:    time.Now(),
	}

	if err := s.DB.CreateEvent(event); err != nil {
		s.Logger.Error("EVENT", fmt.Sprintf("Failed to create event %s: %v", event.ID, err))
		return nil, err
	}

	s.Logger.Info("EVENT", fmt.Sprintf("Event %s created by organizer %s", event.ID, organizerID))
	return &event, nil
}

// UpdateEvent applies the input and returns the field-level diff so callers
// can drive attendee notifications from it.
func (s *EventService) UpdateEvent(eventID, organizerID string, isAdmin bool, in EventInput) (*models.Event, []models.EventChange, error) {
	current, err := s.DB.GetEventByID(eventID)
	if err != nil {
		return nil, nil, err
	}
	if !isAdmin && current.OrganizerID != organizerID {
		return nil, nil, ErrNotOwner
	}
	if err := in.validate(); err != nil {
		return nil, nil, err
	}
	if in.TicketsCount < current.TicketsSold {
		return nil, nil, ErrShrinkBelowSold
	}
	if in.IsFree {
		in.Price = 0
	}

	changes := diffEvent(current, in)

	updated := *current
	updated.Title = in.Title
	updated.Description = in.Description
	updated.StartDate = in.StartDate
	updated.EndDate = in.EndDate
	updated.VenueID = in.VenueID
	updated.CategoryID = in.CategoryID
	updated.Price = in.Price
	updated.IsFree = in.IsFree
	updated.TicketsCount = in.TicketsCount
	updated.Images = in.Images
	updated.UpdatedAt = time.Now()

	if err := s.DB.UpdateEvent(updated); err != nil {
		s.Logger.Error("EVENT", fmt.Sprintf("Failed to update event %s: %v", eventID, err))
		return nil, nil, err
	}

	if len(changes) > 0 && s.Kafka != nil {
		if err := s.Kafka.PublishEventUpdated(eventID, changes); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish event-updated for %s: %v", eventID, err))
		}
	}

	s.Logger.Info("EVENT", fmt.Sprintf("Event %s updated (%d fields changed)", eventID, len(changes)))
	return &updated, changes, nil
}

func diffEvent(current *models.Event, in EventInput) []models.EventChange {
	var changes []models.EventChange
	add := func(field, before, after string) {
		if before != after {
			changes = append(changes, models.EventChange{Field: field, Before: before, After: after})
		}
	}

	add("title", current.Title, in.Title)
	add("description", current.Description, in.Description)
	add("start_date", current.StartDate.Format(time.RFC3339), in.StartDate.Format(time.RFC3339))
	add("end_date", current.EndDate.Format(time.RFC3339), in.EndDate.Format(time.RFC3339))
	add("venue", current.VenueID, in.VenueID)
	add("category", current.CategoryID, in.CategoryID)
	add("price", fmt.Sprintf("%.2f", current.Price), fmt.Sprintf("%.2f", in.Price))
	add("tickets_count", fmt.Sprintf("%d", current.TicketsCount), fmt.Sprintf("%d", in.TicketsCount))
	return changes
}

func (s *EventService) GetEvent(id string) (*models.Event, error) {
	return s.DB.GetEventByID(id)
}

func (s *EventService) ListPublished(filter models.EventFilter) ([]models.Event, error) {
	return s.DB.ListPublished(filter)
}

func (s *EventService) ListByOrganizer(organizerID string) ([]models.Event, error) {
	return s.DB.ListByOrganizer(organizerID)
}

func (s *EventService) BanEvent(id string) error {
	if err := s.DB.SetEventStatus(id, models.EventBanned); err != nil {
		return err
	}
	s.Logger.Warn("EVENT", fmt.Sprintf("Event %s banned by moderation", id))
	return nil
}

func (s *EventService) UnbanEvent(id string) error {
	if err := s.DB.SetEventStatus(id, models.EventPublished); err != nil {
		return err
	}
	s.Logger.Info("EVENT", fmt.Sprintf("Event %s restored to published", id))
	return nil
}

func (s *EventService) DeleteEvent(eventID, organizerID string, isAdmin bool) error {
	current, err := s.DB.GetEventByID(eventID)
	if err != nil {
		return err
	}
	if !isAdmin && current.OrganizerID != organizerID {
		return ErrNotOwner
	}
	if err := s.DB.DeleteEvent(eventID); err != nil {
		s.Logger.Error("EVENT", fmt.Sprintf("Failed to delete event %s: %v", eventID, err))
		return err
	}
	s.Logger.Info("EVENT", fmt.Sprintf("Event %s deleted", eventID))
	return nil
}
