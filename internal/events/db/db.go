package db

import (
	"context"

	"github.com/uptrace/bun"

	"tixly/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetEventByID(id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) CreateEvent(event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(context.Background())
	return err
}

func (d *DB) UpdateEvent(event models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(&event).
		Column("title", "description", "start_date", "end_date", "venue_id",
			"category_id", "price", "is_free", "tickets_count", "images", "updated_at").
		Where("id = ?", event.ID).
		Exec(context.Background())
	return err
}

func (d *DB) SetEventStatus(id string, status models.EventStatus) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteEvent(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// ListPublished returns publicly visible events, newest start first.
func (d *DB) ListPublished(filter models.EventFilter) ([]models.Event, error) {
	var events []models.Event
	q := d.Bun.NewSelect().
		Model(&events).
		Where("status = ?", models.EventPublished)

	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.VenueID != "" {
		q = q.Where("venue_id = ?", filter.VenueID)
	}
	if filter.Query != "" {
		q = q.Where("title ILIKE ?", "%"+filter.Query+"%")
	}

	err := q.Order("start_date DESC").Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) ListByOrganizer(organizerID string) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("organizer_id = ?", organizerID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetEventLocation renders "venue, city" for denormalizing onto orders.
func (d *DB) GetEventLocation(eventID string) (string, error) {
	var location string
	err := d.Bun.NewSelect().
		ColumnExpr("v.title || ', ' || v.city").
		Table("events").
		Join("JOIN venues v ON v.id = events.venue_id").
		Where("events.id = ?", eventID).
		Limit(1).
		Scan(context.Background(), &location)
	if err != nil {
		return "", err
	}
	return location, nil
}

// CountEventsByVenue backs the venue delete guard.
func (d *DB) CountEventsByVenue(venueID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("venue_id = ?", venueID).
		Count(context.Background())
}
