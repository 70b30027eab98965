package db

import (
	"context"

	"github.com/uptrace/bun"

	"tixly/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetVenueByID(id string) (*models.Venue, error) {
	var venue models.Venue
	err := d.Bun.NewSelect().
		Model(&venue).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (d *DB) CreateVenue(venue models.Venue) error {
	_, err := d.Bun.NewInsert().Model(&venue).Exec(context.Background())
	return err
}

func (d *DB) UpdateVenue(venue models.Venue) error {
	_, err := d.Bun.NewUpdate().
		Model(&venue).
		Column("title", "address", "city", "country", "capacity", "images").
		Where("id = ?", venue.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteVenue(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Venue)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) ListVenues() ([]models.Venue, error) {
	var venues []models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		Order("title ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return venues, nil
}

func (d *DB) ListVenuesByOwner(ownerID string) ([]models.Venue, error) {
	var venues []models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return venues, nil
}
