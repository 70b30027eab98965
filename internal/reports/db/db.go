package db

import (
	"context"

	"github.com/uptrace/bun"

	"tixly/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetReportByID(id string) (*models.Report, error) {
	var report models.Report
	err := d.Bun.NewSelect().
		Model(&report).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (d *DB) CreateReport(report models.Report) error {
	_, err := d.Bun.NewInsert().Model(&report).Exec(context.Background())
	return err
}

func (d *DB) DeleteReport(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Report)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) ListReports() ([]models.Report, error) {
	var reports []models.Report
	err := d.Bun.NewSelect().
		Model(&reports).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (d *DB) ListReportsByOrganizer(organizerID string) ([]models.Report, error) {
	var reports []models.Report
	err := d.Bun.NewSelect().
		Model(&reports).
		Where("organizer_id = ?", organizerID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (d *DB) ListReportsByEvent(eventID string) ([]models.Report, error) {
	var reports []models.Report
	err := d.Bun.NewSelect().
		Model(&reports).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return reports, nil
}
