package db

import (
	"context"

	"github.com/uptrace/bun"

	"tixly/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetCategoryByID(id string) (*models.Category, error) {
	var category models.Category
	err := d.Bun.NewSelect().
		Model(&category).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (d *DB) CreateCategory(category models.Category) error {
	_, err := d.Bun.NewInsert().Model(&category).Exec(context.Background())
	return err
}

func (d *DB) UpdateCategory(category models.Category) error {
	_, err := d.Bun.NewUpdate().
		Model(&category).
		Column("name").
		Where("id = ?", category.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteCategory(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Category)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	err := d.Bun.NewSelect().
		Model(&categories).
		Order("name ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return categories, nil
}
