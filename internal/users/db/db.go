package db

import (
	"context"

	"github.com/uptrace/bun"

	"tixly/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("email = ?", email).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) CreateUser(user models.User) error {
	_, err := d.Bun.NewInsert().Model(&user).Exec(context.Background())
	return err
}

func (d *DB) UpdateUser(user models.User) error {
	_, err := d.Bun.NewUpdate().
		Model(&user).
		Column("name", "image").
		Where("id = ?", user.ID).
		Exec(context.Background())
	return err
}

func (d *DB) SetStripeAccount(userID, accountID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.User)(nil)).
		Set("stripe_account_id = ?", accountID).
		Where("id = ?", userID).
		Exec(context.Background())
	return err
}

func (d *DB) SetBlocked(userID string, blocked bool) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.User)(nil)).
		Set("blocked = ?", blocked).
		Where("id = ?", userID).
		Exec(context.Background())
	return err
}

func (d *DB) ListUsers() ([]models.User, error) {
	var users []models.User
	err := d.Bun.NewSelect().
		Model(&users).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return users, nil
}
