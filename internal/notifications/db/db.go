package db

import (
	"context"

	"github.com/uptrace/bun"

	"tixly/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateNotification(notification models.Notification) error {
	_, err := d.Bun.NewInsert().Model(&notification).Exec(context.Background())
	return err
}

func (d *DB) GetNotificationsByUser(userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := d.Bun.NewSelect().
		Model(&notifications).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (d *DB) MarkRead(notificationID, userID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("read = TRUE").
		Where("id = ? AND user_id = ?", notificationID, userID).
		Exec(context.Background())
	return err
}
