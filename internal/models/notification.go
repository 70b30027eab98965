package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Notification struct {
	bun.BaseModel `bun:"table:notifications"`

	ID        string    `bun:"id,pk" json:"id"`
	UserID    string    `bun:"user_id,notnull" json:"user_id"`
	EventID   string    `bun:"event_id" json:"event_id"`
	Title     string    `bun:"title" json:"title"`
	Message   string    `bun:"message" json:"message"`
	Read      bool      `bun:"read" json:"read"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}
