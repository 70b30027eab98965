package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Report struct {
	bun.BaseModel `bun:"table:reports"`

	ID          string    `bun:"id,pk" json:"id"`
	EventID     string    `bun:"event_id,notnull" json:"event_id"`
	OrganizerID string    `bun:"organizer_id" json:"organizer_id"`
	ReporterID  string    `bun:"reporter_id,notnull" json:"reporter_id"`
	Type        string    `bun:"type" json:"type"`
	Message     string    `bun:"message" json:"message"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}
