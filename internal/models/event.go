package models

import (
	"time"

	"github.com/uptrace/bun"
)

type EventStatus string

const (
	EventPublished EventStatus = "published"
	EventBanned    EventStatus = "banned"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID           string      `bun:"id,pk" json:"id"`
	Title        string      `bun:"title,notnull" json:"title"`
	Description  string      `bun:"description" json:"description"`
	StartDate    time.Time   `bun:"start_date,notnull" json:"start_date"`
	EndDate      time.Time   `bun:"end_date,notnull" json:"end_date"`
	VenueID      string      `bun:"venue_id" json:"venue_id"`
	CategoryID   string      `bun:"category_id" json:"category_id"`
	OrganizerID  string      `bun:"organizer_id,notnull" json:"organizer_id"`
	Price        float64     `bun:"price" json:"price"`
	IsFree       bool        `bun:"is_free" json:"is_free"`
	TicketsCount int         `bun:"tickets_count" json:"tickets_count"`
	TicketsSold  int         `bun:"tickets_sold" json:"tickets_sold"`
	Images       []string    `bun:"images,array" json:"images"`
	Status       EventStatus `bun:"status" json:"status"`
	CreatedAt    time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt    time.Time   `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// EventFilter narrows public event listings.
type EventFilter struct {
	CategoryID string
	VenueID    string
	Query      string
}

// EventChange is one field diff used in update notifications.
type EventChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}
