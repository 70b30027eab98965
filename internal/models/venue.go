package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Venue struct {
	bun.BaseModel `bun:"table:venues"`

	ID        string    `bun:"id,pk" json:"id"`
	Title     string    `bun:"title,notnull" json:"title"`
	Address   string    `bun:"address" json:"address"`
	City      string    `bun:"city" json:"city"`
	Country   string    `bun:"country" json:"country"`
	Capacity  int       `bun:"capacity" json:"capacity"`
	Images    []string  `bun:"images,array" json:"images"`
	OwnerID   string    `bun:"owner_id,notnull" json:"owner_id"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}
