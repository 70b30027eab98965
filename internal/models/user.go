package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID              string    `bun:"id,pk" json:"id"`
	Name            string    `bun:"name,notnull" json:"name"`
	Email           string    `bun:"email,unique,notnull" json:"email"`
	Role            Role      `bun:"role,notnull" json:"role"`
	Blocked         bool      `bun:"blocked" json:"blocked"`
	Image           string    `bun:"image" json:"image,omitempty"`
	StripeAccountID string    `bun:"stripe_account_id,nullzero" json:"stripe_account_id,omitempty"`
	CreatedAt       time.Time `bun:"created_at,notnull" json:"created_at"`
}
