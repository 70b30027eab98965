package models

import (
	"encoding/base64"
	"time"

	"github.com/uptrace/bun"
)

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	TicketID     string    `bun:"ticket_id,pk" json:"ticket_id"`
	OrderID      string    `bun:"order_id,notnull" json:"order_id"`
	TicketNumber string    `bun:"ticket_number,notnull" json:"ticket_number"`
	QRCode       []byte    `bun:"qr_code" json:"-"`
	IssuedAt     time.Time `bun:"issued_at,nullzero" json:"issued_at,omitempty"`
	CheckedIn    bool      `bun:"checked_in" json:"checked_in"`
	CheckedInAt  time.Time `bun:"checked_in_at,nullzero" json:"checked_in_at,omitempty"`
}

// QRCodeURL returns the persisted QR PNG as a data URL, empty if the
// ticket has not been issued yet.
func (t Ticket) QRCodeURL() string {
	if len(t.QRCode) == 0 {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(t.QRCode)
}

// TicketView is the API shape: QR bytes travel as a data URL.
type TicketView struct {
	TicketID     string    `json:"ticket_id"`
	OrderID      string    `json:"order_id"`
	TicketNumber string    `json:"ticket_number"`
	QRCodeURL    string    `json:"qr_code_url,omitempty"`
	IssuedAt     time.Time `json:"issued_at,omitempty"`
	CheckedIn    bool      `json:"checked_in"`
}

func (t Ticket) View() TicketView {
	return TicketView{
		TicketID:     t.TicketID,
		OrderID:      t.OrderID,
		TicketNumber: t.TicketNumber,
		QRCodeURL:    t.QRCodeURL(),
		IssuedAt:     t.IssuedAt,
		CheckedIn:    t.CheckedIn,
	}
}
