package qr

import (
	"encoding/json"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// PayloadVersion is bumped when the scanned payload shape changes;
// scanners refuse versions they don't know.
const PayloadVersion = 1

// Payload is the JSON document encoded into every ticket QR code.
type Payload struct {
	Type    string        `json:"type"`
	Version int           `json:"version"`
	Ticket  TicketPayload `json:"ticket"`
}

type TicketPayload struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

// NewPayload builds the canonical payload for a ticket.
func NewPayload(ticketID, ticketNumber string) Payload {
	return Payload{
		Type:    "ticket",
		Version: PayloadVersion,
		Ticket: TicketPayload{
			ID:     ticketID,
			Number: ticketNumber,
		},
	}
}

// Generate renders the payload as a 256px PNG.
func Generate(ticketID, ticketNumber string) ([]byte, error) {
	payload := NewPayload(ticketID, ticketNumber)
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, 256)
}

// ParsePayload decodes and validates a scanned payload string.
func ParsePayload(data string) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("malformed QR payload: %w", err)
	}
	if payload.Type != "ticket" {
		return nil, fmt.Errorf("unexpected payload type %q", payload.Type)
	}
	if payload.Version != PayloadVersion {
		return nil, fmt.Errorf("unsupported payload version %d", payload.Version)
	}
	if payload.Ticket.ID == "" {
		return nil, fmt.Errorf("payload has no ticket id")
	}
	return &payload, nil
}
