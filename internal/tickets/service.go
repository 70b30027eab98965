package tickets

import (
	"fmt"
	"time"

	"tixly/internal/models"
	"tixly/internal/tickets/qr"
	"tixly/internal/utils"
)

type TicketDBLayer interface {
	CreateTicket(ticket models.Ticket) error
	GetTicketByID(ticketID string) (*models.Ticket, error)
	UpdateTicket(ticket models.Ticket) error
	DeleteTicket(ticketID string) error
	GetTicketsByOrder(orderID string) ([]models.Ticket, error)
	GetTicketsByUser(userID string) ([]models.Ticket, error)
}

type TicketPublisher interface {
	PublishTicketIssued(ticket models.Ticket) error
}

type TicketService struct {
	DB    TicketDBLayer
	Kafka TicketPublisher
}

func NewTicketService(db TicketDBLayer, kafka TicketPublisher) *TicketService {
	return &TicketService{DB: db, Kafka: kafka}
}

// Issue binds a QR code to a stored ticket and marks it issued. The
// ticket number is looked up from the store when the caller only has an
// id, so a bare ticket id is always enough to issue.
func (s *TicketService) Issue(ticketID string) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ticketID)
	if err != nil {
		return nil, fmt.Errorf("ticket %s not found: %w", ticketID, err)
	}

	if ticket.TicketNumber == "" {
		ticket.TicketNumber = utils.GenerateTicketNumber()
	}

	qrBytes, err := qr.Generate(ticket.TicketID, ticket.TicketNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR: %w", err)
	}
	ticket.QRCode = qrBytes
	if ticket.IssuedAt.IsZero() {
		ticket.IssuedAt = time.Now()
	}

	if err := s.DB.UpdateTicket(*ticket); err != nil {
		return nil, fmt.Errorf("failed to persist issued ticket: %w", err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketIssued(*ticket); err != nil {
			fmt.Printf("Kafka publish error (ticket issued): %v\n", err)
		}
	}

	return ticket, nil
}

// IssueForOrder issues every ticket belonging to an order.
func (s *TicketService) IssueForOrder(orderID string) ([]models.Ticket, error) {
	tickets, err := s.DB.GetTicketsByOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for order %s: %w", orderID, err)
	}

	issued := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		ticket, err := s.Issue(t.TicketID)
		if err != nil {
			return issued, err
		}
		issued = append(issued, *ticket)
	}
	return issued, nil
}

func (s *TicketService) GetTicket(ticketID string) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ticketID)
	if err != nil {
		return nil, fmt.Errorf("ticket %s not found: %w", ticketID, err)
	}
	return ticket, nil
}

func (s *TicketService) GetTicketsByOrder(orderID string) ([]models.Ticket, error) {
	tickets, err := s.DB.GetTicketsByOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for order %s: %w", orderID, err)
	}
	return tickets, nil
}

func (s *TicketService) GetTicketsByUser(userID string) ([]models.Ticket, error) {
	tickets, err := s.DB.GetTicketsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for user %s: %w", userID, err)
	}
	return tickets, nil
}

// Checkin validates a scanned QR payload and marks the ticket used.
// Scanning an already checked-in ticket is rejected.
func (s *TicketService) Checkin(payload string) (*models.Ticket, error) {
	parsed, err := qr.ParsePayload(payload)
	if err != nil {
		return nil, err
	}

	ticket, err := s.DB.GetTicketByID(parsed.Ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("ticket %s not found: %w", parsed.Ticket.ID, err)
	}
	if ticket.CheckedIn {
		return nil, fmt.Errorf("ticket %s already checked in at %s", ticket.TicketID, ticket.CheckedInAt.Format(time.RFC3339))
	}

	ticket.CheckedIn = true
	ticket.CheckedInAt = time.Now()
	if err := s.DB.UpdateTicket(*ticket); err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}
	return ticket, nil
}
