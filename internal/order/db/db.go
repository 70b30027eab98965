package db

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"tixly/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- ORDERS ----------------

func (d *DB) GetOrderByID(id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("order_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrderWithTickets inserts the order and its tickets in one
// transaction; a partial failure leaves nothing behind.
func (d *DB) CreateOrderWithTickets(order models.Order, tickets []models.Ticket) error {
	return d.Bun.RunInTx(context.Background(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&order).Exec(ctx); err != nil {
			return err
		}
		if len(tickets) > 0 {
			if _, err := tx.NewInsert().Model(&tickets).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) UpdateOrder(order models.Order) error {
	_, err := d.Bun.NewUpdate().
		Model(&order).
		Column("status", "total_price", "payment_intent_id").
		Where("order_id = ?", order.OrderID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteOrder(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Order)(nil)).
		Where("order_id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) GetOrdersByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrdersByEvent lists orders for one event; statuses narrows when
// non-empty.
func (d *DB) GetOrdersByEvent(eventID string, statuses ...string) ([]models.Order, error) {
	var orders []models.Order
	q := d.Bun.NewSelect().
		Model(&orders).
		Where("event_id = ?", eventID)
	if len(statuses) > 0 {
		q = q.Where("status IN (?)", bun.In(statuses))
	}
	err := q.Order("created_at DESC").Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// IncrementTicketsSold moves committed inventory onto the event row.
func (d *DB) IncrementTicketsSold(eventID string, quantity int) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("tickets_sold = tickets_sold + ?", quantity).
		Where("id = ?", eventID).
		Exec(context.Background())
	return err
}

// ---------------- RELATION QUERIES ----------------

// GetOrdersWithTicketsByUserID fetches a user's orders with their
// tickets grouped per order, newest first.
func (d *DB) GetOrdersWithTicketsByUserID(userID string) ([]models.OrderWithTickets, error) {
	orders, err := d.GetOrdersByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []models.OrderWithTickets{}, nil
	}

	orderIDs := make([]string, len(orders))
	for i, order := range orders {
		orderIDs[i] = order.OrderID
	}

	var tickets []models.Ticket
	err = d.Bun.NewSelect().
		Model(&tickets).
		Where("order_id IN (?)", bun.In(orderIDs)).
		Order("order_id", "ticket_number").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}

	ticketsByOrder := make(map[string][]models.Ticket)
	for _, ticket := range tickets {
		ticketsByOrder[ticket.OrderID] = append(ticketsByOrder[ticket.OrderID], ticket)
	}

	result := make([]models.OrderWithTickets, len(orders))
	for i, order := range orders {
		result[i] = models.OrderWithTickets{
			Order:   order,
			Tickets: ticketsByOrder[order.OrderID],
		}
		if result[i].Tickets == nil {
			result[i].Tickets = []models.Ticket{}
		}
	}
	return result, nil
}
