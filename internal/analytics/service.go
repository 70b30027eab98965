package analytics

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"tixly/internal/models"
)

// Service computes organizer-facing sales rollups straight from the
// orders and tickets tables.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// EventAnalytics represents aggregated sales data for one event.
type EventAnalytics struct {
	EventID          string              `json:"event_id"`
	TotalRevenue     float64             `json:"total_revenue"`
	TotalTicketsSold int                 `json:"total_tickets_sold"`
	TotalOrders      int                 `json:"total_orders"`
	DailySales       []DailySalesMetrics `json:"daily_sales"`
}

// DailySalesMetrics contains metrics for a single day.
type DailySalesMetrics struct {
	Date        string  `json:"date"`
	Revenue     float64 `json:"revenue"`
	TicketsSold int     `json:"tickets_sold"`
}

// EventSummary is one row of an organizer-wide rollup.
type EventSummary struct {
	EventID          string  `json:"event_id"`
	Title            string  `json:"title"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalTicketsSold int     `json:"total_tickets_sold"`
}

// OrganizerAnalytics aggregates sales across every event an organizer owns.
type OrganizerAnalytics struct {
	OrganizerID      string         `json:"organizer_id"`
	TotalRevenue     float64        `json:"total_revenue"`
	TotalTicketsSold int            `json:"total_tickets_sold"`
	Events           []EventSummary `json:"events"`
}

type dailySalesRow struct {
	SalesDate     time.Time `bun:"sales_date"`
	DailyRevenue  float64   `bun:"daily_revenue"`
	DailyQuantity int       `bun:"daily_quantity"`
}

// GetEventAnalytics returns revenue analytics for a specific event,
// optionally narrowed to one order status.
func (s *Service) GetEventAnalytics(ctx context.Context, eventID string, status string) (*EventAnalytics, error) {
	var orders []models.Order
	query := s.db.NewSelect().
		Model(&orders).
		Where("event_id = ?", eventID)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, err
	}

	analytics := &EventAnalytics{
		EventID:     eventID,
		TotalOrders: len(orders),
		DailySales:  []DailySalesMetrics{},
	}
	for _, order := range orders {
		analytics.TotalRevenue += order.TotalPrice
	}

	var ticketCount int
	rawSQL := "SELECT COUNT(*) FROM tickets t JOIN orders o ON t.order_id = o.order_id WHERE o.event_id = ?"
	args := []interface{}{eventID}
	if status != "" {
		rawSQL += " AND o.status = ?"
		args = append(args, status)
	}
	if err := s.db.NewRaw(rawSQL, args...).Scan(ctx, &ticketCount); err != nil {
		return nil, err
	}
	analytics.TotalTicketsSold = ticketCount

	var daily []dailySalesRow
	err := s.db.NewRaw(`
		SELECT
			DATE(o.created_at) AS sales_date,
			SUM(o.total_price) AS daily_revenue,
			SUM(o.quantity) AS daily_quantity
		FROM orders o
		WHERE o.event_id = ?`+statusClause(status)+`
		GROUP BY DATE(o.created_at)
		ORDER BY DATE(o.created_at)
	`, args...).Scan(ctx, &daily)
	if err != nil {
		return nil, err
	}

	for _, row := range daily {
		analytics.DailySales = append(analytics.DailySales, DailySalesMetrics{
			Date:        row.SalesDate.Format("2006-01-02"),
			Revenue:     row.DailyRevenue,
			TicketsSold: row.DailyQuantity,
		})
	}

	return analytics, nil
}

func statusClause(status string) string {
	if status == "" {
		return ""
	}
	return " AND o.status = ?"
}

// GetOrganizerAnalytics rolls up confirmed sales across every event the
// organizer owns.
func (s *Service) GetOrganizerAnalytics(ctx context.Context, organizerID string) (*OrganizerAnalytics, error) {
	type summaryRow struct {
		EventID     string  `bun:"event_id"`
		Title       string  `bun:"title"`
		Revenue     float64 `bun:"revenue"`
		TicketsSold int     `bun:"tickets_sold"`
	}

	var rows []summaryRow
	err := s.db.NewRaw(`
		SELECT
			e.id AS event_id,
			e.title AS title,
			COALESCE(SUM(o.total_price), 0) AS revenue,
			COALESCE(SUM(o.quantity), 0) AS tickets_sold
		FROM events e
		LEFT JOIN orders o ON o.event_id = e.id AND o.status = ?
		WHERE e.organizer_id = ?
		GROUP BY e.id, e.title
		ORDER BY revenue DESC
	`, models.OrderConfirmed, organizerID).Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	analytics := &OrganizerAnalytics{
		OrganizerID: organizerID,
		Events:      []EventSummary{},
	}
	for _, row := range rows {
		analytics.TotalRevenue += row.Revenue
		analytics.TotalTicketsSold += row.TicketsSold
		analytics.Events = append(analytics.Events, EventSummary{
			EventID:          row.EventID,
			Title:            row.Title,
			TotalRevenue:     row.Revenue,
			TotalTicketsSold: row.TicketsSold,
		})
	}

	return analytics, nil
}

// VerifyEventOwnership reports whether the event belongs to the organizer.
func (s *Service) VerifyEventOwnership(ctx context.Context, eventID, organizerID string) (bool, error) {
	count, err := s.db.NewSelect().
		Model((*models.Event)(nil)).
		Where("id = ? AND organizer_id = ?", eventID, organizerID).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
