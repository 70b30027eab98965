package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tixly/internal/auth"
	"tixly/internal/logger"
	"tixly/internal/models"
	"tixly/internal/observability"
	"tixly/internal/tickets"
	"tixly/internal/utils"
)

// OrderSource resolves a ticket's order for ownership checks and the
// buyer's email address.
type OrderSource interface {
	GetOrderByID(id string) (*models.Order, error)
}

type TicketMailer interface {
	SendTicket(to string, order models.Order, ticket models.Ticket) error
}

type Handler struct {
	TicketService *tickets.TicketService
	Orders        OrderSource
	Mailer        TicketMailer
	Logger        *logger.Logger
}

func NewHandler(ticketService *tickets.TicketService, orders OrderSource, mailer TicketMailer, log *logger.Logger) *Handler {
	return &Handler{TicketService: ticketService, Orders: orders, Mailer: mailer, Logger: log}
}

type sendEmailRequest struct {
	TicketID string `json:"ticketId"`
}

type sendEmailResponse struct {
	Success   bool   `json:"success"`
	QRCodeURL string `json:"qrCodeUrl"`
}

// SendEmail issues the ticket's QR code if needed and emails it to the
// buyer. A bare ticket id is enough; the number is resolved server-side.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.TicketID == "" {
		http.Error(w, "ticketId is required", http.StatusBadRequest)
		return
	}

	ticket, err := h.TicketService.Issue(req.TicketID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SendEmail: failed to issue ticket %s: %v", req.TicketID, err))
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	order, err := h.Orders.GetOrderByID(ticket.OrderID)
	if err != nil {
		http.Error(w, "Order not found for ticket", http.StatusNotFound)
		return
	}

	if order.UserID != auth.UserID(r.Context()) && auth.UserRole(r.Context()) != models.RoleAdmin {
		http.Error(w, "not your ticket", http.StatusForbidden)
		return
	}

	if err := h.Mailer.SendTicket(order.UserEmail, *order, *ticket); err != nil {
		h.Logger.Error("EMAIL", fmt.Sprintf("Failed to email ticket %s to %s: %v", ticket.TicketID, order.UserEmail, err))
		observability.EmailSendFailures.Inc()
		http.Error(w, "Failed to send ticket email", http.StatusBadGateway)
		return
	}

	h.Logger.LogEmail(order.UserEmail, "Your ticket", fmt.Sprintf("Ticket %s emailed", ticket.TicketID))
	utils.WriteJSON(w, http.StatusOK, sendEmailResponse{Success: true, QRCodeURL: ticket.QRCodeURL()})
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.TicketService.GetTicket(chi.URLParam(r, "ticketId"))
	if err != nil {
		http.Error(w, "Ticket not found", http.StatusNotFound)
		return
	}

	order, err := h.Orders.GetOrderByID(ticket.OrderID)
	if err != nil {
		http.Error(w, "Order not found for ticket", http.StatusNotFound)
		return
	}
	if order.UserID != auth.UserID(r.Context()) && auth.UserRole(r.Context()) != models.RoleAdmin {
		http.Error(w, "not your ticket", http.StatusForbidden)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket retrieved", ticket.View()))
}

func (h *Handler) MyTickets(w http.ResponseWriter, r *http.Request) {
	list, err := h.TicketService.GetTicketsByUser(auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("MyTickets: %v", err))
		http.Error(w, "Failed to list tickets", http.StatusInternalServerError)
		return
	}

	views := make([]models.TicketView, 0, len(list))
	for _, t := range list {
		views = append(views, t.View())
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Tickets retrieved", views))
}

type checkinRequest struct {
	Payload string `json:"payload"`
}

// Checkin validates a scanned QR payload at the door.
func (h *Handler) Checkin(w http.ResponseWriter, r *http.Request) {
	var req checkinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	ticket, err := h.TicketService.Checkin(req.Payload)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Checkin rejected: %v", err))
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket checked in", ticket.View()))
}
