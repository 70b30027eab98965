package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tixly/internal/auth"
	"tixly/internal/logger"
	"tixly/internal/models"
	"tixly/internal/notifications"
	"tixly/internal/utils"
)

type Handler struct {
	NotificationService *notifications.NotificationService
	Logger              *logger.Logger
}

func NewHandler(notificationService *notifications.NotificationService, log *logger.Logger) *Handler {
	return &Handler{NotificationService: notificationService, Logger: log}
}

type eventUpdateRequest struct {
	EventID       string               `json:"eventId"`
	EventName     string               `json:"eventName"`
	Changes       []models.EventChange `json:"changes"`
	OnlyConfirmed bool                 `json:"onlyConfirmed"`
}

// EventUpdateNotification broadcasts an event change to everyone holding an
// order for it.
func (h *Handler) EventUpdateNotification(w http.ResponseWriter, r *http.Request) {
	var req eventUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.EventID == "" {
		http.Error(w, "eventId is required", http.StatusBadRequest)
		return
	}

	result, err := h.NotificationService.NotifyEventUpdate(req.EventID, req.EventName, req.Changes, req.OnlyConfirmed)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("EventUpdateNotification: %v", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) MyNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.NotificationService.GetNotifications(auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("MyNotifications: %v", err))
		http.Error(w, "Failed to list notifications", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Notifications retrieved", list))
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.NotificationService.MarkRead(chi.URLParam(r, "notificationId"), auth.UserID(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Notification marked read", nil))
}
