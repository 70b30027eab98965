package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tixly/internal/analytics"
	"tixly/internal/auth"
	"tixly/internal/logger"
	"tixly/internal/models"
	"tixly/internal/utils"
)

type Handler struct {
	Service *analytics.Service
	Logger  *logger.Logger
}

func NewHandler(service *analytics.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// EventAnalytics serves per-event sales rollups to the owning organizer
// (admins see everything).
func (h *Handler) EventAnalytics(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	if auth.UserRole(r.Context()) != models.RoleAdmin {
		owned, err := h.Service.VerifyEventOwnership(r.Context(), eventID, auth.UserID(r.Context()))
		if err != nil {
			h.Logger.Error("API", fmt.Sprintf("EventAnalytics ownership check: %v", err))
			http.Error(w, "Failed to verify event ownership", http.StatusInternalServerError)
			return
		}
		if !owned {
			http.Error(w, "not your event", http.StatusForbidden)
			return
		}
	}

	result, err := h.Service.GetEventAnalytics(r.Context(), eventID, r.URL.Query().Get("status"))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("EventAnalytics: %v", err))
		http.Error(w, "Failed to compute analytics", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Analytics computed", result))
}

func (h *Handler) OrganizerAnalytics(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.GetOrganizerAnalytics(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("OrganizerAnalytics: %v", err))
		http.Error(w, "Failed to compute analytics", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Analytics computed", result))
}
