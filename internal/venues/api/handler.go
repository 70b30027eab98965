package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tixly/internal/auth"
	"tixly/internal/logger"
	"tixly/internal/models"
	"tixly/internal/utils"
	"tixly/internal/venues"
)

type Handler struct {
	VenueService *venues.VenueService
	Logger       *logger.Logger
}

func NewHandler(venueService *venues.VenueService, log *logger.Logger) *Handler {
	return &Handler{VenueService: venueService, Logger: log}
}

func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	list, err := h.VenueService.ListVenues()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListVenues: %v", err))
		http.Error(w, "Failed to list venues", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Venues retrieved", list))
}

func (h *Handler) GetVenue(w http.ResponseWriter, r *http.Request) {
	venue, err := h.VenueService.GetVenue(chi.URLParam(r, "venueId"))
	if err != nil {
		http.Error(w, "Venue not found", http.StatusNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Venue retrieved", venue))
}

func (h *Handler) MyVenues(w http.ResponseWriter, r *http.Request) {
	list, err := h.VenueService.ListVenuesByOwner(auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("MyVenues: %v", err))
		http.Error(w, "Failed to list venues", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Venues retrieved", list))
}

func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var in venues.VenueInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	venue, err := h.VenueService.CreateVenue(auth.UserID(r.Context()), in)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateVenue: %v", err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Venue created", venue))
}

func (h *Handler) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	var in venues.VenueInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	isAdmin := auth.UserRole(r.Context()) == models.RoleAdmin
	venue, err := h.VenueService.UpdateVenue(chi.URLParam(r, "venueId"), auth.UserID(r.Context()), isAdmin, in)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, venues.ErrNotOwner) {
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Venue updated", venue))
}

// DeleteVenue answers 409 with a warning instead of deleting when events
// still reference the venue.
func (h *Handler) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	isAdmin := auth.UserRole(r.Context()) == models.RoleAdmin
	err := h.VenueService.DeleteVenue(chi.URLParam(r, "venueId"), auth.UserID(r.Context()), isAdmin)
	if err != nil {
		switch {
		case errors.Is(err, venues.ErrVenueInUse):
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("Venue not deleted", err.Error()))
		case errors.Is(err, venues.ErrNotOwner):
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Venue deleted", nil))
}
