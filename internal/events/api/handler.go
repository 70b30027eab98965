package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tixly/internal/auth"
	"tixly/internal/events"
	"tixly/internal/events/aigen"
	"tixly/internal/logger"
	"tixly/internal/models"
	"tixly/internal/utils"
)

// CategorySource and VenueSource let the generation endpoint resolve the
// model's suggested names back to stored records.
type CategorySource interface {
	ListCategories() ([]models.Category, error)
}

type VenueSource interface {
	ListVenues() ([]models.Venue, error)
}

type Handler struct {
	EventService *events.EventService
	Generator    *aigen.Fetcher
	Categories   CategorySource
	Venues       VenueSource
	Logger       *logger.Logger
}

func NewHandler(eventService *events.EventService, generator *aigen.Fetcher, categories CategorySource, venues VenueSource, log *logger.Logger) *Handler {
	return &Handler{
		EventService: eventService,
		Generator:    generator,
		Categories:   categories,
		Venues:       venues,
		Logger:       log,
	}
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := models.EventFilter{
		CategoryID: r.URL.Query().Get("category"),
		VenueID:    r.URL.Query().Get("venue"),
		Query:      r.URL.Query().Get("q"),
	}

	list, err := h.EventService.ListPublished(filter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		http.Error(w, "Failed to list events", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Events retrieved", list))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.EventService.GetEvent(eventID)
	if err != nil {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}

	// Banned events stay visible to their organizer and to admins only.
	if event.Status == models.EventBanned {
		role := auth.UserRole(r.Context())
		if role != models.RoleAdmin && auth.UserID(r.Context()) != event.OrganizerID {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event retrieved", event))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in events.EventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.EventService.CreateEvent(auth.UserID(r.Context()), in)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Event created", event))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var in events.EventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	isAdmin := auth.UserRole(r.Context()) == models.RoleAdmin
	event, changes, err := h.EventService.UpdateEvent(eventID, auth.UserID(r.Context()), isAdmin, in)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, events.ErrNotOwner) {
			status = http.StatusForbidden
		}
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent: %v", err))
		http.Error(w, err.Error(), status)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event updated", map[string]interface{}{
		"event":   event,
		"changes": changes,
	}))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	isAdmin := auth.UserRole(r.Context()) == models.RoleAdmin
	if err := h.EventService.DeleteEvent(eventID, auth.UserID(r.Context()), isAdmin); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, events.ErrNotOwner) {
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event deleted", nil))
}

func (h *Handler) MyEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.EventService.ListByOrganizer(auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("MyEvents: %v", err))
		http.Error(w, "Failed to list events", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Events retrieved", list))
}

func (h *Handler) BanEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if err := h.EventService.BanEvent(eventID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event banned", nil))
}

func (h *Handler) UnbanEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if err := h.EventService.UnbanEvent(eventID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event unbanned", nil))
}

type generateRequest struct {
	Title string `json:"title"`
}

type generateResponse struct {
	Description  string `json:"description"`
	Category     string `json:"category"`
	Venue        string `json:"venue"`
	CategoryID   string `json:"categoryId,omitempty"`
	VenueID      string `json:"venueId,omitempty"`
	TicketsCount int    `json:"ticketsCount"`
}

// GenerateEventData drafts event copy from a working title and maps the
// suggested category and venue names back to stored IDs when they match.
func (h *Handler) GenerateEventData(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	categories, err := h.Categories.ListCategories()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GenerateEventData: failed to load categories: %v", err))
		http.Error(w, "Failed to load categories", http.StatusInternalServerError)
		return
	}
	venues, err := h.Venues.ListVenues()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GenerateEventData: failed to load venues: %v", err))
		http.Error(w, "Failed to load venues", http.StatusInternalServerError)
		return
	}

	categoryNames := make([]string, 0, len(categories))
	for _, c := range categories {
		categoryNames = append(categoryNames, c.Name)
	}
	venueNames := make([]string, 0, len(venues))
	for _, v := range venues {
		venueNames = append(venueNames, v.Title)
	}

	draft, err := h.Generator.GenerateDraft(req.Title, categoryNames, venueNames)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, aigen.ErrNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		h.Logger.Error("API", fmt.Sprintf("GenerateEventData: %v", err))
		http.Error(w, err.Error(), status)
		return
	}

	resp := generateResponse{
		Description:  draft.Description,
		Category:     draft.CategoryName,
		Venue:        draft.VenueName,
		TicketsCount: draft.TicketsCount,
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, draft.CategoryName) {
			resp.CategoryID = c.ID
			break
		}
	}
	for _, v := range venues {
		if strings.EqualFold(v.Title, draft.VenueName) {
			resp.VenueID = v.ID
			break
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event draft generated", resp))
}
