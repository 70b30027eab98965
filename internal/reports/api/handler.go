package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tixly/internal/auth"
	"tixly/internal/logger"
	"tixly/internal/reports"
	"tixly/internal/utils"
)

type Handler struct {
	ReportService *reports.ReportService
	Logger        *logger.Logger
}

func NewHandler(reportService *reports.ReportService, log *logger.Logger) *Handler {
	return &Handler{ReportService: reportService, Logger: log}
}

func (h *Handler) FileReport(w http.ResponseWriter, r *http.Request) {
	var in reports.ReportInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.ReportService.FileReport(auth.UserID(r.Context()), in)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("FileReport: %v", err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Report filed", report))
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	list, err := h.ReportService.ListAll()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListReports: %v", err))
		http.Error(w, "Failed to list reports", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Reports retrieved", list))
}

func (h *Handler) MyReports(w http.ResponseWriter, r *http.Request) {
	list, err := h.ReportService.ListByOrganizer(auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("MyReports: %v", err))
		http.Error(w, "Failed to list reports", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Reports retrieved", list))
}

type resolveRequest struct {
	Action string `json:"action"`
}

// ResolveReport applies an admin moderation decision: ban_event,
// block_user, or dismiss.
func (h *Handler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportId")

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var err error
	switch req.Action {
	case "ban_event":
		err = h.ReportService.ResolveBanEvent(reportID)
	case "block_user":
		err = h.ReportService.ResolveBlockUser(reportID)
	case "dismiss":
		err = h.ReportService.Dismiss(reportID)
	default:
		http.Error(w, "action must be ban_event, block_user or dismiss", http.StatusBadRequest)
		return
	}

	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ResolveReport %s (%s): %v", reportID, req.Action, err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Report resolved", map[string]string{"action": req.Action}))
}
