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
	"tixly/internal/users"
	"tixly/internal/utils"
)

type Handler struct {
	UserService *users.UserService
	Logger      *logger.Logger
}

func NewHandler(userService *users.UserService, log *logger.Logger) *Handler {
	return &Handler{UserService: userService, Logger: log}
}

type loginRequest struct {
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role,omitempty"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.UserService.Login(req.Email, req.Name, req.Role)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, users.ErrBlocked) {
			status = http.StatusForbidden
		}
		h.Logger.Error("API", fmt.Sprintf("Login: %v", err))
		http.Error(w, err.Error(), status)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Logged in", result))
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUser(auth.UserID(r.Context()))
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Profile retrieved", user))
}

type profileRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.UserService.UpdateProfile(auth.UserID(r.Context()), req.Name, req.Image)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Profile updated", user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.UserService.ListUsers()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListUsers: %v", err))
		http.Error(w, "Failed to list users", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Users retrieved", list))
}

func (h *Handler) BlockUser(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.BlockUser(chi.URLParam(r, "userId")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("User blocked", nil))
}

func (h *Handler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.UnblockUser(chi.URLParam(r, "userId")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("User unblocked", nil))
}
