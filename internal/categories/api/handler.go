package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tixly/internal/categories"
	"tixly/internal/logger"
	"tixly/internal/utils"
)

type Handler struct {
	CategoryService *categories.CategoryService
	Logger          *logger.Logger
}

func NewHandler(categoryService *categories.CategoryService, log *logger.Logger) *Handler {
	return &Handler{CategoryService: categoryService, Logger: log}
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.CategoryService.ListCategories()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListCategories: %v", err))
		http.Error(w, "Failed to list categories", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Categories retrieved", list))
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.CategoryService.GetCategory(chi.URLParam(r, "categoryId"))
	if err != nil {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Category retrieved", category))
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	category, err := h.CategoryService.CreateCategory(req.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Category created", category))
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	category, err := h.CategoryService.RenameCategory(chi.URLParam(r, "categoryId"), req.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Category updated", category))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.CategoryService.DeleteCategory(chi.URLParam(r, "categoryId")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Category deleted", nil))
}
