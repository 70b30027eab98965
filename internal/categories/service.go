package categories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tixly/internal/logger"
	"tixly/internal/models"
)

var ErrEmptyName = errors.New("category name is required")

type CategoryDBLayer interface {
	GetCategoryByID(id string) (*models.Category, error)
	CreateCategory(category models.Category) error
	UpdateCategory(category models.Category) error
	DeleteCategory(id string) error
	ListCategories() ([]models.Category, error)
}

type CategoryService struct {
	DB     CategoryDBLayer
	Logger *logger.Logger
}

func NewCategoryService(db CategoryDBLayer, log *logger.Logger) *CategoryService {
	return &CategoryService{DB: db, Logger: log}
}

func (s *CategoryService) CreateCategory(name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	category := models.Category{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.DB.CreateCategory(category); err != nil {
		s.Logger.Error("CATEGORY", fmt.Sprintf("Failed to create category %q: %v", name, err))
		return nil, err
	}
	s.Logger.Info("CATEGORY", fmt.Sprintf("Category %q created", name))
	return &category, nil
}

func (s *CategoryService) RenameCategory(id, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	current, err := s.DB.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}
	current.Name = name
	if err := s.DB.UpdateCategory(*current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *CategoryService) DeleteCategory(id string) error {
	return s.DB.DeleteCategory(id)
}

func (s *CategoryService) GetCategory(id string) (*models.Category, error) {
	return s.DB.GetCategoryByID(id)
}

func (s *CategoryService) ListCategories() ([]models.Category, error) {
	return s.DB.ListCategories()
}
