package service

import (
	"context"
	"strings"

	"adminhub/internal/models"
	"adminhub/internal/repository"
)

// CategoryInput is the payload for creating a category.
type CategoryInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	ParentID *uint  `json:"parent_id"`
	IconURL  string `json:"icon_url" validate:"max=1000"`
}

// CategoryService manages event categories.
type CategoryService struct {
	repo  repository.CategoryRepository
	audit *ActivityLogService
}

func NewCategoryService(repo repository.CategoryRepository, audit *ActivityLogService) *CategoryService {
	return &CategoryService{repo: repo, audit: audit}
}

// List returns every category; the repository serves it from Redis when warm.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.repo.List(ctx)
}

// Create adds a category. Names are unique regardless of case.
func (s *CategoryService) Create(ctx context.Context, actor Actor, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.ParentID != nil {
			return nil, models.NewValidationError("categories can only nest one level deep")
		}
	}

	category := &models.Category{Name: in.Name, ParentID: in.ParentID, IconURL: in.IconURL}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, models.ActionCategoryCreate, "category", category.ID, map[string]any{"name": category.Name})
	return category, nil
}

// Delete removes a category that has no subcategories.
func (s *CategoryService) Delete(ctx context.Context, actor Actor, id uint) error {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return models.NewConflictError("Category still has subcategories")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, models.ActionCategoryDelete, "category", id, map[string]any{"name": category.Name})
	return nil
}
