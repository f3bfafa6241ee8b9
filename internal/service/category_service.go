package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/repository"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// CategoryService manages the admin-owned category registry.
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService constructs the service.
func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// CreateCategory registers a new category. Names are unique
// case-insensitively. Admin only.
func (s *CategoryService) CreateCategory(ctx context.Context, actor *domain.User, name, description string) (*domain.Category, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name is required", nil)
	}

	if _, err := s.categories.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("category already exists", map[string]any{"name": name})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	createdBy := actor.ID
	category := &domain.Category{
		Name:        name,
		Description: strings.TrimSpace(description),
		IsActive:    true,
		CreatedBy:   &createdBy,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// UpdateCategory renames a category or changes its description. Admin only.
func (s *CategoryService) UpdateCategory(ctx context.Context, actor *domain.User, id, name, description string) (*domain.Category, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name is required", nil)
	}

	category, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing, err := s.categories.GetByName(ctx, name); err == nil && existing.ID != category.ID {
		return nil, apperrors.NewConflict("category already exists", map[string]any{"name": name})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	category.Name = name
	category.Description = strings.TrimSpace(description)
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// SetActive toggles whether users may select the category for new requests.
// Existing requests keep their recorded category value either way.
func (s *CategoryService) SetActive(ctx context.Context, actor *domain.User, id string, active bool) (*domain.Category, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.IsActive = active
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// DeleteCategory removes a category no request has ever used. In-use
// categories can only be deactivated.
func (s *CategoryService) DeleteCategory(ctx context.Context, actor *domain.User, id string) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.categories.UsageCount(ctx, category.Name)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		return apperrors.NewConflict("category is in use; deactivate instead", map[string]any{
			"name":  category.Name,
			"usage": count,
		})
	}

	if err := s.categories.Delete(ctx, category.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListCategories returns the registry. Admins see everything; users see
// only the active entries offered at request creation.
func (s *CategoryService) ListCategories(ctx context.Context, actor *domain.User) ([]domain.Category, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	var (
		result []domain.Category
		err    error
	)
	if actor.IsAdmin() {
		result, err = s.categories.ListAll(ctx)
	} else {
		result, err = s.categories.ListActive(ctx)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

func (s *CategoryService) getCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return category, nil
}
