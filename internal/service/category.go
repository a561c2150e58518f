package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// CategoryService manages per-user categories and keeps their
// denormalized book counts in step with book operations.
type CategoryService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(store *store.Store, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:  store,
		logger: logger,
	}
}

// CreateCategoryRequest contains data for creating a category.
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// Create adds a named category for the user. Names are unique per user;
// a duplicate fails with a conflict. An omitted color gets the default.
func (s *CategoryService) Create(ctx context.Context, userID string, req CreateCategoryRequest) (*domain.Category, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	color := req.Color
	if color == "" {
		color = domain.DefaultCategoryColor
	}

	categoryID, err := id.Generate("cat")
	if err != nil {
		return nil, fmt.Errorf("generate category ID: %w", err)
	}

	category := &domain.Category{
		Timestamps: domain.Timestamps{
			ID: categoryID,
		},
		UserID: userID,
		Name:   req.Name,
		Color:  color,
	}
	category.InitTimestamps()

	if err := s.store.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, store.ErrCategoryExists) {
			return nil, domainerrors.DuplicateCategory(fmt.Sprintf("category %q already exists", req.Name))
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Category created",
			"category_id", categoryID,
			"user_id", userID,
			"name", req.Name,
		)
	}

	return category, nil
}

// List returns the user's categories sorted by name.
func (s *CategoryService) List(ctx context.Context, userID string) ([]*domain.Category, error) {
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Delete removes a category. Books referencing it are not deleted;
// their category field is cleared so they become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	category, err := s.store.GetCategory(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			return domainerrors.NotFound("category not found")
		}
		return fmt.Errorf("get category: %w", err)
	}

	orphaned, err := s.store.ClearCategoryForBooks(ctx, userID, category.Name)
	if err != nil {
		return fmt.Errorf("clear category from books: %w", err)
	}

	if err := s.store.DeleteCategory(ctx, userID, categoryID); err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			return domainerrors.NotFound("category not found")
		}
		return fmt.Errorf("delete category: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Category deleted",
			"category_id", categoryID,
			"user_id", userID,
			"name", category.Name,
			"orphaned_books", orphaned,
		)
	}

	return nil
}

// touchOnBookAdded bumps the count for the named category, creating the
// category with the default color if the user hasn't defined it yet.
func (s *CategoryService) touchOnBookAdded(ctx context.Context, userID, name string) error {
	newID, err := id.Generate("cat")
	if err != nil {
		return fmt.Errorf("generate category ID: %w", err)
	}
	return s.store.AdjustCategoryCount(ctx, userID, name, 1, newID)
}

// touchOnBookRemoved decrements the count for the named category. The
// count never goes below zero, and a missing category is tolerated.
func (s *CategoryService) touchOnBookRemoved(ctx context.Context, userID, name string) error {
	return s.store.AdjustCategoryCount(ctx, userID, name, -1, "")
}
