package service

import (
	"context"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/repository"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CategoryService defines the interface for category business logic
type CategoryService interface {
	// List returns every category by name with "other" last
	List(ctx context.Context) ([]domain.Category, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context) ([]domain.Category, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.category.list")
	defer span.End()

	categories, err := s.repo.List(ctx)
	if err != nil {
		telemetry.FailSpan(span, err, "list failed")
		return nil, err
	}
	if len(categories) == 0 {
		span.SetStatus(codes.Error, "empty")
		return nil, domain.ErrNoCategoriesFound
	}

	sorted := make([]domain.Category, len(categories))
	copy(sorted, categories)
	domain.SortCategories(sorted)

	span.SetAttributes(attribute.Int("count", len(sorted)))
	span.SetStatus(codes.Ok, "")
	return sorted, nil
}
