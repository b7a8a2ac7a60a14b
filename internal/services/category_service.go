package services

import (
	"context"
	"strings"
	"time"

	"blogapi/internal/apperr"
	"blogapi/internal/models"
	"blogapi/internal/utils"
)

const (
	MsgCategoryNotFound = "Category Not Found!"
	MsgCategoryDeleted  = "Category Has Been Deleted Successfully!"

	categoryListKey = "categories:all"
	categoryListTTL = 5 * time.Minute
)

type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uint) (*models.Category, error)
	Delete(ctx context.Context, id uint) error
}

type CreateCategoryInput struct {
	Title string `json:"title" binding:"required,min=1,max=100"`
}

// CategoryService serves the category list from an LRU cache that is
// dropped on every change.
type CategoryService struct {
	categories CategoryStore
	cache      *utils.Cache[[]models.Category]
}

func NewCategoryService(categories CategoryStore) *CategoryService {
	cache, err := utils.NewCache[[]models.Category](16, categoryListTTL)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &CategoryService{categories: categories, cache: cache}
}

func (s *CategoryService) Create(ctx context.Context, admin uint, in CreateCategoryInput) (*models.Category, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate(&in); err != nil {
		return nil, err
	}

	category := &models.Category{UserID: admin, Title: in.Title}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperr.Dependency("create category", err)
	}
	s.cache.Delete(categoryListKey)
	return category, nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	if cached, ok := s.cache.Get(categoryListKey); ok {
		return cached, nil
	}
	list, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperr.Dependency("list categories", err)
	}
	s.cache.Set(categoryListKey, list)
	return list, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return apperr.Dependency("find category", err)
	}
	if category == nil {
		return apperr.NotFound(MsgCategoryNotFound)
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return apperr.Dependency("delete category", err)
	}
	s.cache.Delete(categoryListKey)
	return nil
}
