package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/yummy_recipes/internal/events"
	"github.com/Skotchmaster/yummy_recipes/internal/logging"
	"github.com/Skotchmaster/yummy_recipes/internal/models"
	"github.com/Skotchmaster/yummy_recipes/internal/repo"
	"github.com/Skotchmaster/yummy_recipes/internal/validation"
)

const duplicateCategoryMsg = "A category with this category name is already available."

type CategoryService struct {
	Store  CategoryStore
	Events events.Publisher
}

func (s *CategoryService) Create(ctx context.Context, userID uint, name string) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "category.create", "user_id", userID)

	name = strings.TrimSpace(name)
	if errs := validation.CategoryName(name); errs != nil {
		return nil, invalid(errs)
	}

	c := &models.Category{Name: name, UserID: userID}
	if err := s.Store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, duplicate("name", duplicateCategoryMsg)
		}
		l.Error("create_category_failed", "error", err)
		return nil, infra("create category", err)
	}

	publish(ctx, s.Events, userKey(userID), events.New(events.CategoryCreated, userID, map[string]any{"category_id": c.ID, "name": c.Name}))
	return c, nil
}

// List returns a page of the user's categories; q filters by name when non-empty.
func (s *CategoryService) List(ctx context.Context, userID uint, q string, offset, limit int) (int64, []models.Category, error) {
	total, items, err := s.Store.ListCategories(ctx, userID, strings.TrimSpace(q), offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("list_categories_failed", "svc", "category.list", "error", err)
		return 0, nil, infra("list categories", err)
	}
	return total, items, nil
}

func (s *CategoryService) Get(ctx context.Context, userID, id uint) (*models.Category, error) {
	c, err := s.Store.GetCategory(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, infra("get category", err)
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id uint, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if errs := validation.CategoryName(name); errs != nil {
		return nil, invalid(errs)
	}

	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	c.Name = name
	if err := s.Store.SaveCategory(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, duplicate("name", duplicateCategoryMsg)
		}
		return nil, infra("save category", err)
	}

	publish(ctx, s.Events, userKey(userID), events.New(events.CategoryUpdated, userID, map[string]any{"category_id": c.ID, "name": c.Name}))
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.Store.DeleteCategory(ctx, userID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return infra("delete category", err)
	}

	publish(ctx, s.Events, userKey(userID), events.New(events.CategoryDeleted, userID, map[string]any{"category_id": id}))
	return nil
}
