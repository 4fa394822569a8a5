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

const duplicateRecipeMsg = "A recipe with this recipe name is already available."

// RecipeInput fields are optional on update; nil leaves the stored value unchanged.
type RecipeInput struct {
	Name        *string
	Ingredients *string
	Directions  *string
}

type RecipeService struct {
	Categories CategoryStore
	Recipes    RecipeStore
	// Search defaults to the database when nil.
	Search RecipeSearcher
	Index  RecipeIndexer
	Events events.Publisher
}

func (s *RecipeService) Create(ctx context.Context, userID, categoryID uint, in RecipeInput) (*models.Recipe, error) {
	l := logging.FromContext(ctx).With("svc", "recipe.create", "user_id", userID, "category_id", categoryID)

	name, ingredients, directions := deref(in.Name), deref(in.Ingredients), deref(in.Directions)
	if errs := validation.Recipe(&name, &ingredients, &directions); errs != nil {
		return nil, invalid(errs)
	}
	if err := s.ownCategory(ctx, userID, categoryID); err != nil {
		return nil, err
	}

	rec := &models.Recipe{
		Name:        strings.TrimSpace(name),
		Ingredients: strings.TrimSpace(ingredients),
		Directions:  strings.TrimSpace(directions),
		CategoryID:  categoryID,
	}
	if err := s.Recipes.CreateRecipe(ctx, rec); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, duplicate("name", duplicateRecipeMsg)
		}
		l.Error("create_recipe_failed", "error", err)
		return nil, infra("create recipe", err)
	}

	s.reindex(ctx, rec)
	publish(ctx, s.Events, userKey(userID), events.New(events.RecipeCreated, userID, map[string]any{"recipe_id": rec.ID, "category_id": categoryID}))
	return rec, nil
}

// SearchRecipes lists the category's recipes, filtered by q when it is not blank.
func (s *RecipeService) SearchRecipes(ctx context.Context, userID, categoryID uint, q string, offset, limit int) (int64, []models.Recipe, error) {
	if err := s.ownCategory(ctx, userID, categoryID); err != nil {
		return 0, nil, err
	}
	q = strings.TrimSpace(q)
	if q == "" {
		total, items, err := s.Recipes.ListRecipes(ctx, categoryID, offset, limit)
		if err != nil {
			return 0, nil, infra("list recipes", err)
		}
		return total, items, nil
	}

	searcher := s.Search
	if searcher == nil {
		if db, ok := s.Recipes.(RecipeSearcher); ok {
			searcher = db
		} else {
			return 0, nil, infra("search recipes", errors.New("no recipe searcher configured"))
		}
	}

	total, items, err := searcher.SearchRecipes(ctx, categoryID, q, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("search_recipes_failed", "svc", "recipe.search", "error", err)
		return 0, nil, infra("search recipes", err)
	}
	return total, items, nil
}

func (s *RecipeService) Get(ctx context.Context, userID, categoryID, id uint) (*models.Recipe, error) {
	if err := s.ownCategory(ctx, userID, categoryID); err != nil {
		return nil, err
	}
	rec, err := s.Recipes.GetRecipe(ctx, categoryID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, infra("get recipe", err)
	}
	return rec, nil
}

func (s *RecipeService) Update(ctx context.Context, userID, categoryID, id uint, in RecipeInput) (*models.Recipe, error) {
	if errs := validation.Recipe(in.Name, in.Ingredients, in.Directions); errs != nil {
		return nil, invalid(errs)
	}

	rec, err := s.Get(ctx, userID, categoryID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		rec.Name = strings.TrimSpace(*in.Name)
	}
	if in.Ingredients != nil {
		rec.Ingredients = strings.TrimSpace(*in.Ingredients)
	}
	if in.Directions != nil {
		rec.Directions = strings.TrimSpace(*in.Directions)
	}

	if err := s.Recipes.SaveRecipe(ctx, rec); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, duplicate("name", duplicateRecipeMsg)
		}
		return nil, infra("save recipe", err)
	}

	s.reindex(ctx, rec)
	publish(ctx, s.Events, userKey(userID), events.New(events.RecipeUpdated, userID, map[string]any{"recipe_id": rec.ID, "category_id": categoryID}))
	return rec, nil
}

func (s *RecipeService) Delete(ctx context.Context, userID, categoryID, id uint) error {
	if err := s.ownCategory(ctx, userID, categoryID); err != nil {
		return err
	}
	if err := s.Recipes.DeleteRecipe(ctx, categoryID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRecipeNotFound
		}
		return infra("delete recipe", err)
	}

	if s.Index != nil {
		if err := s.Index.RemoveRecipe(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("recipe_unindex_failed", "recipe_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, userKey(userID), events.New(events.RecipeDeleted, userID, map[string]any{"recipe_id": id, "category_id": categoryID}))
	return nil
}

func (s *RecipeService) ownCategory(ctx context.Context, userID, categoryID uint) error {
	if _, err := s.Categories.GetCategory(ctx, userID, categoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return infra("get category", err)
	}
	return nil
}

func (s *RecipeService) reindex(ctx context.Context, rec *models.Recipe) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexRecipe(ctx, rec); err != nil {
		logging.FromContext(ctx).Warn("recipe_index_failed", "recipe_id", rec.ID, "error", err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
