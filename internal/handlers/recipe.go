package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/yummy_recipes/internal/logging"
	authmw "github.com/Skotchmaster/yummy_recipes/internal/middleware/auth"
	"github.com/Skotchmaster/yummy_recipes/internal/service"
)

const (
	recipeCategoryNotFoundMsg = "Sorry, recipe category could not be found."
	recipeNotFoundMsg         = "Sorry, recipe could not be found."
)

type RecipeHandler struct {
	Svc *service.RecipeService
}

type recipeRequest struct {
	Name        *string `json:"name"`
	Ingredients *string `json:"ingredients"`
	Directions  *string `json:"directions"`
}

func (r recipeRequest) input() service.RecipeInput {
	return service.RecipeInput{Name: r.Name, Ingredients: r.Ingredients, Directions: r.Directions}
}

func (h *RecipeHandler) fail(l *slog.Logger, event string, err error) error {
	if errors.Is(err, service.ErrCategoryNotFound) {
		return errorResponse(l, event, err, recipeCategoryNotFoundMsg)
	}
	return errorResponse(l, event, err, recipeNotFoundMsg)
}

func (h *RecipeHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "recipe.create")
	id, _ := authmw.IdentityFrom(c)

	categoryID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req recipeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_recipe_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, invalidBodyMsg)
	}

	rec, err := h.Svc.Create(ctx, id.User.ID, categoryID, req.input())
	if err != nil {
		return h.fail(l, "create_recipe_failed", err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *RecipeHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "recipe.list")
	id, _ := authmw.IdentityFrom(c)

	categoryID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	page, limit, offset, err := parsePage(c)
	if err != nil {
		return err
	}

	total, items, err := h.Svc.SearchRecipes(ctx, id.User.ID, categoryID, c.QueryParam("q"), offset, limit)
	if err != nil {
		return h.fail(l, "list_recipes_failed", err)
	}
	return pageJSON(c, items, page, limit, total)
}

func (h *RecipeHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "recipe.get")
	id, _ := authmw.IdentityFrom(c)

	categoryID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	recipeID, err := parseID(c, "recipe_id")
	if err != nil {
		return err
	}

	rec, err := h.Svc.Get(ctx, id.User.ID, categoryID, recipeID)
	if err != nil {
		return h.fail(l, "get_recipe_failed", err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *RecipeHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "recipe.update")
	id, _ := authmw.IdentityFrom(c)

	categoryID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	recipeID, err := parseID(c, "recipe_id")
	if err != nil {
		return err
	}

	var req recipeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_recipe_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, invalidBodyMsg)
	}

	rec, err := h.Svc.Update(ctx, id.User.ID, categoryID, recipeID, req.input())
	if err != nil {
		return h.fail(l, "update_recipe_failed", err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *RecipeHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "recipe.delete")
	id, _ := authmw.IdentityFrom(c)

	categoryID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	recipeID, err := parseID(c, "recipe_id")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, id.User.ID, categoryID, recipeID); err != nil {
		return h.fail(l, "delete_recipe_failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Recipe has been deleted.",
	})
}
