package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/yummy_recipes/internal/logging"
	authmw "github.com/Skotchmaster/yummy_recipes/internal/middleware/auth"
	"github.com/Skotchmaster/yummy_recipes/internal/service"
)

const categoryNotFoundMsg = "Category with category id could not be found."

type CategoryHandler struct {
	Svc *service.CategoryService
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *CategoryHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")
	id, _ := authmw.IdentityFrom(c)

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_category_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, invalidBodyMsg)
	}

	cat, err := h.Svc.Create(ctx, id.User.ID, req.Name)
	if err != nil {
		return errorResponse(l, "create_category_failed", err, categoryNotFoundMsg)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")
	id, _ := authmw.IdentityFrom(c)

	page, limit, offset, err := parsePage(c)
	if err != nil {
		return err
	}

	total, items, err := h.Svc.List(ctx, id.User.ID, c.QueryParam("q"), offset, limit)
	if err != nil {
		return errorResponse(l, "list_categories_failed", err, categoryNotFoundMsg)
	}
	return pageJSON(c, items, page, limit, total)
}

func (h *CategoryHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")
	id, _ := authmw.IdentityFrom(c)

	categoryID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	cat, err := h.Svc.Get(ctx, id.User.ID, categoryID)
	if err != nil {
		return errorResponse(l, "get_category_failed", err, categoryNotFoundMsg)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")
	id, _ := authmw.IdentityFrom(c)

	categoryID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_category_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, invalidBodyMsg)
	}

	cat, err := h.Svc.Update(ctx, id.User.ID, categoryID, req.Name)
	if err != nil {
		return errorResponse(l, "update_category_failed", err, categoryNotFoundMsg)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")
	id, _ := authmw.IdentityFrom(c)

	categoryID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, id.User.ID, categoryID); err != nil {
		return errorResponse(l, "delete_category_failed", err, categoryNotFoundMsg)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Category has been deleted.",
	})
}
