package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/yummy_recipes/internal/service"
	"github.com/Skotchmaster/yummy_recipes/internal/util"
)

const (
	invalidBodyMsg   = "Please provide a valid JSON body."
	invalidPageMsg   = "Please enter valid page and limit values."
	internalErrorMsg = "Sorry, something went wrong. Please try again later."
)

// errorResponse maps service errors to HTTP errors; notFound is the message for ErrNotFound.
func errorResponse(l *slog.Logger, event string, err error, notFound string) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		l.Info(event, "status", http.StatusBadRequest, "fields", len(verr.Fields))
		return echo.NewHTTPError(http.StatusBadRequest, verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials):
		l.Warn(event, "status", http.StatusUnauthorized, "reason", "invalid credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, "Sorry, your username/password is invalid.")
	case errors.Is(err, service.ErrWrongPassword):
		l.Warn(event, "status", http.StatusUnauthorized, "reason", "wrong current password")
		return echo.NewHTTPError(http.StatusUnauthorized, "The current password entered is incorrect.")
	case errors.Is(err, service.ErrNotFound):
		l.Info(event, "status", http.StatusNotFound)
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	default:
		l.Error(event, "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, internalErrorMsg).SetInternal(err)
	}
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Please enter a valid "+name+".")
	}
	return uint(id), nil
}

func parsePage(c echo.Context) (page, limit, offset int, err error) {
	page, limit, err = util.ParsePage(c.QueryParam("page"), c.QueryParam("limit"))
	if err != nil {
		return 0, 0, 0, echo.NewHTTPError(http.StatusBadRequest, invalidPageMsg)
	}
	offset, limit = util.Calculate(page, limit)
	return page, limit, offset, nil
}

func pageJSON(c echo.Context, items any, page, limit int, total int64) error {
	meta := util.NewMeta(page, limit, total)
	prev, next := util.Links(c.Request().URL.Path, c.QueryParams(), meta)
	return c.JSON(http.StatusOK, echo.Map{
		"results":       items,
		"meta":          meta,
		"previous_link": prev,
		"next_link":     next,
	})
}
