package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/yummy_recipes/internal/logging"
	"github.com/Skotchmaster/yummy_recipes/internal/metrics"
	authmw "github.com/Skotchmaster/yummy_recipes/internal/middleware/auth"
	"github.com/Skotchmaster/yummy_recipes/internal/service"
)

type AuthHandler struct {
	Svc     *service.AuthService
	Metrics *metrics.Metrics
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, invalidBodyMsg)
	}

	if _, err := h.Svc.Register(ctx, service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		return errorResponse(l, "register_failed", err, "")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Your account has been created.",
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, invalidBodyMsg)
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.Metrics.ObserveLogin("invalid_credentials")
		} else if errors.Is(err, service.ErrInfrastructure) {
			h.Metrics.ObserveLogin("error")
		}
		return errorResponse(l, "login_failed", err, "")
	}
	h.Metrics.ObserveLogin("success")

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "You are now logged in.",
		"access_token": res.AccessToken,
		"token_type":   "Bearer",
		"expires_at":   res.ExpiresAt.UTC(),
	})
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_change_password")

	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Sorry, user could not be authenticated.")
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("change_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, invalidBodyMsg)
	}

	if err := h.Svc.ChangePassword(ctx, id.User, service.ChangePasswordInput{
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	}); err != nil {
		return errorResponse(l, "change_password_failed", err, "")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Your password has been reset.",
	})
}

// Logout revokes the bearer token that reached it through the gate. A repeat logout with the
// same token is answered 401 by the gate before this handler runs; the service call itself
// treats an already revoked token as success.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Sorry, user could not be authenticated.")
	}

	if err := h.Svc.Logout(ctx, id); err != nil {
		return errorResponse(l, "logout_failed", err, "")
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{
		"message": "You have been logged out.",
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Sorry, user could not be authenticated.")
	}
	return c.JSON(http.StatusOK, id.User)
}
