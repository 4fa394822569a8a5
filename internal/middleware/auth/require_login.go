package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/yummy_recipes/internal/logging"
	"github.com/Skotchmaster/yummy_recipes/internal/metrics"
	"github.com/Skotchmaster/yummy_recipes/internal/service"
)

const identityKey = "identity"

const internalErrorMsg = "Sorry, something went wrong. Please try again later."

type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*service.Identity, error)
}

// RequireLogin admits a request only when the gate resolves its bearer token to a live user.
func RequireLogin(a Authenticator, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "require_login")

			id, err := a.Authenticate(ctx, c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				var authErr *service.AuthError
				if errors.As(err, &authErr) {
					m.ObserveGate(string(authErr.Reason))
					l.Warn("auth_rejected", "status", 401, "reason", authErr.Reason)
					return echo.NewHTTPError(http.StatusUnauthorized, authErr.Message())
				}
				m.ObserveGate("infrastructure")
				l.Error("auth_failed", "status", 500, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, internalErrorMsg).SetInternal(err)
			}

			m.ObserveGate("authorized")
			c.Set(identityKey, id)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", id.User.ID))))
			return next(c)
		}
	}
}

func IdentityFrom(c echo.Context) (*service.Identity, bool) {
	id, ok := c.Get(identityKey).(*service.Identity)
	return id, ok && id != nil
}
