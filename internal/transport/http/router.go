package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/yummy_recipes/internal/handlers"
	"github.com/Skotchmaster/yummy_recipes/internal/logging"
	"github.com/Skotchmaster/yummy_recipes/internal/metrics"
	authmw "github.com/Skotchmaster/yummy_recipes/internal/middleware/auth"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Deps struct {
	AuthHandler     *handlers.AuthHandler
	CategoryHandler *handlers.CategoryHandler
	RecipeHandler   *handlers.RecipeHandler
	Gate            authmw.Authenticator
	Metrics         *metrics.Metrics
	// Ready maps a dependency name to its readiness probe.
	Ready map[string]Pinger
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	v1 := e.Group("/api/v1")
	requireLogin := authmw.RequireLogin(d.Gate, d.Metrics)

	auth := v1.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/reset_password", d.AuthHandler.ChangePassword, requireLogin)
	auth.POST("/change_password", d.AuthHandler.ChangePassword, requireLogin)
	auth.GET("/logout", d.AuthHandler.Logout, requireLogin)
	auth.POST("/logout", d.AuthHandler.Logout, requireLogin)
	auth.GET("/me", d.AuthHandler.Me, requireLogin)

	categories := v1.Group("/categories", requireLogin)
	categories.POST("", d.CategoryHandler.Create)
	categories.GET("", d.CategoryHandler.List)
	categories.GET("/search", d.CategoryHandler.List)
	categories.GET("/:id", d.CategoryHandler.Get)
	categories.PUT("/:id", d.CategoryHandler.Update)
	categories.DELETE("/:id", d.CategoryHandler.Delete)

	categories.POST("/:id/recipes", d.RecipeHandler.Create)
	categories.GET("/:id/recipes", d.RecipeHandler.List)
	categories.GET("/:id/recipes/search", d.RecipeHandler.List)
	categories.GET("/:id/recipes/:recipe_id", d.RecipeHandler.Get)
	categories.PUT("/:id/recipes/:recipe_id", d.RecipeHandler.Update)
	categories.DELETE("/:id/recipes/:recipe_id", d.RecipeHandler.Delete)
}

func (d *Deps) ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(d.Ready))
	code := http.StatusOK
	for name, p := range d.Ready {
		if err := p.Ping(ctx); err != nil {
			logging.FromContext(ctx).Warn("readiness_check_failed", "dependency", name, "error", err)
			status[name] = "down"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "up"
	}
	return c.JSON(code, status)
}
