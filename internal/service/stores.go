package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/yummy_recipes/internal/events"
	"github.com/Skotchmaster/yummy_recipes/internal/logging"
	"github.com/Skotchmaster/yummy_recipes/internal/models"
)

// CredentialStore returns (nil, nil) from the Find methods when no user matches.
type CredentialStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
}

type RevocationLedger interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	ListCategories(ctx context.Context, userID uint, q string, offset, limit int) (int64, []models.Category, error)
	GetCategory(ctx context.Context, userID, id uint) (*models.Category, error)
	SaveCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, userID, id uint) error
}

type RecipeStore interface {
	CreateRecipe(ctx context.Context, r *models.Recipe) error
	ListRecipes(ctx context.Context, categoryID uint, offset, limit int) (int64, []models.Recipe, error)
	GetRecipe(ctx context.Context, categoryID, id uint) (*models.Recipe, error)
	SaveRecipe(ctx context.Context, r *models.Recipe) error
	DeleteRecipe(ctx context.Context, categoryID, id uint) error
}

type RecipeSearcher interface {
	SearchRecipes(ctx context.Context, categoryID uint, q string, offset, limit int) (int64, []models.Recipe, error)
}

type RecipeIndexer interface {
	IndexRecipe(ctx context.Context, r *models.Recipe) error
	RemoveRecipe(ctx context.Context, id uint) error
}

// publish is best-effort: a failed publish is logged and never fails the caller.
func publish(ctx context.Context, p events.Publisher, key string, ev events.Event) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, key, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", ev.Type, "error", err)
	}
}
