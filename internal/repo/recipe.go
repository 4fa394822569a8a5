package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/yummy_recipes/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) CreateRecipe(ctx context.Context, rec *models.Recipe) error {
	rec.NameKey = strings.ToLower(rec.Name)
	err := r.DB.WithContext(ctx).Create(rec).Error
	if isUniqueViolation(err) {
		return &DuplicateError{Field: "name"}
	}
	return err
}

func (r *GormRepo) ListRecipes(ctx context.Context, categoryID uint, offset, limit int) (int64, []models.Recipe, error) {
	return r.SearchRecipes(ctx, categoryID, "", offset, limit)
}

// SearchRecipes matches q against recipe names and ingredients, case-insensitively.
func (r *GormRepo) SearchRecipes(ctx context.Context, categoryID uint, q string, offset, limit int) (int64, []models.Recipe, error) {
	base := r.DB.WithContext(ctx).Model(&models.Recipe{}).Where("category_id = ?", categoryID)
	if q != "" {
		p := likePattern(q)
		base = base.Where("(name_key LIKE ? OR LOWER(ingredients) LIKE ?)", p, p)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Recipe
	if err := base.Session(&gorm.Session{}).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetRecipe(ctx context.Context, categoryID, id uint) (*models.Recipe, error) {
	var rec models.Recipe
	if err := r.DB.WithContext(ctx).Where("id = ? AND category_id = ?", id, categoryID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *GormRepo) SaveRecipe(ctx context.Context, rec *models.Recipe) error {
	rec.NameKey = strings.ToLower(rec.Name)
	err := r.DB.WithContext(ctx).Save(rec).Error
	if isUniqueViolation(err) {
		return &DuplicateError{Field: "name"}
	}
	return err
}

func (r *GormRepo) DeleteRecipe(ctx context.Context, categoryID, id uint) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND category_id = ?", id, categoryID).Delete(&models.Recipe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
