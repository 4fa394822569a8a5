package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/yummy_recipes/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	c.NameKey = strings.ToLower(c.Name)
	err := r.DB.WithContext(ctx).Create(c).Error
	if isUniqueViolation(err) {
		return &DuplicateError{Field: "name"}
	}
	return err
}

// ListCategories returns one page of the owner's categories; a non-empty q filters by name substring.
func (r *GormRepo) ListCategories(ctx context.Context, userID uint, q string, offset, limit int) (int64, []models.Category, error) {
	base := r.DB.WithContext(ctx).Model(&models.Category{}).Where("user_id = ?", userID)
	if q != "" {
		base = base.Where("name_key LIKE ?", likePattern(q))
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Category
	if err := base.Session(&gorm.Session{}).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, userID, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) SaveCategory(ctx context.Context, c *models.Category) error {
	c.NameKey = strings.ToLower(c.Name)
	err := r.DB.WithContext(ctx).Save(c).Error
	if isUniqueViolation(err) {
		return &DuplicateError{Field: "name"}
	}
	return err
}

// DeleteCategory removes the category together with its recipes.
func (r *GormRepo) DeleteCategory(ctx context.Context, userID, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("category_id = ?", id).Delete(&models.Recipe{}).Error
	})
}
