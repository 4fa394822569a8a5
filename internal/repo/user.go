package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/yummy_recipes/internal/models"
	"gorm.io/gorm"
)

// CreateUser relies on the unique indexes on username and email; a losing concurrent
// insert gets a *DuplicateError naming the colliding field.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Create(u).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return err
	}

	field := "email"
	taken, lookupErr := r.FindByUsername(ctx, u.Username)
	if lookupErr != nil {
		return lookupErr
	}
	if taken != nil {
		field = "username"
	}
	return &DuplicateError{Field: field}
}

func (r *GormRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findUser(ctx, "username = ?", username)
}

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findUser(ctx, "email = ?", email)
}

func (r *GormRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return r.findUser(ctx, "id = ?", id)
}

func (r *GormRepo) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Save(u).Error
	if isUniqueViolation(err) {
		return &DuplicateError{Field: "email"}
	}
	return err
}
