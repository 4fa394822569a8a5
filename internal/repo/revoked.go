package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/yummy_recipes/internal/models"
	"github.com/Skotchmaster/yummy_recipes/internal/tokens"
)

func (r *GormRepo) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	row := models.RevokedToken{
		TokenHash: tokens.Sha256Hex(token),
		RevokedAt: time.Now().UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
	err := r.DB.WithContext(ctx).Create(&row).Error
	if isUniqueViolation(err) {
		return ErrAlreadyRevoked
	}
	return err
}

func (r *GormRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.RevokedToken{}).
		Where("token_hash = ?", tokens.Sha256Hex(token)).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PurgeExpired drops entries for tokens that can no longer pass decoding anyway.
func (r *GormRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at < ?", before.UTC()).
		Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}
