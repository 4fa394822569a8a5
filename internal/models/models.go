package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Username     string    `gorm:"size:80;uniqueIndex;not null"  json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null"                      json:"-"`
	CreatedAt    time.Time `json:"date_created"`
	UpdatedAt    time.Time `json:"date_modified"`
}

// RevokedToken stores the SHA-256 digest of a logged out token, never the token itself.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"                   json:"id"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	RevokedAt time.Time `gorm:"not null"                     json:"revoked_at"`
	ExpiresAt time.Time `gorm:"index;not null"               json:"expires_at"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                           json:"id"`
	Name      string    `gorm:"size:50;not null"                                   json:"name"`
	NameKey   string    `gorm:"size:50;not null;uniqueIndex:idx_categories_owner_name" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_categories_owner_name"      json:"user_id"`
	CreatedAt time.Time `json:"date_created"`
	UpdatedAt time.Time `json:"date_modified"`
}

type Recipe struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"                              json:"id"`
	Name        string    `gorm:"size:100;not null"                                     json:"name"`
	NameKey     string    `gorm:"size:100;not null;uniqueIndex:idx_recipes_category_name" json:"-"`
	Ingredients string    `gorm:"size:800;not null"                                     json:"ingredients"`
	Directions  string    `gorm:"size:2000;not null"                                    json:"directions"`
	CategoryID  uint      `gorm:"not null;uniqueIndex:idx_recipes_category_name"         json:"category_id"`
	CreatedAt   time.Time `json:"date_created"`
	UpdatedAt   time.Time `json:"date_modified"`
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{&User{}, &RevokedToken{}, &Category{}, &Recipe{}}
}
