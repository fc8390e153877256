package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

// UserRepository provides access to user identity records.
type UserRepository interface {
	FindByAnyKey(ctx context.Context, key string) (models.UserIdentity, error)
	Create(ctx context.Context, user *models.UserIdentity) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByAnyKey returns the first profile whose id, subject id or email (case-insensitive) equals key.
func (r *userRepository) FindByAnyKey(ctx context.Context, key string) (models.UserIdentity, error) {
	var user models.UserIdentity
	if err := r.db.WithContext(ctx).
		Where("id = ? OR subject_id = ? OR LOWER(email) = ?", key, key, strings.ToLower(key)).
		Order("created_at ASC").
		Order("id ASC").
		First(&user).Error; err != nil {
		return models.UserIdentity{}, err
	}

	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.UserIdentity) error {
	return r.db.WithContext(ctx).Create(user).Error
}
