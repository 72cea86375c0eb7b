package repository

import (
	"context"
	"strings"

	"messenger-backend/apperrors"
	"messenger-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const searchLimit = 10

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.ErrStoreFailure(err)
	}
	return count > 0, nil
}

// SearchByLogin returns users whose login contains the query,
// case-insensitive, ordered by login.
func (r *UserRepository) SearchByLogin(ctx context.Context, name string) ([]models.User, error) {
	var users []models.User
	pattern := "%" + strings.ToLower(name) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(login) LIKE ?", pattern).
		Order("login ASC").
		Limit(searchLimit).
		Find(&users).Error
	if err != nil {
		return nil, apperrors.ErrStoreFailure(err)
	}
	return users, nil
}
