package repository

import (
	"context"

	"github.com/khanghh/guildgate/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *model.AuthorizedUser) error
	All(ctx context.Context) ([]*model.AuthorizedUser, error)
	UpdateAccessToken(ctx context.Context, userID string, accessToken string) error
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Upsert(ctx context.Context, user *model.AuthorizedUser) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(user).Error
}

func (r *userRepository) All(ctx context.Context) ([]*model.AuthorizedUser, error) {
	var users []*model.AuthorizedUser
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateAccessToken overwrites the access token of a single row. Updating a
// row that no longer exists is a no-op, not an error.
func (r *userRepository) UpdateAccessToken(ctx context.Context, userID string, accessToken string) error {
	return r.db.WithContext(ctx).
		Model(&model.AuthorizedUser{}).
		Where("user_id = ?", userID).
		Update("access_token", accessToken).Error
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db}
}
