package repository

import (
	"context"
	"database/sql"

	"github.com/hemolens/backend/internal/entity"
	"github.com/hemolens/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, data *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// UpdateProfile refreshes the provider and profile fields of a user.
	// A new value wins only if non-empty, an empty value never overwrites.
	UpdateProfile(ctx context.Context, id string, data *entity.User) error

	UpdateRefreshToken(ctx context.Context, id, refreshToken string) error
	ClearRefreshToken(ctx context.Context, id string) error
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, data *entity.User) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("email=?", email).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, data *entity.User) error {
	updateMap := map[string]any{}
	if data.Provider != "" {
		updateMap["provider"] = data.Provider
	}

	if data.ProviderUserID.Valid {
		updateMap["provider_user_id"] = data.ProviderUserID
	}

	if data.FirstName.Valid && data.FirstName.String != "" {
		updateMap["first_name"] = data.FirstName
	}

	if data.LastName.Valid && data.LastName.String != "" {
		updateMap["last_name"] = data.LastName
	}

	if data.ProfilePicture != "" {
		updateMap["profile_picture"] = data.ProfilePicture
	}

	if len(updateMap) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).Updates(updateMap).Error
}

func (r *userRepository) UpdateRefreshToken(ctx context.Context, id, refreshToken string) error {
	return r.setRefreshToken(ctx, id, sql.NullString{Valid: true, String: refreshToken})
}

func (r *userRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return r.setRefreshToken(ctx, id, sql.NullString{})
}

func (r *userRepository) setRefreshToken(ctx context.Context, id string, token sql.NullString) error {
	tx := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", id).
		Update("refresh_token", token)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
