package repository

import (
	"context"
	"time"

	"github.com/hemolens/backend/internal/entity"
	"github.com/hemolens/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type MagicLinkRepository interface {
	Create(ctx context.Context, data *entity.MagicLinkToken) error
	GetByToken(ctx context.Context, token string) (*entity.MagicLinkToken, error)

	// Delete burns a single-use token. It fails with
	// gorm.ErrRecordNotFound when the token is already gone, so two
	// concurrent consumers cannot both succeed.
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired sweeps the already-expired tokens of a single user.
	// Called lazily on that user's next magic-link request, there is no
	// background reaper.
	DeleteExpired(ctx context.Context, userID string) error
}

type magicLinkRepository struct{}

func NewMagicLinkRepository() MagicLinkRepository {
	return &magicLinkRepository{}
}

func (r *magicLinkRepository) Create(ctx context.Context, data *entity.MagicLinkToken) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *magicLinkRepository) GetByToken(ctx context.Context, token string) (*entity.MagicLinkToken, error) {
	var record entity.MagicLinkToken
	if err := xcontext.DB(ctx).Where("token=?", token).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *magicLinkRepository) Delete(ctx context.Context, token string) error {
	tx := xcontext.DB(ctx).Delete(&entity.MagicLinkToken{}, "token=?", token)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *magicLinkRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).Delete(&entity.MagicLinkToken{}, "user_id=?", userID).Error
}

func (r *magicLinkRepository) DeleteExpired(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).
		Delete(&entity.MagicLinkToken{}, "user_id=? AND expired_at<?", userID, time.Now()).Error
}
