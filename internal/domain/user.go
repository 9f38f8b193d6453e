package domain

import (
	"context"
	"errors"

	"github.com/hemolens/backend/internal/model"
	"github.com/hemolens/backend/internal/repository"
	"github.com/hemolens/backend/pkg/errorx"
	"github.com/hemolens/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	GetProfile(context.Context, *model.GetProfileRequest) (*model.GetProfileResponse, error)
}

type userDomain struct {
	userRepo repository.UserRepository
}

func NewUserDomain(userRepo repository.UserRepository) UserDomain {
	return &userDomain{userRepo: userRepo}
}

func (d *userDomain) GetProfile(
	ctx context.Context, req *model.GetProfileRequest,
) (*model.GetProfileResponse, error) {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "User not found")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.GetProfileResponse(model.ConvertUser(user))
	return &resp, nil
}
