package domain

import (
	"context"

	"github.com/hemolens/backend/internal/model"
	"github.com/hemolens/backend/pkg/errorx"
	"github.com/hemolens/backend/pkg/xcontext"
)

type HealthDomain interface {
	Check(context.Context, *model.HealthRequest) (*model.HealthResponse, error)
}

type healthDomain struct{}

func NewHealthDomain() HealthDomain {
	return &healthDomain{}
}

func (d *healthDomain) Check(
	ctx context.Context, req *model.HealthRequest,
) (*model.HealthResponse, error) {
	db, err := xcontext.DB(ctx).DB()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the underlying database: %v", err)
		return nil, errorx.New(errorx.Unavailable, "Service unavailable")
	}

	if err := db.PingContext(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot ping the database: %v", err)
		return nil, errorx.New(errorx.Unavailable, "Service unavailable")
	}

	return &model.HealthResponse{Status: "ok"}, nil
}
