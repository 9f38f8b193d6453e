package middleware

import (
	"context"
	"strings"

	"github.com/hemolens/backend/internal/model"
	"github.com/hemolens/backend/pkg/errorx"
	"github.com/hemolens/backend/pkg/router"
	"github.com/hemolens/backend/pkg/xcontext"
)

// AuthVerifier verifies the bearer access token and records the request
// user id in the context. Handlers behind it can assume a non-empty
// xcontext.RequestUserID.
func AuthVerifier() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		authorization := xcontext.HTTPRequest(ctx).Header.Get("Authorization")
		if !strings.HasPrefix(authorization, "Bearer ") {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		token := strings.TrimPrefix(authorization, "Bearer ")
		if token == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		accessToken := model.AccessToken{}
		if err := xcontext.AccessTokenEngine(ctx).Verify(token, &accessToken); err != nil {
			xcontext.Logger(ctx).Debugf("Failed to verify access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, accessToken.ID), nil
	}
}
