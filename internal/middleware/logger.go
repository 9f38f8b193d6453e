package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/hemolens/backend/pkg/errorx"
	"github.com/hemolens/backend/pkg/router"
	"github.com/hemolens/backend/pkg/xcontext"
)

func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		info := fmt.Sprintf("%s | %s", req.Method, req.URL.Path)
		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				xcontext.Logger(ctx).Warnf("%s | %d", info, errx.Code)
			} else {
				xcontext.Logger(ctx).Errorf("%s | %d", info, -1)
			}
		} else {
			xcontext.Logger(ctx).Infof(info)
		}
	}
}
