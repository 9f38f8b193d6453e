package middleware

import (
	"context"
	"net/http"

	"github.com/hemolens/backend/pkg/router"
	"github.com/hemolens/backend/pkg/xcontext"
)

type RedirectResponse interface {
	RedirectInfo() (int, string)
}

func HandleRedirect() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		redirectResp, ok := xcontext.Response(ctx).(RedirectResponse)
		if !ok {
			return ctx, nil
		}

		code, uri := redirectResp.RedirectInfo()
		http.Redirect(xcontext.HTTPWriter(ctx), xcontext.HTTPRequest(ctx), uri, code)

		// After rendering redirect response, do not render another response to client.
		xcontext.SetResponse(ctx, nil)

		return ctx, nil
	}
}
