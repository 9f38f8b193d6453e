package router

import (
	"net/http"
	"time"

	"github.com/hemolens/backend/pkg/errorx"
	"github.com/hemolens/backend/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	r *Router, method string, handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	befores := r.befores
	afters := r.afters
	closers := r.closers

	return func(w http.ResponseWriter, req *http.Request) {
		// The start time is set before binding so duration closers see a
		// real value even for requests that fail to bind.
		ctx := xcontext.WithStartTime(r.baseCtx(req.Context()), time.Now())
		ctx = xcontext.WithHTTPRequest(ctx, req)
		ctx = xcontext.WithHTTPWriter(ctx, w)
		ctx = xcontext.WithResponseHolder(ctx)

		err := func() error {
			if req.Method != method {
				return errorx.New(errorx.BadRequest, "Method not allowed")
			}

			var reqObj Request
			if err := bindRequest(ctx, method, &reqObj); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
				return errorx.New(errorx.BadRequest, "Invalid request")
			}

			for _, m := range befores {
				newCtx, err := m(ctx)
				if err != nil {
					return err
				}

				ctx = newCtx
			}

			resp, err := handler(ctx, &reqObj)
			if err != nil {
				return err
			}

			xcontext.SetResponse(ctx, resp)

			for _, m := range afters {
				newCtx, err := m(ctx)
				if err != nil {
					return err
				}

				ctx = newCtx
			}

			return nil
		}()

		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			writeError(ctx, w, err)
		} else if resp := xcontext.Response(ctx); resp != nil {
			writeResponse(ctx, w, resp)
		}

		for _, closer := range closers {
			closer(ctx)
		}
	}
}
