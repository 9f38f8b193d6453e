package middleware

import (
	"context"

	"github.com/hemolens/backend/pkg/router"
	"github.com/hemolens/backend/pkg/xcontext"
)

type SessionResponse interface {
	SessionInfo() map[string]any
}

// SessionDestroyer marks a response after which the cookie session must
// be destroyed.
type SessionDestroyer interface {
	DestroysSession() bool
}

func HandleSaveSession() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		sessionResp, ok := xcontext.Response(ctx).(SessionResponse)
		if !ok {
			return ctx, nil
		}

		sessionInfo := sessionResp.SessionInfo()
		if len(sessionInfo) == 0 {
			return ctx, nil
		}

		req := xcontext.HTTPRequest(ctx)
		session, err := xcontext.SessionStore(ctx).Get(req)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot get the session: %v", err)
			return ctx, nil
		}

		for k, v := range sessionInfo {
			session.Values[k] = v
		}

		if err := session.Save(req, xcontext.HTTPWriter(ctx)); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot save the session: %v", err)
		}

		return ctx, nil
	}
}

func HandleDestroySession() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		destroyer, ok := xcontext.Response(ctx).(SessionDestroyer)
		if !ok || !destroyer.DestroysSession() {
			return ctx, nil
		}

		req := xcontext.HTTPRequest(ctx)
		session, err := xcontext.SessionStore(ctx).Get(req)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot get the session: %v", err)
			return ctx, nil
		}

		// MaxAge of -1 expires the cookie immediately.
		session.Options.MaxAge = -1
		session.Values = map[any]any{}
		if err := session.Save(req, xcontext.HTTPWriter(ctx)); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot destroy the session: %v", err)
		}

		return ctx, nil
	}
}
