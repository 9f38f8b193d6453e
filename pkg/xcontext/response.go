package xcontext

import "context"

type responseHolderKey struct{}

type responseHolder struct {
	resp any
}

// WithResponseHolder installs a mutable slot for the handler response, so
// middlewares running after the handler can inspect or clear it.
func WithResponseHolder(ctx context.Context) context.Context {
	return context.WithValue(ctx, responseHolderKey{}, &responseHolder{})
}

func SetResponse(ctx context.Context, resp any) {
	if holder, ok := ctx.Value(responseHolderKey{}).(*responseHolder); ok {
		holder.resp = resp
	}
}

func Response(ctx context.Context) any {
	if holder, ok := ctx.Value(responseHolderKey{}).(*responseHolder); ok {
		return holder.resp
	}

	return nil
}
