package router

import (
	"context"
	"net/http"

	"github.com/hemolens/backend/config"
	"github.com/hemolens/backend/pkg/logger"
	"github.com/hemolens/backend/pkg/session"
	"github.com/hemolens/backend/pkg/token"
	"github.com/hemolens/backend/pkg/xcontext"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before or after a handler. It can derive a new
// context; returning an error aborts the request.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc always runs at the very end of a request, even on error.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux *http.ServeMux
	cfg config.Configs

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc

	baseCtx func(context.Context) context.Context
}

func New(db *gorm.DB, cfg config.Configs, lg logger.Logger) *Router {
	accessEngine := token.NewEngine(cfg.Auth.AccessToken.Secret)
	refreshEngine := token.NewEngine(cfg.Auth.RefreshToken.Secret)
	sessionStore := session.NewCookieStore(cfg.Session.Name, []byte(cfg.Session.Secret))

	return &Router{
		mux: http.NewServeMux(),
		cfg: cfg,
		baseCtx: func(ctx context.Context) context.Context {
			ctx = xcontext.WithConfigs(ctx, cfg)
			ctx = xcontext.WithLogger(ctx, lg)
			ctx = xcontext.WithDB(ctx, db)
			ctx = xcontext.WithAccessTokenEngine(ctx, accessEngine)
			ctx = xcontext.WithRefreshTokenEngine(ctx, refreshEngine)
			ctx = xcontext.WithSessionStore(ctx, sessionStore)
			return ctx
		},
	}
}

// Branch returns a router sharing the mux but with its own copy of the
// middleware chains, so route groups can require different authorization.
func (r *Router) Branch() *Router {
	clone := *r
	clone.befores = append([]MiddlewareFunc{}, r.befores...)
	clone.afters = append([]MiddlewareFunc{}, r.afters...)
	clone.closers = append([]CloserFunc{}, r.closers...)
	return &clone
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) Mount(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *Router) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   r.cfg.ApiServer.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return c.Handler(r.mux)
}
