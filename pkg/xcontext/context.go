package xcontext

import (
	"context"
	"net/http"
	"time"

	"github.com/hemolens/backend/config"
	"github.com/hemolens/backend/pkg/logger"
	"github.com/hemolens/backend/pkg/session"
	"github.com/hemolens/backend/pkg/token"
	"gorm.io/gorm"
)

type (
	configsKey            struct{}
	loggerKey             struct{}
	dbKey                 struct{}
	dbTransactionKey      struct{}
	accessTokenEngineKey  struct{}
	refreshTokenEngineKey struct{}
	sessionStoreKey       struct{}
	httpRequestKey        struct{}
	httpWriterKey         struct{}
	requestUserIDKey      struct{}
	errorKey              struct{}
	startTimeKey          struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	return ctx.Value(configsKey{}).(config.Configs)
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	return ctx.Value(loggerKey{}).(logger.Logger)
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current transaction if one is open, otherwise the root
// connection pool.
func DB(ctx context.Context) *gorm.DB {
	if state, ok := ctx.Value(dbTransactionKey{}).(*txState); ok && state.active {
		return state.tx
	}

	return ctx.Value(dbKey{}).(*gorm.DB)
}

type txState struct {
	tx     *gorm.DB
	active bool
}

// WithDBTransaction begins a database transaction. DB() calls on the
// returned context use the transaction until it is committed or rolled
// back. The caller should pair this with a deferred
// WithRollbackDBTransaction, which becomes a no-op after the commit.
func WithDBTransaction(ctx context.Context) context.Context {
	state := &txState{tx: DB(ctx).Begin(), active: true}
	return context.WithValue(ctx, dbTransactionKey{}, state)
}

func WithCommitDBTransaction(ctx context.Context) context.Context {
	if state, ok := ctx.Value(dbTransactionKey{}).(*txState); ok && state.active {
		state.tx.Commit()
		state.active = false
	}

	return ctx
}

func WithRollbackDBTransaction(ctx context.Context) context.Context {
	if state, ok := ctx.Value(dbTransactionKey{}).(*txState); ok && state.active {
		state.tx.Rollback()
		state.active = false
	}

	return ctx
}

func WithAccessTokenEngine(ctx context.Context, engine token.Engine) context.Context {
	return context.WithValue(ctx, accessTokenEngineKey{}, engine)
}

func AccessTokenEngine(ctx context.Context) token.Engine {
	return ctx.Value(accessTokenEngineKey{}).(token.Engine)
}

func WithRefreshTokenEngine(ctx context.Context, engine token.Engine) context.Context {
	return context.WithValue(ctx, refreshTokenEngineKey{}, engine)
}

func RefreshTokenEngine(ctx context.Context) token.Engine {
	return ctx.Value(refreshTokenEngineKey{}).(token.Engine)
}

func WithSessionStore(ctx context.Context, store *session.Store) context.Context {
	return context.WithValue(ctx, sessionStoreKey{}, store)
}

func SessionStore(ctx context.Context) *session.Store {
	return ctx.Value(sessionStoreKey{}).(*session.Store)
}

func WithHTTPRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, r)
}

func HTTPRequest(ctx context.Context) *http.Request {
	return ctx.Value(httpRequestKey{}).(*http.Request)
}

func WithHTTPWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, httpWriterKey{}, w)
}

func HTTPWriter(ctx context.Context) http.ResponseWriter {
	return ctx.Value(httpWriterKey{}).(http.ResponseWriter)
}

func WithRequestUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, requestUserIDKey{}, userID)
}

func RequestUserID(ctx context.Context) string {
	if id, ok := ctx.Value(requestUserIDKey{}).(string); ok {
		return id
	}

	return ""
}

func WithError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, errorKey{}, err)
}

func Error(ctx context.Context) error {
	if err, ok := ctx.Value(errorKey{}).(error); ok {
		return err
	}

	return nil
}

func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func StartTime(ctx context.Context) time.Time {
	if t, ok := ctx.Value(startTimeKey{}).(time.Time); ok {
		return t
	}

	return time.Time{}
}
