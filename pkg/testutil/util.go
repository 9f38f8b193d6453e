package testutil

import (
	"context"
	"time"

	"github.com/hemolens/backend/config"
	"github.com/hemolens/backend/internal/entity"
	"github.com/hemolens/backend/pkg/logger"
	"github.com/hemolens/backend/pkg/session"
	"github.com/hemolens/backend/pkg/token"
	"github.com/hemolens/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Env: "testing",
		ApiServer: config.ServerConfigs{
			PublicURL: "http://localhost:8080",
		},
		Auth: config.AuthConfigs{
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Secret:     "access-secret",
				Expiration: config.Duration(time.Minute),
			},
			RefreshToken: config.TokenConfigs{
				Name:       "refresh_token",
				Secret:     "refresh-secret",
				Expiration: config.Duration(time.Hour),
			},
		},
		Session: config.SessionConfigs{
			Name:   "test_session",
			Secret: "session-secret",
		},
		Frontend: config.FrontendConfigs{
			URL: "http://localhost:3000",
		},
		MagicLink: config.MagicLinkConfigs{
			Expiration:      config.Duration(15 * time.Minute),
			RequestsPerHour: 10,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)
	ctx = xcontext.WithAccessTokenEngine(ctx, token.NewEngine(cfg.Auth.AccessToken.Secret))
	ctx = xcontext.WithRefreshTokenEngine(ctx, token.NewEngine(cfg.Auth.RefreshToken.Secret))
	ctx = xcontext.WithSessionStore(ctx, session.NewCookieStore(cfg.Session.Name, []byte(cfg.Session.Secret)))

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
