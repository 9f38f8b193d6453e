package main

import (
	"context"
	"time"

	"github.com/hemolens/backend/config"
	"github.com/hemolens/backend/internal/domain"
	"github.com/hemolens/backend/internal/repository"
	"github.com/hemolens/backend/pkg/authenticator"
	"github.com/hemolens/backend/pkg/limiter"
	"github.com/hemolens/backend/pkg/logger"
	"github.com/hemolens/backend/pkg/mail"
	"github.com/hemolens/backend/pkg/redis"

	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func (s *srv) loadConfig(ct *cli.Context) {
	cfg, err := config.Load(ct.String("config"))
	if err != nil {
		panic(err)
	}

	s.configs = cfg
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if s.configs.Env == "local" {
		level = logger.DEBUG
	}

	s.logger = logger.NewLogger(level)
}

func (s *srv) loadDatabase() {
	var err error
	s.db, err = gorm.Open(mysql.Open(s.configs.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadMailer() {
	s.mailer = mail.NewSESMailer(s.configs.Mail)
}

func (s *srv) loadLimiter() {
	if s.configs.Redis.Addr == "" {
		s.logger.Warnf("No redis address, magic link rate limiting is disabled")
		s.limiter = limiter.Unlimited{}
		return
	}

	s.limiter = limiter.NewRedisLimiter(
		redis.NewClient(s.configs.Redis.Addr),
		s.configs.MagicLink.RequestsPerHour,
		time.Hour,
	)
}

func (s *srv) loadOAuth2() {
	ctx := context.Background()
	for _, oauth2Cfg := range []config.OAuth2Configs{
		s.configs.Auth.Google,
		s.configs.Auth.LinkedIn,
	} {
		if oauth2Cfg.ClientID == "" {
			s.logger.Warnf("No client id for %s, provider is disabled", oauth2Cfg.Name)
			continue
		}

		authConfig, err := authenticator.NewOAuth2Config(ctx, *s.configs, oauth2Cfg)
		if err != nil {
			panic(err)
		}

		s.oauth2Configs = append(s.oauth2Configs, authConfig)
	}
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.magicLinkRepo = repository.NewMagicLinkRepository()
}

func (s *srv) loadDomains() {
	s.authDomain = domain.NewAuthDomain(
		s.userRepo, s.magicLinkRepo, s.oauth2Configs, s.mailer, s.limiter)
	s.userDomain = domain.NewUserDomain(s.userRepo)
	s.healthDomain = domain.NewHealthDomain()
}
