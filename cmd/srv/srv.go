package main

import (
	"net/http"

	"github.com/hemolens/backend/config"
	"github.com/hemolens/backend/internal/domain"
	"github.com/hemolens/backend/internal/repository"
	"github.com/hemolens/backend/pkg/authenticator"
	"github.com/hemolens/backend/pkg/limiter"
	"github.com/hemolens/backend/pkg/logger"
	"github.com/hemolens/backend/pkg/mail"
	"github.com/hemolens/backend/pkg/router"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App

	configs *config.Configs
	logger  logger.Logger
	db      *gorm.DB

	userRepo      repository.UserRepository
	magicLinkRepo repository.MagicLinkRepository

	oauth2Configs []authenticator.IOAuth2Config
	mailer        mail.Mailer
	limiter       limiter.Limiter

	authDomain   domain.AuthDomain
	userDomain   domain.UserDomain
	healthDomain domain.HealthDomain

	router *router.Router
	server *http.Server
}
