package main

import (
	"context"
	"log"
	"net/http"

	"github.com/hemolens/backend/internal/entity"
	"github.com/hemolens/backend/internal/middleware"
	"github.com/hemolens/backend/internal/model"
	"github.com/hemolens/backend/pkg/prometheus"
	"github.com/hemolens/backend/pkg/router"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(ct *cli.Context) error {
	server.loadConfig(ct)
	server.loadLogger()
	server.loadDatabase()
	server.loadMailer()
	server.loadLimiter()
	server.loadOAuth2()
	server.loadRepos()
	server.loadDomains()
	server.loadRouter()

	s.server = &http.Server{
		Addr:    s.configs.ApiServer.Address(),
		Handler: s.router.Handler(),
	}

	log.Printf("Starting server on port: %s\n", s.configs.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}
	log.Printf("server stop")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, *s.configs, s.logger)
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	// OAuth2 login redirects the browser to the provider and pins the
	// state parameter into the cookie session.
	oauth2LoginRouter := s.router.Branch()
	oauth2LoginRouter.After(middleware.HandleSaveSession())
	oauth2LoginRouter.After(middleware.HandleRedirect())
	{
		router.GET(oauth2LoginRouter, "/auth/google", s.oauth2Login(entity.ProviderGoogle))
		router.GET(oauth2LoginRouter, "/auth/linkedin", s.oauth2Login(entity.ProviderLinkedIn))
	}

	// Callbacks redirect the browser back to the frontend.
	redirectRouter := s.router.Branch()
	redirectRouter.After(middleware.HandleRedirect())
	{
		router.GET(redirectRouter, "/auth/google/callback", s.oauth2Callback(entity.ProviderGoogle))
		router.GET(redirectRouter, "/auth/linkedin/callback", s.oauth2Callback(entity.ProviderLinkedIn))
		router.GET(redirectRouter, "/auth/magic-link/consume", s.authDomain.ConsumeMagicLink)
	}

	router.POST(s.router, "/auth/magic-link/request", s.authDomain.RequestMagicLink)
	router.POST(s.router, "/auth/refresh", s.authDomain.Refresh)
	router.GET(s.router, "/health", s.healthDomain.Check)

	// These following APIs need authentication with an access token.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.AuthVerifier())
	authRouter.After(middleware.HandleDestroySession())
	{
		router.POST(authRouter, "/auth/logout", s.authDomain.Logout)
		router.GET(authRouter, "/auth/profile", s.userDomain.GetProfile)
	}

	s.router.Mount("/metrics", prometheus.NewHandler())
}

func (s *srv) oauth2Login(
	service string,
) router.HandlerFunc[model.OAuth2LoginRequest, model.OAuth2LoginResponse] {
	return func(ctx context.Context, req *model.OAuth2LoginRequest) (*model.OAuth2LoginResponse, error) {
		req.Type = service
		return s.authDomain.OAuth2Login(ctx, req)
	}
}

func (s *srv) oauth2Callback(
	service string,
) router.HandlerFunc[model.OAuth2CallbackRequest, model.OAuth2CallbackResponse] {
	return func(ctx context.Context, req *model.OAuth2CallbackRequest) (*model.OAuth2CallbackResponse, error) {
		req.Type = service
		return s.authDomain.OAuth2Callback(ctx, req)
	}
}
