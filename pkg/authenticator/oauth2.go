package authenticator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hemolens/backend/config"
	"golang.org/x/oauth2"
)

// UserProfile is the normalized identity produced by every oauth2
// provider, consumed uniformly by the auth domain.
type UserProfile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Picture   string
}

type IOAuth2Config interface {
	Service() string
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	VerifyIDToken(ctx context.Context, token *oauth2.Token) (UserProfile, error)
}

type OAuth2Config struct {
	*oidc.Provider
	oauth2.Config

	name string

	// client bounds every call to the provider with the configured
	// timeout, so a hung provider cannot hang discovery or a callback.
	client *http.Client
}

func NewOAuth2Config(
	ctx context.Context, cfg config.Configs, oauth2Cfg config.OAuth2Configs,
) (*OAuth2Config, error) {
	client := &http.Client{Timeout: oauth2Cfg.Timeout.Std()}

	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, client), oauth2Cfg.Issuer)
	if err != nil {
		return nil, err
	}

	config := oauth2.Config{
		ClientID:     oauth2Cfg.ClientID,
		ClientSecret: oauth2Cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL: fmt.Sprintf("%s/auth/%s/callback",
			cfg.ApiServer.PublicURL, oauth2Cfg.Name),
		Scopes: oauth2Cfg.Scopes,
	}

	return &OAuth2Config{
		name:     oauth2Cfg.Name,
		Provider: provider,
		Config:   config,
		client:   client,
	}, nil
}

func (a *OAuth2Config) Service() string {
	return a.name
}

func (a *OAuth2Config) Exchange(
	ctx context.Context, code string, opts ...oauth2.AuthCodeOption,
) (*oauth2.Token, error) {
	return a.Config.Exchange(oidc.ClientContext(ctx, a.client), code, opts...)
}

// VerifyIDToken verifies that an *oauth2.Token carries a valid
// *oidc.IDToken and extracts the standard profile claims from it.
func (a *OAuth2Config) VerifyIDToken(ctx context.Context, token *oauth2.Token) (UserProfile, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return UserProfile{}, errors.New("no id_token field in oauth2 token")
	}

	oidcConfig := &oidc.Config{
		ClientID: a.ClientID,
	}

	idToken, err := a.Verifier(oidcConfig).Verify(oidc.ClientContext(ctx, a.client), rawIDToken)
	if err != nil {
		return UserProfile{}, err
	}

	var claims struct {
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return UserProfile{}, errors.New("invalid id token")
	}

	if claims.Email == "" {
		return UserProfile{}, errors.New("id token carries no email")
	}

	return UserProfile{
		ID:        idToken.Subject,
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		Picture:   claims.Picture,
	}, nil
}
