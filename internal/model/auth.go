package model

import (
	"fmt"
	"net/http"
	"net/url"
)

// Access Token and Refresh Token claims.
type AccessToken struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type RefreshToken struct {
	ID string `json:"id"`
}

// OAuth2 Login
type OAuth2LoginRequest struct {
	Type string `json:"-"`
}

type OAuth2LoginResponse struct {
	RedirectURL string `json:"-"`
	State       string `json:"-"`
}

func (r OAuth2LoginResponse) RedirectInfo() (int, string) {
	return http.StatusTemporaryRedirect, r.RedirectURL
}

func (r OAuth2LoginResponse) SessionInfo() map[string]any {
	return map[string]any{"state": r.State}
}

// OAuth2 Callback
type OAuth2CallbackRequest struct {
	Type         string `json:"-"`
	State        string `json:"state"`
	SessionState string `session:"state,delete"`
	Code         string `json:"code"`
}

type OAuth2CallbackResponse struct {
	RedirectURL string `json:"-"`
}

func (r OAuth2CallbackResponse) RedirectInfo() (int, string) {
	return http.StatusTemporaryRedirect, r.RedirectURL
}

// Magic link request
type RequestMagicLinkRequest struct {
	Email string `json:"email"`
}

type RequestMagicLinkResponse struct {
	Success bool `json:"success"`
}

func (r RequestMagicLinkResponse) StatusCode() int {
	return http.StatusCreated
}

// Magic link consume
type ConsumeMagicLinkRequest struct {
	Token string `json:"token"`
}

type ConsumeMagicLinkResponse struct {
	RedirectURL string `json:"-"`
}

func (r ConsumeMagicLinkResponse) RedirectInfo() (int, string) {
	return http.StatusTemporaryRedirect, r.RedirectURL
}

// Refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Logout
type LogoutRequest struct{}

type LogoutResponse struct {
	Message string `json:"message"`
}

// DestroysSession marks the response for the session-destroy middleware.
func (r LogoutResponse) DestroysSession() bool {
	return true
}

// AuthCallbackURL builds the frontend url that receives tokens after a
// successful redirect login.
func AuthCallbackURL(frontendURL, accessToken, refreshToken string) string {
	return fmt.Sprintf("%s/auth/callback?access_token=%s&refresh_token=%s",
		frontendURL, url.QueryEscape(accessToken), url.QueryEscape(refreshToken))
}

// AuthErrorURL builds the frontend url that receives a login failure
// message after a redirect login.
func AuthErrorURL(frontendURL, message string) string {
	return fmt.Sprintf("%s/auth/error?message=%s", frontendURL, url.QueryEscape(message))
}
