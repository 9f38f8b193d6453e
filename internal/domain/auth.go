package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hemolens/backend/internal/entity"
	"github.com/hemolens/backend/internal/model"
	"github.com/hemolens/backend/internal/repository"
	"github.com/hemolens/backend/pkg/authenticator"
	"github.com/hemolens/backend/pkg/crypto"
	"github.com/hemolens/backend/pkg/errorx"
	"github.com/hemolens/backend/pkg/limiter"
	mailpkg "github.com/hemolens/backend/pkg/mail"
	"github.com/hemolens/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type AuthDomain interface {
	OAuth2Login(context.Context, *model.OAuth2LoginRequest) (*model.OAuth2LoginResponse, error)
	OAuth2Callback(context.Context, *model.OAuth2CallbackRequest) (*model.OAuth2CallbackResponse, error)
	RequestMagicLink(context.Context, *model.RequestMagicLinkRequest) (*model.RequestMagicLinkResponse, error)
	ConsumeMagicLink(context.Context, *model.ConsumeMagicLinkRequest) (*model.ConsumeMagicLinkResponse, error)
	Refresh(context.Context, *model.RefreshTokenRequest) (*model.RefreshTokenResponse, error)
	Logout(context.Context, *model.LogoutRequest) (*model.LogoutResponse, error)
}

type authDomain struct {
	userRepo      repository.UserRepository
	magicLinkRepo repository.MagicLinkRepository
	oauth2Configs []authenticator.IOAuth2Config
	mailer        mailpkg.Mailer
	limiter       limiter.Limiter
}

func NewAuthDomain(
	userRepo repository.UserRepository,
	magicLinkRepo repository.MagicLinkRepository,
	oauth2Configs []authenticator.IOAuth2Config,
	mailer mailpkg.Mailer,
	limiter limiter.Limiter,
) AuthDomain {
	return &authDomain{
		userRepo:      userRepo,
		magicLinkRepo: magicLinkRepo,
		oauth2Configs: oauth2Configs,
		mailer:        mailer,
		limiter:       limiter,
	}
}

func (d *authDomain) OAuth2Login(
	ctx context.Context, req *model.OAuth2LoginRequest,
) (*model.OAuth2LoginResponse, error) {
	auth, ok := d.getOAuth2Config(req.Type)
	if !ok {
		return nil, errorx.New(errorx.BadRequest, "Unsupported provider %s", req.Type)
	}

	state, err := crypto.GenerateRandomString()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate state: %v", err)
		return nil, errorx.Unknown
	}

	return &model.OAuth2LoginResponse{
		RedirectURL: auth.AuthCodeURL(state),
		State:       state,
	}, nil
}

func (d *authDomain) OAuth2Callback(
	ctx context.Context, req *model.OAuth2CallbackRequest,
) (*model.OAuth2CallbackResponse, error) {
	// The caller is a browser in the middle of a redirect dance. Failures
	// redirect to the frontend error page instead of returning a raw
	// error response.
	frontendURL := xcontext.Configs(ctx).Frontend.URL

	auth, ok := d.getOAuth2Config(req.Type)
	if !ok {
		return errorRedirect(frontendURL, "Unsupported provider"), nil
	}

	if req.State == "" || req.State != req.SessionState {
		return errorRedirect(frontendURL, "Mismatched state parameter"), nil
	}

	serviceToken, err := auth.Exchange(ctx, req.Code)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot exchange authorization code: %v", err)
		return errorRedirect(frontendURL, "Cannot exchange authorization code"), nil
	}

	profile, err := auth.VerifyIDToken(ctx, serviceToken)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot verify id token: %v", err)
		return errorRedirect(frontendURL, "Cannot verify identity"), nil
	}

	accessToken, refreshToken, err := d.loginWithProfile(ctx, auth.Service(), profile)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot login with %s profile: %v", auth.Service(), err)
		return errorRedirect(frontendURL, "Login failed"), nil
	}

	return &model.OAuth2CallbackResponse{
		RedirectURL: model.AuthCallbackURL(frontendURL, accessToken, refreshToken),
	}, nil
}

// loginWithProfile reconciles a verified oauth2 profile with the user
// store and issues a token pair. Users are matched by email only: a login
// from another provider with the same email reuses the record and
// refreshes its provider fields. The whole sequence is one transaction.
func (d *authDomain) loginWithProfile(
	ctx context.Context, service string, profile authenticator.UserProfile,
) (string, string, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	user, err := d.userRepo.GetByEmail(ctx, normalizeEmail(profile.Email))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", err
		}

		user = &entity.User{
			Base:           entity.Base{ID: uuid.NewString()},
			Email:          normalizeEmail(profile.Email),
			Provider:       service,
			ProviderUserID: nullString(profile.ID),
			FirstName:      nullString(profile.FirstName),
			LastName:       nullString(profile.LastName),
			ProfilePicture: profile.Picture,
		}

		if err := d.userRepo.Create(ctx, user); err != nil {
			return "", "", err
		}
	} else {
		update := &entity.User{
			Provider:       service,
			ProviderUserID: nullString(profile.ID),
			FirstName:      nullString(profile.FirstName),
			LastName:       nullString(profile.LastName),
			ProfilePicture: profile.Picture,
		}

		if err := d.userRepo.UpdateProfile(ctx, user.ID, update); err != nil {
			return "", "", err
		}
	}

	accessToken, refreshToken, err := d.issueTokens(ctx, user)
	if err != nil {
		return "", "", err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return accessToken, refreshToken, nil
}

func (d *authDomain) RequestMagicLink(
	ctx context.Context, req *model.RequestMagicLinkRequest,
) (*model.RequestMagicLinkResponse, error) {
	email := normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid email address")
	}

	allowed, err := d.limiter.Allow(ctx, "magic-link:"+email)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check the rate limit: %v", err)
		return nil, errorx.Unknown
	}

	if !allowed {
		return nil, errorx.New(errorx.TooManyRequests, "Too many magic link requests")
	}

	token, err := d.createMagicLink(ctx, email)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create magic link for %s: %v", email, err)
		return nil, errorx.Unknown
	}

	cfg := xcontext.Configs(ctx)
	link := fmt.Sprintf("%s/auth/magic-link/consume?token=%s", cfg.ApiServer.PublicURL, token)
	body, err := mailpkg.MagicLinkBody(mailpkg.MagicLinkParams{
		Email:      email,
		Link:       link,
		Expiration: cfg.MagicLink.Expiration.Std(),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot render magic link email: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.mailer.Send(ctx, email, mailpkg.MagicLinkSubject, body); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot send magic link email: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RequestMagicLinkResponse{Success: true}, nil
}

// createMagicLink finds or creates the user owning the email, sweeps the
// user's expired tokens and stores a fresh one.
func (d *authDomain) createMagicLink(ctx context.Context, email string) (string, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	user, err := d.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}

		user = &entity.User{
			Base:     entity.Base{ID: uuid.NewString()},
			Email:    email,
			Provider: entity.ProviderMagicLink,
		}

		if err := d.userRepo.Create(ctx, user); err != nil {
			return "", err
		}
	}

	if err := d.magicLinkRepo.DeleteExpired(ctx, user.ID); err != nil {
		return "", err
	}

	token, err := crypto.GenerateRandomString()
	if err != nil {
		return "", err
	}

	err = d.magicLinkRepo.Create(ctx, &entity.MagicLinkToken{
		Token:     token,
		UserID:    user.ID,
		ExpiredAt: time.Now().Add(xcontext.Configs(ctx).MagicLink.Expiration.Std()),
	})
	if err != nil {
		return "", err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return token, nil
}

func (d *authDomain) ConsumeMagicLink(
	ctx context.Context, req *model.ConsumeMagicLinkRequest,
) (*model.ConsumeMagicLinkResponse, error) {
	frontendURL := xcontext.Configs(ctx).Frontend.URL

	if req.Token == "" {
		return consumeErrorRedirect(frontendURL), nil
	}

	magicLink, err := d.magicLinkRepo.GetByToken(ctx, req.Token)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get magic link token: %v", err)
		}

		return consumeErrorRedirect(frontendURL), nil
	}

	if time.Now().After(magicLink.ExpiredAt) {
		return consumeErrorRedirect(frontendURL), nil
	}

	accessToken, refreshToken, err := d.consume(ctx, magicLink)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot consume magic link: %v", err)
		return consumeErrorRedirect(frontendURL), nil
	}

	return &model.ConsumeMagicLinkResponse{
		RedirectURL: model.AuthCallbackURL(frontendURL, accessToken, refreshToken),
	}, nil
}

// consume issues tokens for the owner and burns the single-use token, in
// one transaction.
func (d *authDomain) consume(
	ctx context.Context, magicLink *entity.MagicLinkToken,
) (string, string, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	user, err := d.userRepo.GetByID(ctx, magicLink.UserID)
	if err != nil {
		return "", "", err
	}

	accessToken, refreshToken, err := d.issueTokens(ctx, user)
	if err != nil {
		return "", "", err
	}

	if err := d.magicLinkRepo.Delete(ctx, magicLink.Token); err != nil {
		return "", "", err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return accessToken, refreshToken, nil
}

func (d *authDomain) Refresh(
	ctx context.Context, req *model.RefreshTokenRequest,
) (*model.RefreshTokenResponse, error) {
	refreshToken := model.RefreshToken{}
	err := xcontext.RefreshTokenEngine(ctx).Verify(req.RefreshToken, &refreshToken)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Failed to verify refresh token: %v", err)
		return nil, errorx.New(errorx.Unauthenticated, "Invalid refresh token")
	}

	user, err := d.userRepo.GetByID(ctx, refreshToken.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid refresh token")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	// A signature-valid token that does not match the stored slot has
	// been rotated out by a later login, refresh, or logout.
	if !user.RefreshToken.Valid || user.RefreshToken.String != req.RefreshToken {
		return nil, errorx.New(errorx.Unauthenticated, "Invalid refresh token")
	}

	newAccessToken, newRefreshToken, err := d.issueTokens(ctx, user)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot rotate tokens: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RefreshTokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (d *authDomain) Logout(
	ctx context.Context, req *model.LogoutRequest,
) (*model.LogoutResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if _, err := d.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "User not found")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot clear refresh token: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.magicLinkRepo.DeleteByUserID(ctx, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete magic link tokens: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.LogoutResponse{Message: "Logged out successfully"}, nil
}

// issueTokens generates an access/refresh pair for the user and pins the
// refresh token onto the user record.
func (d *authDomain) issueTokens(ctx context.Context, user *entity.User) (string, string, error) {
	cfg := xcontext.Configs(ctx)

	accessToken, err := xcontext.AccessTokenEngine(ctx).Generate(
		cfg.Auth.AccessToken.Expiration.Std(),
		model.AccessToken{
			ID:    user.ID,
			Email: user.Email,
		})
	if err != nil {
		return "", "", err
	}

	refreshToken, err := xcontext.RefreshTokenEngine(ctx).Generate(
		cfg.Auth.RefreshToken.Expiration.Std(),
		model.RefreshToken{ID: user.ID})
	if err != nil {
		return "", "", err
	}

	if err := d.userRepo.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (d *authDomain) getOAuth2Config(service string) (authenticator.IOAuth2Config, bool) {
	for i := range d.oauth2Configs {
		if d.oauth2Configs[i].Service() == service {
			return d.oauth2Configs[i], true
		}
	}
	return nil, false
}

func errorRedirect(frontendURL, message string) *model.OAuth2CallbackResponse {
	return &model.OAuth2CallbackResponse{
		RedirectURL: model.AuthErrorURL(frontendURL, message),
	}
}

func consumeErrorRedirect(frontendURL string) *model.ConsumeMagicLinkResponse {
	return &model.ConsumeMagicLinkResponse{
		RedirectURL: model.AuthErrorURL(frontendURL, "Invalid or expired magic link"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullString(s string) sql.NullString {
	return sql.NullString{Valid: s != "", String: s}
}
