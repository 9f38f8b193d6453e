package domain

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hemolens/backend/internal/entity"
	"github.com/hemolens/backend/internal/model"
	"github.com/hemolens/backend/internal/repository"
	"github.com/hemolens/backend/pkg/authenticator"
	"github.com/hemolens/backend/pkg/errorx"
	"github.com/hemolens/backend/pkg/limiter"
	"github.com/hemolens/backend/pkg/testutil"
	"github.com/hemolens/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

func newTestAuthDomain(mailer *testutil.MockMailer, oauth2Configs ...authenticator.IOAuth2Config) AuthDomain {
	return NewAuthDomain(
		repository.NewUserRepository(),
		repository.NewMagicLinkRepository(),
		oauth2Configs,
		mailer,
		limiter.Unlimited{},
	)
}

func mockGoogle(profile authenticator.UserProfile) authenticator.IOAuth2Config {
	mock := testutil.NewMockOAuth2(entity.ProviderGoogle)
	mock.VerifyIDTokenFunc = func(ctx context.Context, token *oauth2.Token) (authenticator.UserProfile, error) {
		return profile, nil
	}

	return mock
}

func Test_authDomain_OAuth2Login(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestAuthDomain(&testutil.MockMailer{}, testutil.NewMockOAuth2(entity.ProviderGoogle))

	resp, err := domain.OAuth2Login(ctx, &model.OAuth2LoginRequest{Type: entity.ProviderGoogle})
	require.NoError(t, err)
	require.NotEmpty(t, resp.State)
	require.Contains(t, resp.RedirectURL, "state="+resp.State)
}

func Test_authDomain_OAuth2Login_UnsupportedProvider(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestAuthDomain(&testutil.MockMailer{}, testutil.NewMockOAuth2(entity.ProviderGoogle))

	_, err := domain.OAuth2Login(ctx, &model.OAuth2LoginRequest{Type: "github"})
	require.Error(t, err)

	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func Test_authDomain_OAuth2Callback_CreatesUser(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestAuthDomain(&testutil.MockMailer{}, mockGoogle(authenticator.UserProfile{
		ID:        "google-123",
		Email:     "New.User@Example.com",
		FirstName: "New",
		LastName:  "User",
		Picture:   "https://example.com/new.png",
	}))

	resp, err := domain.OAuth2Callback(ctx, &model.OAuth2CallbackRequest{
		Type:         entity.ProviderGoogle,
		State:        "state-1",
		SessionState: "state-1",
		Code:         "code",
	})
	require.NoError(t, err)
	require.Contains(t, resp.RedirectURL, "/auth/callback?access_token=")
	require.Contains(t, resp.RedirectURL, "refresh_token=")

	userRepo := repository.NewUserRepository()
	user, err := userRepo.GetByEmail(ctx, "new.user@example.com")
	require.NoError(t, err)
	require.Equal(t, entity.ProviderGoogle, user.Provider)
	require.Equal(t, "google-123", user.ProviderUserID.String)
	require.Equal(t, "New", user.FirstName.String)
	require.True(t, user.RefreshToken.Valid)
}

func Test_authDomain_OAuth2Callback_ReusesUserByEmail(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	// Same email as the google fixture user, but logging in via linkedin
	// with a profile that carries no name.
	mock := testutil.NewMockOAuth2(entity.ProviderLinkedIn)
	mock.VerifyIDTokenFunc = func(ctx context.Context, token *oauth2.Token) (authenticator.UserProfile, error) {
		return authenticator.UserProfile{
			ID:    "linkedin-456",
			Email: testutil.User1.Email,
		}, nil
	}

	domain := newTestAuthDomain(&testutil.MockMailer{}, mock)

	_, err := domain.OAuth2Callback(ctx, &model.OAuth2CallbackRequest{
		Type:         entity.ProviderLinkedIn,
		State:        "state-1",
		SessionState: "state-1",
		Code:         "code",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.User{}).
		Where("email=?", testutil.User1.Email).Count(&count).Error)
	require.Equal(t, int64(1), count)

	user, err := repository.NewUserRepository().GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ProviderLinkedIn, user.Provider)
	require.Equal(t, "linkedin-456", user.ProviderUserID.String)

	// An empty profile never wipes what a previous login filled in.
	require.Equal(t, testutil.User1.FirstName.String, user.FirstName.String)
	require.Equal(t, testutil.User1.ProfilePicture, user.ProfilePicture)
}

func Test_authDomain_OAuth2Callback_StateMismatch(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestAuthDomain(&testutil.MockMailer{}, mockGoogle(authenticator.UserProfile{}))

	resp, err := domain.OAuth2Callback(ctx, &model.OAuth2CallbackRequest{
		Type:         entity.ProviderGoogle,
		State:        "state-1",
		SessionState: "another-state",
		Code:         "code",
	})
	require.NoError(t, err)
	require.Contains(t, resp.RedirectURL, "/auth/error?")

	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.User{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func Test_authDomain_MagicLinkLifecycle(t *testing.T) {
	ctx := testutil.MockContext()
	mailer := &testutil.MockMailer{}
	domain := newTestAuthDomain(mailer)

	resp, err := domain.RequestMagicLink(ctx, &model.RequestMagicLinkRequest{
		Email: "Reader@Example.com",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Len(t, mailer.Sent, 1)
	require.Equal(t, "reader@example.com", mailer.Sent[0].To)

	token := extractMagicLinkToken(t, mailer.Sent[0].Body)

	user, err := repository.NewUserRepository().GetByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	require.Equal(t, entity.ProviderMagicLink, user.Provider)

	consumeResp, err := domain.ConsumeMagicLink(ctx, &model.ConsumeMagicLinkRequest{Token: token})
	require.NoError(t, err)
	require.Contains(t, consumeResp.RedirectURL, "/auth/callback?access_token=")

	// Single use. The second consumption must fail.
	consumeResp, err = domain.ConsumeMagicLink(ctx, &model.ConsumeMagicLinkRequest{Token: token})
	require.NoError(t, err)
	require.Contains(t, consumeResp.RedirectURL, "/auth/error?")
}

func Test_authDomain_RequestMagicLink_OlderLinksStayLive(t *testing.T) {
	ctx := testutil.MockContext()
	mailer := &testutil.MockMailer{}
	domain := newTestAuthDomain(mailer)

	_, err := domain.RequestMagicLink(ctx, &model.RequestMagicLinkRequest{Email: "reader@example.com"})
	require.NoError(t, err)
	_, err = domain.RequestMagicLink(ctx, &model.RequestMagicLinkRequest{Email: "reader@example.com"})
	require.NoError(t, err)
	require.Len(t, mailer.Sent, 2)

	first := extractMagicLinkToken(t, mailer.Sent[0].Body)
	second := extractMagicLinkToken(t, mailer.Sent[1].Body)
	require.NotEqual(t, first, second)

	// A newer link does not revoke an older unexpired one. Only expiry
	// and consumption burn tokens.
	resp, err := domain.ConsumeMagicLink(ctx, &model.ConsumeMagicLinkRequest{Token: first})
	require.NoError(t, err)
	require.Contains(t, resp.RedirectURL, "/auth/callback?access_token=")

	resp, err = domain.ConsumeMagicLink(ctx, &model.ConsumeMagicLinkRequest{Token: second})
	require.NoError(t, err)
	require.Contains(t, resp.RedirectURL, "/auth/callback?access_token=")
}

func Test_authDomain_ConsumeMagicLink_Expired(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := newTestAuthDomain(&testutil.MockMailer{})

	magicLinkRepo := repository.NewMagicLinkRepository()
	require.NoError(t, magicLinkRepo.Create(ctx, &entity.MagicLinkToken{
		Token:     "expired-token",
		UserID:    testutil.User2.ID,
		ExpiredAt: time.Now().Add(-time.Minute),
	}))

	resp, err := domain.ConsumeMagicLink(ctx, &model.ConsumeMagicLinkRequest{Token: "expired-token"})
	require.NoError(t, err)
	require.Contains(t, resp.RedirectURL, "/auth/error?")

	// The expired token is swept on the user's next request.
	_, err = domain.RequestMagicLink(ctx, &model.RequestMagicLinkRequest{Email: testutil.User2.Email})
	require.NoError(t, err)

	_, err = magicLinkRepo.GetByToken(ctx, "expired-token")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_authDomain_RequestMagicLink_InvalidEmail(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestAuthDomain(&testutil.MockMailer{})

	_, err := domain.RequestMagicLink(ctx, &model.RequestMagicLinkRequest{Email: "not-an-email"})
	require.Error(t, err)

	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func Test_authDomain_RequestMagicLink_RateLimited(t *testing.T) {
	ctx := testutil.MockContext()
	domain := NewAuthDomain(
		repository.NewUserRepository(),
		repository.NewMagicLinkRepository(),
		nil,
		&testutil.MockMailer{},
		denyLimiter{},
	)

	_, err := domain.RequestMagicLink(ctx, &model.RequestMagicLinkRequest{Email: "reader@example.com"})
	require.Error(t, err)

	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.TooManyRequests, errx.Code)
}

func Test_authDomain_Refresh_Rotation(t *testing.T) {
	ctx := testutil.MockContext()
	mailer := &testutil.MockMailer{}
	domain := newTestAuthDomain(mailer)

	refreshToken := loginByMagicLink(t, ctx, domain, mailer, "reader@example.com")

	resp, err := domain.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: refreshToken})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEqual(t, refreshToken, resp.RefreshToken)

	// The previous refresh token was rotated out.
	_, err = domain.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: refreshToken})
	requireUnauthenticated(t, err)

	// The rotated-in one still works.
	_, err = domain.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
}

func Test_authDomain_Refresh_InvalidToken(t *testing.T) {
	ctx := testutil.MockContext()
	domain := newTestAuthDomain(&testutil.MockMailer{})

	_, err := domain.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: "garbage"})
	requireUnauthenticated(t, err)

	// A token signed with the access secret must be rejected too.
	accessSigned, err := xcontext.AccessTokenEngine(ctx).Generate(time.Minute, model.RefreshToken{ID: "user1"})
	require.NoError(t, err)

	_, err = domain.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: accessSigned})
	requireUnauthenticated(t, err)
}

func Test_authDomain_Logout(t *testing.T) {
	ctx := testutil.MockContext()
	mailer := &testutil.MockMailer{}
	domain := newTestAuthDomain(mailer)

	refreshToken := loginByMagicLink(t, ctx, domain, mailer, "reader@example.com")

	user, err := repository.NewUserRepository().GetByEmail(ctx, "reader@example.com")
	require.NoError(t, err)

	// An outstanding unconsumed magic link should be revoked by logout.
	magicLinkRepo := repository.NewMagicLinkRepository()
	require.NoError(t, magicLinkRepo.Create(ctx, &entity.MagicLinkToken{
		Token:     "outstanding-token",
		UserID:    user.ID,
		ExpiredAt: time.Now().Add(time.Hour),
	}))

	resp, err := domain.Logout(xcontext.WithRequestUserID(ctx, user.ID), &model.LogoutRequest{})
	require.NoError(t, err)
	require.Equal(t, "Logged out successfully", resp.Message)
	require.True(t, resp.DestroysSession())

	user, err = repository.NewUserRepository().GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, user.RefreshToken.Valid)

	_, err = magicLinkRepo.GetByToken(ctx, "outstanding-token")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = domain.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: refreshToken})
	requireUnauthenticated(t, err)
}

func Test_authDomain_Logout_UnknownUser(t *testing.T) {
	ctx := testutil.MockContextWithUserID("no-such-user")
	domain := newTestAuthDomain(&testutil.MockMailer{})

	_, err := domain.Logout(ctx, &model.LogoutRequest{})
	require.Error(t, err)

	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)
}

// loginByMagicLink signs a fresh user in through the magic link flow and
// returns the issued refresh token.
func loginByMagicLink(
	t *testing.T, ctx context.Context, domain AuthDomain, mailer *testutil.MockMailer, email string,
) string {
	t.Helper()

	_, err := domain.RequestMagicLink(ctx, &model.RequestMagicLinkRequest{Email: email})
	require.NoError(t, err)
	require.NotEmpty(t, mailer.Sent)

	token := extractMagicLinkToken(t, mailer.Sent[len(mailer.Sent)-1].Body)
	resp, err := domain.ConsumeMagicLink(ctx, &model.ConsumeMagicLinkRequest{Token: token})
	require.NoError(t, err)
	require.Contains(t, resp.RedirectURL, "refresh_token=")

	_, refreshToken, found := strings.Cut(resp.RedirectURL, "refresh_token=")
	require.True(t, found)
	return refreshToken
}

func extractMagicLinkToken(t *testing.T, body string) string {
	t.Helper()

	_, rest, found := strings.Cut(body, "token=")
	require.True(t, found)

	token, _, _ := strings.Cut(rest, "\"")
	require.NotEmpty(t, token)
	return token
}

func requireUnauthenticated(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)

	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Unauthenticated, errx.Code)
}

type denyLimiter struct{}

func (denyLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return false, nil
}
