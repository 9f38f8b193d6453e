package domain

import (
	"testing"

	"github.com/hemolens/backend/internal/model"
	"github.com/hemolens/backend/internal/repository"
	"github.com/hemolens/backend/pkg/errorx"
	"github.com/hemolens/backend/pkg/testutil"
	"github.com/hemolens/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_userDomain_GetProfile(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	domain := NewUserDomain(repository.NewUserRepository())

	resp, err := domain.GetProfile(
		xcontext.WithRequestUserID(ctx, testutil.User1.ID), &model.GetProfileRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.User1.ID, resp.ID)
	require.Equal(t, testutil.User1.Email, resp.Email)
	require.Equal(t, testutil.User1.FirstName.String, resp.FirstName)
	require.Equal(t, testutil.User1.LastName.String, resp.LastName)
	require.Equal(t, testutil.User1.ProfilePicture, resp.Picture)
	require.Equal(t, testutil.User1.Provider, resp.Provider)
	require.False(t, resp.CreatedAt.IsZero())
}

func Test_userDomain_GetProfile_NotFound(t *testing.T) {
	ctx := testutil.MockContextWithUserID("no-such-user")

	domain := NewUserDomain(repository.NewUserRepository())

	_, err := domain.GetProfile(ctx, &model.GetProfileRequest{})
	require.Error(t, err)

	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)
}

func Test_healthDomain_Check(t *testing.T) {
	ctx := testutil.MockContext()

	domain := NewHealthDomain()
	resp, err := domain.Check(ctx, &model.HealthRequest{})
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Status)
}
