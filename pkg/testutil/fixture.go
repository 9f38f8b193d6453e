package testutil

import (
	"context"
	"database/sql"

	"github.com/hemolens/backend/internal/entity"
	"github.com/hemolens/backend/internal/repository"
)

var (
	User1 = &entity.User{
		Base:           entity.Base{ID: "user1"},
		Email:          "user1@example.com",
		Provider:       entity.ProviderGoogle,
		ProviderUserID: sql.NullString{Valid: true, String: "google-user1"},
		FirstName:      sql.NullString{Valid: true, String: "Alice"},
		LastName:       sql.NullString{Valid: true, String: "Nguyen"},
		ProfilePicture: "https://example.com/alice.png",
	}

	User2 = &entity.User{
		Base:     entity.Base{ID: "user2"},
		Email:    "user2@example.com",
		Provider: entity.ProviderMagicLink,
	}
)

func CreateFixtureDb(ctx context.Context) {
	InsertUsers(ctx)
}

func InsertUsers(ctx context.Context) {
	userRepo := repository.NewUserRepository()

	for _, user := range []*entity.User{User1, User2} {
		u := *user
		if err := userRepo.Create(ctx, &u); err != nil {
			panic(err)
		}
	}
}
