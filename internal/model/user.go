package model

import (
	"time"

	"github.com/hemolens/backend/internal/entity"
)

// User is the public shape of a user record. It deliberately carries no
// refresh token.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Picture   string    `json:"picture,omitempty"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"createdAt"`
}

func ConvertUser(user *entity.User) User {
	return User{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName.String,
		LastName:  user.LastName.String,
		Picture:   user.ProfilePicture,
		Provider:  user.Provider,
		CreatedAt: user.CreatedAt,
	}
}

type GetProfileRequest struct{}

type GetProfileResponse User
