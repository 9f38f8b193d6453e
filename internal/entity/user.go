package entity

import "database/sql"

const (
	ProviderGoogle    = "google"
	ProviderLinkedIn  = "linkedin"
	ProviderMagicLink = "magic_link"
)

type User struct {
	Base

	Email    string `gorm:"unique"`
	Provider string

	// ProviderUserID is the subject reported by the oauth2 provider. Empty
	// for users that only ever logged in with a magic link.
	ProviderUserID sql.NullString

	FirstName      sql.NullString
	LastName       sql.NullString
	ProfilePicture string

	// RefreshToken pins the currently valid refresh token. A single slot:
	// every login or refresh overwrites it, logout clears it, so at most
	// one session per user is live.
	RefreshToken sql.NullString
}
