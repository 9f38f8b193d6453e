package entity

import "time"

type MagicLinkToken struct {
	Token string `gorm:"primaryKey"`

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	ExpiredAt time.Time
	CreatedAt time.Time
}
