package entity

import (
	"context"

	"github.com/hemolens/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&MagicLinkToken{},
	)
}
