package main

import (
	"context"
	"log"

	"github.com/hemolens/backend/internal/entity"
	"github.com/hemolens/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(ct *cli.Context) error {
	server.loadConfig(ct)
	server.loadLogger()
	server.loadDatabase()

	ctx := context.Background()
	ctx = xcontext.WithLogger(ctx, s.logger)
	ctx = xcontext.WithDB(ctx, s.db)

	if err := entity.MigrateTable(ctx); err != nil {
		return err
	}

	log.Println("migration completed")
	return nil
}
