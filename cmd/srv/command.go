package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "Hemolens"
	app.Usage = ""
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path of the toml configuration file",
			Value: "config.toml",
		},
	}
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Start the main http api server.`,
		},
		{
			Action:      server.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database schema",
			Category:    "Database",
			Description: `Apply the schema migrations and exit.`,
		},
	}

	s.app = app
}
