package main

import (
	"fmt"

	"github.com/skela-dev/skela/src/config"
	"github.com/skela-dev/skela/src/storage"
)

// MigrateCmd manages database migrations
type MigrateCmd struct {
	Up MigrateUpCmd `cmd:"" help:"Run pending migrations"`
}

// MigrateUpCmd runs pending migrations
type MigrateUpCmd struct {
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the migrate up command
func (c *MigrateUpCmd) Run(cli *CLI) error {
	dbPath := c.DBPath
	if dbPath == "" {
		cfg, err := config.NewLoader(cli.Config).Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		dbPath = cfg.Storage.DatabasePath
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	fmt.Printf("Database migrated: %s\n", dbPath)
	return nil
}
