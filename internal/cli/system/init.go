package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/nudge/internal/backup"
	"github.com/julianstephens/nudge/internal/cli"
	"github.com/julianstephens/nudge/internal/storage/sqlite"
)

type InitCmd struct {
	Force    bool `help:"Delete the existing SQLite database before initialization."`
	NoBackup bool `help:"Skip the snapshot taken before --force deletes the database."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(ctx.StateDir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized nudge storage at: %s\n", ctx.Store.GetConfigPath())
	fmt.Printf("Notification state: %s\n", ctx.Center.StatePath())
	return nil
}

// reset removes the SQLite file. PostgreSQL databases are never dropped.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("--force is only supported for SQLite storage")
	}

	dbPath := ctx.Store.GetConfigPath()
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}

	if !c.NoBackup {
		path, err := backup.NewManager(dbPath).Create()
		if err != nil {
			return fmt.Errorf("failed to back up existing database (use --no-backup to skip): %w", err)
		}
		fmt.Printf("Backed up existing database to: %s\n", path)
	}

	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	fmt.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}
